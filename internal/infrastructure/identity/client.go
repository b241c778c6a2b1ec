// Package identity wraps the external identity authority: an opaque service
// that owns credentials and issues signed HS256 identity tokens. All
// provider-specific error codes are translated into the domain taxonomy at
// this boundary.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quotable/quotes-platform/internal/api/metrics"
	"github.com/quotable/quotes-platform/internal/core/domain"
	"github.com/quotable/quotes-platform/internal/core/ports"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for reaching the identity authority.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is the HTTP implementation of ports.IdentityProvider. Every round
// trip runs under a hard timeout; a deadline expiry surfaces as
// domain.ErrNetwork, a retriable class distinct from credential rejection.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type createAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createAccountResponse struct {
	SubjectID string `json:"subject_id"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	SubjectID string `json:"subject_id"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type updatePasswordRequest struct {
	Password string `json:"password"`
}

type providerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) CreateIdentity(ctx context.Context, email, password string) (string, error) {
	var resp createAccountResponse
	err := c.do(ctx, "create", http.MethodPost, "/v1/accounts", createAccountRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.SubjectID, nil
}

func (c *Client) DeleteIdentity(ctx context.Context, subjectID string) error {
	return c.do(ctx, "delete", http.MethodDelete, "/v1/accounts/"+subjectID, nil, nil)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*ports.IdentityToken, error) {
	var resp signInResponse
	err := c.do(ctx, "sign_in", http.MethodPost, "/v1/token", signInRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &ports.IdentityToken{
		SubjectID: resp.SubjectID,
		Raw:       resp.Token,
		ExpiresAt: time.Unix(resp.ExpiresAt, 0).UTC(),
	}, nil
}

func (c *Client) UpdatePassword(ctx context.Context, subjectID, newPassword string) error {
	return c.do(ctx, "password", http.MethodPut, "/v1/accounts/"+subjectID+"/password", updatePasswordRequest{Password: newPassword}, nil)
}

func (c *Client) RevokeSessions(ctx context.Context, subjectID string) error {
	return c.do(ctx, "revoke", http.MethodPost, "/v1/accounts/"+subjectID+"/revoke", nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.AuthorityRequestDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
	}()

	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and transport failures are a retriable class, never
		// conflated with credential rejection.
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var pe providerError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&pe); decodeErr != nil {
			pe.Code = ""
		}
		return MapProviderCode(pe.Code, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
