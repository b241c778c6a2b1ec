// Package session converts a validated authentication into cookie-backed,
// anti-forgery-protected session state: a short-lived signed session
// credential bound to a device fingerprint, a long-lived refresh credential
// scoped to the refresh path, and a readable CSRF token.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

const (
	SessionTTL = time.Hour
	RefreshTTL = 30 * 24 * time.Hour

	// RefreshPath is the only path the refresh cookie travels to.
	RefreshPath = "/auth/refresh"

	cookieSession = "session"
	cookieRefresh = "refresh"
	cookieCSRF    = "csrf"

	tokenTypeSession = "session"
	tokenTypeRefresh = "refresh"
)

// Manager mints and validates the three session cookies. Under production
// conditions cookie attributes escalate: host-locked naming, Secure flag,
// strict same-site.
type Manager struct {
	secret     []byte
	production bool
}

func NewManager(secret string, production bool) *Manager {
	return &Manager{secret: []byte(secret), production: production}
}

// Issue sets the cookie triple for an authenticated subject.
func (m *Manager) Issue(c echo.Context, subjectID string) error {
	now := time.Now().UTC()
	fp := Fingerprint(c)

	sessionToken, err := m.mint(jwt.MapClaims{
		"sub": subjectID,
		"typ": tokenTypeSession,
		"fp":  fp,
		"iat": now.Unix(),
		"exp": now.Add(SessionTTL).Unix(),
	})
	if err != nil {
		return fmt.Errorf("mint session token: %w", err)
	}

	refreshToken, err := m.mint(jwt.MapClaims{
		"sub": subjectID,
		"typ": tokenTypeRefresh,
		"iat": now.Unix(),
		"exp": now.Add(RefreshTTL).Unix(),
	})
	if err != nil {
		return fmt.Errorf("mint refresh token: %w", err)
	}

	csrf := make([]byte, 32)
	if _, err := rand.Read(csrf); err != nil {
		return fmt.Errorf("mint csrf token: %w", err)
	}

	c.SetCookie(m.cookie(cookieSession, sessionToken, "/", SessionTTL, true))
	c.SetCookie(m.cookie(cookieRefresh, refreshToken, RefreshPath, RefreshTTL, true))
	// The CSRF cookie is deliberately readable so the client can echo it back
	// in a header; its lifetime matches the session credential.
	c.SetCookie(m.cookie(cookieCSRF, hex.EncodeToString(csrf), "/", SessionTTL, false))
	return nil
}

// Clear expires all three cookies.
func (m *Manager) Clear(c echo.Context) {
	c.SetCookie(m.cookie(cookieSession, "", "/", -time.Hour, true))
	c.SetCookie(m.cookie(cookieRefresh, "", RefreshPath, -time.Hour, true))
	c.SetCookie(m.cookie(cookieCSRF, "", "/", -time.Hour, false))
}

// Validate checks the session cookie: signature, expiry, token type, and the
// device-fingerprint binding. It returns the authenticated subject id.
func (m *Manager) Validate(c echo.Context) (string, error) {
	sub, claims, err := m.parse(c, m.name(cookieSession), tokenTypeSession)
	if err != nil {
		return "", err
	}
	if fp, _ := claims["fp"].(string); fp != Fingerprint(c) {
		return "", domain.ErrInvalidCredentials
	}
	return sub, nil
}

// ValidateRefresh checks the refresh cookie and returns the subject id.
func (m *Manager) ValidateRefresh(c echo.Context) (string, error) {
	sub, _, err := m.parse(c, m.name(cookieRefresh), tokenTypeRefresh)
	return sub, err
}

// CheckCSRF applies the double-submit rule: the readable cookie must match
// the request header.
func (m *Manager) CheckCSRF(c echo.Context) error {
	cookie, err := c.Cookie(m.name(cookieCSRF))
	if err != nil || cookie.Value == "" {
		return domain.ErrForbidden
	}
	if c.Request().Header.Get("X-CSRF-Token") != cookie.Value {
		return domain.ErrForbidden
	}
	return nil
}

// Fingerprint derives a device fingerprint from stable request metadata.
func Fingerprint(c echo.Context) string {
	req := c.Request()
	sum := sha256.Sum256([]byte(req.UserAgent() + "|" + req.Header.Get("Accept-Language")))
	return hex.EncodeToString(sum[:8])
}

func (m *Manager) mint(claims jwt.MapClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) parse(c echo.Context, name, wantType string) (string, jwt.MapClaims, error) {
	cookie, err := c.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !tkn.Valid {
		return "", nil, domain.ErrInvalidCredentials
	}

	if typ, _ := claims["typ"].(string); typ != wantType {
		return "", nil, domain.ErrInvalidCredentials
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	return sub, claims, nil
}

// name applies host-locked cookie naming under production conditions. The
// refresh cookie takes the __Secure- prefix instead: __Host- would force
// Path=/ and defeat the refresh-path scoping.
func (m *Manager) name(base string) string {
	if !m.production {
		return base
	}
	if base == cookieRefresh {
		return "__Secure-" + base
	}
	return "__Host-" + base
}

func (m *Manager) cookie(base, value, path string, ttl time.Duration, protected bool) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if m.production {
		sameSite = http.SameSiteStrictMode
	}
	return &http.Cookie{
		Name:     m.name(base),
		Value:    value,
		Path:     path,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: protected,
		Secure:   m.production,
		SameSite: sameSite,
	}
}
