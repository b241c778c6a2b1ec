package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quotable/quotes-platform/internal/api/metrics"
	"github.com/quotable/quotes-platform/internal/core/domain"
	"github.com/quotable/quotes-platform/internal/core/ports"
)

// Hard deadlines for the two I/O legs of a login.
const (
	exchangeTimeout  = 5 * time.Second
	storeReadTimeout = 3 * time.Second
)

type authService struct {
	users    ports.UserRepository
	identity ports.IdentityProvider
	verifier ports.TokenVerifier
	audit    ports.AuditRecorder
	log      zerolog.Logger
}

// NewAuthService returns the credential-exchange service.
func NewAuthService(
	users ports.UserRepository,
	identity ports.IdentityProvider,
	verifier ports.TokenVerifier,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) ports.AuthService {
	return &authService{
		users:    users,
		identity: identity,
		verifier: verifier,
		audit:    audit,
		log:      log,
	}
}

func (s *authService) Login(ctx context.Context, email, password string, prov domain.Provenance) (*domain.User, error) {
	// 1. Local format check before any network call.
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" || !strings.Contains(email, "@") {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	// 2. Credential exchange under a hard deadline. A deadline expiry is the
	// retriable NETWORK_ERROR class, distinct from credential rejection.
	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	token, err := s.identity.SignIn(exchangeCtx, email, password)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.LoginsTotal.WithLabelValues("network_error").Inc()
			return nil, domain.ErrNetwork
		}
		if errors.Is(err, domain.ErrNetwork) {
			metrics.LoginsTotal.WithLabelValues("network_error").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}

	// 3. Verify signature/expiry and confirm the token's subject matches the
	// exchange result, guarding against token substitution.
	claims, err := s.verifier.Verify(ctx, token.Raw)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if claims.SubjectID != token.SubjectID {
		s.log.Warn().
			Str("exchange_subject", token.SubjectID).
			Str("token_subject", claims.SubjectID).
			Msg("identity token subject mismatch")
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	// 4. Credential-store record. Absence is USER_NOT_FOUND for diagnosis;
	// the API boundary renders it as a generic rejection.
	readCtx, cancel := context.WithTimeout(ctx, storeReadTimeout)
	user, err := s.users.FindByID(readCtx, claims.SubjectID)
	cancel()
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	// 5. Suspended accounts never authenticate. Pending/awaiting may; their
	// limited capability is enforced downstream.
	if user.Status == domain.StatusSuspended {
		metrics.LoginsTotal.WithLabelValues("suspended").Inc()
		return nil, domain.ErrAccountSuspended
	}

	// 6. Login bookkeeping.
	now := time.Now().UTC()
	user.RecordLogin(prov.IP, now)
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		// Bookkeeping is not worth failing an otherwise valid login.
		s.log.Warn().Err(err).Str("subject_id", user.ID).Msg("login metadata write failed")
	}

	// 7. Audit asynchronously.
	s.audit.Record(&domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      domain.AuditLogin,
		SubjectID: user.ID,
		IP:        prov.IP,
		UserAgent: prov.UserAgent,
		CreatedAt: now,
	})

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return user, nil
}

// Logout best-effort revokes the authority's server-side sessions. Failure to
// invalidate upstream never blocks the logout response.
func (s *authService) Logout(ctx context.Context, subjectID string, prov domain.Provenance) {
	revokeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	if err := s.identity.RevokeSessions(revokeCtx, subjectID); err != nil {
		s.log.Warn().Err(err).Str("subject_id", subjectID).Msg("upstream session revoke failed")
	}

	s.audit.Record(&domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      domain.AuditLogout,
		SubjectID: subjectID,
		IP:        prov.IP,
		UserAgent: prov.UserAgent,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *authService) Profile(ctx context.Context, subjectID string) (*domain.User, error) {
	readCtx, cancel := context.WithTimeout(ctx, storeReadTimeout)
	defer cancel()

	user, err := s.users.FindByID(readCtx, subjectID)
	if err != nil {
		return nil, err
	}

	// Permission decisions always come from the authoritative store.
	perms, err := s.users.Permissions(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	user.Permissions = perms
	return user, nil
}

// Refresh gates session re-issuance on current account state. The refresh
// cookie outlives the session by weeks, so suspension and deletion must be
// re-checked here or they stop being revocation controls.
func (s *authService) Refresh(ctx context.Context, subjectID string) (*domain.User, error) {
	readCtx, cancel := context.WithTimeout(ctx, storeReadTimeout)
	defer cancel()

	user, err := s.users.FindByID(readCtx, subjectID)
	if err != nil {
		return nil, err
	}
	if user.Status == domain.StatusSuspended {
		return nil, domain.ErrAccountSuspended
	}
	return user, nil
}

func (s *authService) DeleteAccount(ctx context.Context, subjectID string, prov domain.Provenance) error {
	if err := s.identity.DeleteIdentity(ctx, subjectID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, subjectID); err != nil {
		return err
	}

	s.audit.Record(&domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      domain.AuditDeleted,
		SubjectID: subjectID,
		IP:        prov.IP,
		UserAgent: prov.UserAgent,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}
