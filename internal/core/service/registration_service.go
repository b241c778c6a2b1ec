package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quotable/quotes-platform/internal/api/metrics"
	"github.com/quotable/quotes-platform/internal/core/domain"
	"github.com/quotable/quotes-platform/internal/core/ports"
)

// Cooldown windows for outbound-email-triggering operations.
const (
	resendCooldown = 2 * time.Minute
	resetCooldown  = 2 * time.Minute
)

type registrationService struct {
	users     ports.UserRepository
	tokens    ports.TokenRepository
	identity  ports.IdentityProvider
	cooldowns ports.CooldownRegistry
	mailer    ports.Mailer
	audit     ports.AuditRecorder
	checker   *EmailChecker
	log       zerolog.Logger
}

// NewRegistrationService returns the registration orchestrator: it creates an
// external identity plus a credential-store record, triggers verification
// delivery, and reverses both on failure.
func NewRegistrationService(
	users ports.UserRepository,
	tokens ports.TokenRepository,
	identity ports.IdentityProvider,
	cooldowns ports.CooldownRegistry,
	mailer ports.Mailer,
	audit ports.AuditRecorder,
	checker *EmailChecker,
	log zerolog.Logger,
) ports.RegistrationService {
	return &registrationService{
		users:     users,
		tokens:    tokens,
		identity:  identity,
		cooldowns: cooldowns,
		mailer:    mailer,
		audit:     audit,
		checker:   checker,
		log:       log,
	}
}

func (s *registrationService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	// 1. Required fields.
	if in.Email == "" || in.Password == "" || in.DisplayName == "" {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrMissingFields
	}

	// 2. Email screening: format, disposable domains, reserved TLDs, DNS probe.
	email := domain.NormalizeEmail(in.Email)
	if err := s.checker.Check(ctx, email); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	// 3. Password policy.
	if err := CheckPassword(in.Password); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	// 4. Duplicate check, distinguishing verified from unverified accounts.
	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		if existing.EmailVerified {
			return nil, domain.ErrEmailExists
		}
		return nil, domain.ErrPendingVerification
	case !errors.Is(err, domain.ErrUserNotFound):
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	// 5. External identity. Role is forced to guest regardless of caller input.
	subjectID, err := s.identity.CreateIdentity(ctx, email, in.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	// 6. Credential-store record.
	now := time.Now().UTC()
	user := &domain.User{
		ID:             subjectID,
		Email:          email,
		DisplayName:    in.DisplayName,
		Role:           domain.RoleGuest,
		Status:         domain.StatusPending,
		Permissions:    domain.DefaultPermissions(domain.RoleGuest),
		RegistrationIP: in.Provenance.IP,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.rollback(subjectID)
		metrics.RegistrationsTotal.WithLabelValues("rolled_back").Inc()
		return nil, err
	}

	// 7. Verification token issuance and delivery.
	if err := s.issueToken(ctx, user, domain.PurposeEmailVerification, false); err != nil {
		s.rollback(subjectID)
		metrics.RegistrationsTotal.WithLabelValues("rolled_back").Inc()
		return nil, err
	}

	// 8. Fire-and-forget audit; failure can never fail the registration.
	s.audit.Record(&domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      domain.AuditRegistered,
		SubjectID: subjectID,
		IP:        in.Provenance.IP,
		UserAgent: in.Provenance.UserAgent,
		Metadata:  map[string]string{"email": email},
		CreatedAt: now,
	})

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return user, nil
}

// rollback reverses a partially-completed registration: delete the external
// identity, remove the credential-store record. Best effort only; outcomes
// are logged and never mask the original error returned to the caller.
// Reconciliation of any residual orphan is out of scope.
func (s *registrationService) rollback(subjectID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.identity.DeleteIdentity(ctx, subjectID); err != nil {
		s.log.Error().Err(err).Str("subject_id", subjectID).Msg("rollback: identity delete failed")
	}
	if err := s.users.Delete(ctx, subjectID); err != nil {
		s.log.Error().Err(err).Str("subject_id", subjectID).Msg("rollback: credential record delete failed")
	}
	s.audit.Record(&domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      domain.AuditRegistrationFailed,
		SubjectID: subjectID,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *registrationService) ResendVerification(ctx context.Context, email string, prov domain.Provenance) error {
	email = domain.NormalizeEmail(email)

	// Per-email cooldown applies before any lookup so unknown addresses are
	// indistinguishable from known ones.
	ok, err := s.cooldowns.Reserve(ctx, "resend:"+email, resendCooldown)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrCooldownActive
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil // anti-enumeration: indistinguishable success
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}

	if err := s.issueToken(ctx, user, domain.PurposeEmailVerification, true); err != nil {
		return err
	}

	s.audit.Record(&domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      domain.AuditVerificationResent,
		SubjectID: user.ID,
		IP:        prov.IP,
		UserAgent: prov.UserAgent,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

func (s *registrationService) RequestPasswordReset(ctx context.Context, email string, prov domain.Provenance) error {
	email = domain.NormalizeEmail(email)

	ok, err := s.cooldowns.Reserve(ctx, "reset:"+email, resetCooldown)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrCooldownActive
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}

	if err := s.issueToken(ctx, user, domain.PurposePasswordReset, true); err != nil {
		return err
	}

	s.audit.Record(&domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      domain.AuditPasswordResetIssued,
		SubjectID: user.ID,
		IP:        prov.IP,
		UserAgent: prov.UserAgent,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// issueToken generates a fresh single-use code, persists its hash, and hands
// the raw code to the mailer. When supersede is set, outstanding tokens of
// the same purpose are removed first so only the newest delivery can win.
func (s *registrationService) issueToken(ctx context.Context, user *domain.User, purpose domain.TokenPurpose, supersede bool) error {
	if supersede {
		if err := s.tokens.DeleteForUser(ctx, user.ID, purpose); err != nil {
			return err
		}
	}

	code, err := domain.NewTokenCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	now := time.Now().UTC()
	token := &domain.VerificationToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Purpose:   purpose,
		TokenHash: domain.HashTokenCode(code),
		IssuedAt:  now,
		ExpiresAt: now.Add(purpose.TTL()),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return err
	}

	if purpose == domain.PurposePasswordReset {
		return s.mailer.SendPasswordReset(ctx, user.Email, user.DisplayName, code)
	}
	return s.mailer.SendVerification(ctx, user.Email, user.DisplayName, code)
}
