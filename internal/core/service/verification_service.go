package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quotable/quotes-platform/internal/api/metrics"
	"github.com/quotable/quotes-platform/internal/core/domain"
	"github.com/quotable/quotes-platform/internal/core/ports"
)

// verifyLockTTL bounds how long a verification attempt can hold its lock;
// abandoned attempts expire without intervention.
const verifyLockTTL = 30 * time.Second

type verificationService struct {
	users     ports.UserRepository
	tokens    ports.TokenRepository
	approvals ports.ApprovalRepository
	locks     ports.LockRegistry
	identity  ports.IdentityProvider
	audit     ports.AuditRecorder
	log       zerolog.Logger
}

// NewVerificationService returns the single-use token consumer that advances
// account status: pending → awaiting → active, collapsing directly to active
// when admin approval already happened.
func NewVerificationService(
	users ports.UserRepository,
	tokens ports.TokenRepository,
	approvals ports.ApprovalRepository,
	locks ports.LockRegistry,
	identity ports.IdentityProvider,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) ports.VerificationService {
	return &verificationService{
		users:     users,
		tokens:    tokens,
		approvals: approvals,
		locks:     locks,
		identity:  identity,
		audit:     audit,
		log:       log,
	}
}

func (s *verificationService) Verify(ctx context.Context, rawToken, subjectID, email string, prov domain.Provenance) (*ports.VerifyResult, error) {
	hash := domain.HashTokenCode(rawToken)

	// 1. Exclusive lock per (subject, token). A concurrent duplicate attempt
	// observes a distinct in-progress signal, never a silent retry; duplicate
	// link delivery and prefetchers hit this path.
	lockKey := subjectID + ":" + hash
	held, err := s.locks.Acquire(ctx, lockKey, verifyLockTTL)
	if err != nil {
		return nil, err
	}
	if !held {
		metrics.VerificationsTotal.WithLabelValues("in_progress").Inc()
		return nil, domain.ErrVerificationInProgress
	}
	// Released unconditionally on every exit path.
	defer func() {
		if err := s.locks.Release(context.Background(), lockKey); err != nil {
			s.log.Warn().Err(err).Str("subject_id", subjectID).Msg("verification lock release failed")
		}
	}()

	user, err := s.users.FindByID(ctx, subjectID)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues("invalid").Inc()
		// An unknown subject on this unauthenticated surface is just an
		// invalid token, not a user-lookup failure.
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	// 2. Idempotent replay: a second call with the same valid token succeeds
	// without a duplicate transition or duplicate audit entry.
	if user.EmailVerified {
		metrics.VerificationsTotal.WithLabelValues("already_verified").Inc()
		return &ports.VerifyResult{Status: user.Status, AlreadyVerified: true}, nil
	}

	// 3. Token resolution by hash.
	token, err := s.tokens.FindByHash(ctx, hash, domain.PurposeEmailVerification)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if token.UserID != subjectID || domain.NormalizeEmail(email) != user.Email {
		metrics.VerificationsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidToken
	}
	if token.Consumed() {
		metrics.VerificationsTotal.WithLabelValues("consumed").Inc()
		return nil, domain.ErrTokenConsumed
	}
	if token.Expired(time.Now().UTC()) {
		metrics.VerificationsTotal.WithLabelValues("expired").Inc()
		return nil, domain.ErrTokenExpired
	}

	// 4. Consume the token before touching account state. This ordering
	// prefers the failure mode "token consumed, account update pending" over
	// a double-applied transition; a stranded consumed token is the cheaper
	// thing to reconcile.
	if err := s.tokens.MarkConsumed(ctx, token.ID); err != nil {
		metrics.VerificationsTotal.WithLabelValues("consumed").Inc()
		return nil, err
	}

	// 5. Flip the flag and compute the next state. When an admin approved
	// this account before verification, awaiting collapses straight to active
	// and the deferred guest→user promotion happens here, in one write.
	now := time.Now().UTC()
	user.EmailVerified = true
	next := domain.NextStatus(true, user.AdminApproved)
	if next == domain.StatusActive && user.Role == domain.RoleGuest {
		user.Role = domain.RoleUser
		user.Permissions = domain.DefaultPermissions(domain.RoleUser)
	}
	user.Status = next
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if next == domain.StatusAwaiting {
		entry := &domain.ApprovalEntry{
			UserID:      user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			VerifiedAt:  now,
		}
		if err := s.approvals.Enqueue(ctx, entry); err != nil {
			s.log.Error().Err(err).Str("subject_id", user.ID).Msg("approval queue write failed")
		}
	}

	s.audit.Record(&domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      domain.AuditEmailVerified,
		SubjectID: user.ID,
		IP:        prov.IP,
		UserAgent: prov.UserAgent,
		Metadata:  map[string]string{"status": string(next)},
		CreatedAt: now,
	})

	metrics.VerificationsTotal.WithLabelValues("verified").Inc()
	return &ports.VerifyResult{Status: next}, nil
}

// ResetPassword consumes a password-reset token and replaces the credential
// at the identity authority. The same lock discipline and consume-first
// ordering apply as for email verification.
func (s *verificationService) ResetPassword(ctx context.Context, rawToken, subjectID, newPassword string, prov domain.Provenance) error {
	if err := CheckPassword(newPassword); err != nil {
		return err
	}

	hash := domain.HashTokenCode(rawToken)
	lockKey := subjectID + ":" + hash
	held, err := s.locks.Acquire(ctx, lockKey, verifyLockTTL)
	if err != nil {
		return err
	}
	if !held {
		return domain.ErrVerificationInProgress
	}
	defer func() {
		if err := s.locks.Release(context.Background(), lockKey); err != nil {
			s.log.Warn().Err(err).Str("subject_id", subjectID).Msg("reset lock release failed")
		}
	}()

	token, err := s.tokens.FindByHash(ctx, hash, domain.PurposePasswordReset)
	if err != nil {
		return err
	}
	if token.UserID != subjectID {
		return domain.ErrInvalidToken
	}
	if token.Consumed() {
		return domain.ErrTokenConsumed
	}
	if token.Expired(time.Now().UTC()) {
		return domain.ErrTokenExpired
	}

	if err := s.tokens.MarkConsumed(ctx, token.ID); err != nil {
		return err
	}

	if err := s.identity.UpdatePassword(ctx, subjectID, newPassword); err != nil {
		return err
	}
	// Old sessions must not survive a credential change; revocation is
	// best-effort.
	if err := s.identity.RevokeSessions(ctx, subjectID); err != nil {
		s.log.Warn().Err(err).Str("subject_id", subjectID).Msg("post-reset session revoke failed")
	}

	s.audit.Record(&domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      domain.AuditPasswordReset,
		SubjectID: subjectID,
		IP:        prov.IP,
		UserAgent: prov.UserAgent,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}
