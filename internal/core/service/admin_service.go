package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quotable/quotes-platform/internal/core/domain"
	"github.com/quotable/quotes-platform/internal/core/ports"
)

type adminService struct {
	users     ports.UserRepository
	approvals ports.ApprovalRepository
	audit     ports.AuditRecorder
	log       zerolog.Logger
}

// NewAdminService returns the human-gated lifecycle operations: the approval
// workflow, suspension, and capability overrides.
func NewAdminService(
	users ports.UserRepository,
	approvals ports.ApprovalRepository,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) ports.AdminService {
	return &adminService{users: users, approvals: approvals, audit: audit, log: log}
}

func (s *adminService) Approve(ctx context.Context, targetID, actorID string, prov domain.Provenance) (*domain.User, error) {
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	// Admin accounts are never a valid target; non-guest roles mean the
	// promotion already happened.
	if target.Role == domain.RoleAdmin {
		return nil, domain.ErrNotGuest
	}
	if target.Role != domain.RoleGuest || target.AdminApproved {
		return target, nil // already approved: no-op success
	}

	now := time.Now().UTC()
	target.AdminApproved = true

	if target.EmailVerified {
		// Verified guest: promote role, activate, and install role defaults
		// in the same write.
		target.Role = domain.RoleUser
		target.Status = domain.StatusActive
		target.Permissions = domain.DefaultPermissions(domain.RoleUser)
	}
	// Unverified guest: record approval only; promotion happens inside the
	// verification step's already-approved branch.
	target.UpdatedAt = now

	if err := s.users.Update(ctx, target); err != nil {
		return nil, err
	}

	if target.Status == domain.StatusActive {
		if err := s.approvals.Remove(ctx, targetID); err != nil {
			s.log.Warn().Err(err).Str("subject_id", targetID).Msg("approval queue remove failed")
		}
	}

	s.audit.Record(&domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      domain.AuditApproved,
		SubjectID: targetID,
		ActorID:   actorID,
		IP:        prov.IP,
		UserAgent: prov.UserAgent,
		Metadata:  map[string]string{"status": string(target.Status)},
		CreatedAt: now,
	})
	return target, nil
}

func (s *adminService) Suspend(ctx context.Context, targetID, actorID string, prov domain.Provenance) (*domain.User, error) {
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if target.Status == domain.StatusSuspended {
		return target, nil
	}

	target.Status = domain.StatusSuspended
	target.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, target); err != nil {
		return nil, err
	}

	s.audit.Record(&domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      domain.AuditSuspended,
		SubjectID: targetID,
		ActorID:   actorID,
		IP:        prov.IP,
		UserAgent: prov.UserAgent,
		CreatedAt: target.UpdatedAt,
	})
	return target, nil
}

// Reactivate lifts a suspension, restoring the status implied by the
// monotonic verification and approval flags.
func (s *adminService) Reactivate(ctx context.Context, targetID, actorID string, prov domain.Provenance) (*domain.User, error) {
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Status != domain.StatusSuspended {
		return target, nil
	}

	target.Status = domain.NextStatus(target.EmailVerified, target.AdminApproved)
	target.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, target); err != nil {
		return nil, err
	}

	s.audit.Record(&domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      domain.AuditReactivated,
		SubjectID: targetID,
		ActorID:   actorID,
		IP:        prov.IP,
		UserAgent: prov.UserAgent,
		Metadata:  map[string]string{"status": string(target.Status)},
		CreatedAt: target.UpdatedAt,
	})
	return target, nil
}

// OverridePermissions applies capability overrides. The allow-list is
// enforced at this write boundary, not merely at authorization: a payload
// containing any admin-only key is rejected whole, so no partially-valid
// request can smuggle a privileged grant through.
func (s *adminService) OverridePermissions(ctx context.Context, targetID, actorID string, overrides map[string]bool, prov domain.Provenance) (*domain.User, error) {
	if len(overrides) == 0 {
		return nil, domain.ErrMissingFields
	}
	for key := range overrides {
		if !domain.OverridableKeys[key] {
			return nil, fmt.Errorf("%w: %s", domain.ErrProtectedKey, key)
		}
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	perms := make(domain.Permissions, len(target.Permissions))
	for k, v := range target.Permissions {
		perms[k] = v
	}
	changed := make(map[string]string, len(overrides))
	for key, grant := range overrides {
		perms[key] = grant
		changed[key] = strconv.FormatBool(grant)
	}
	target.Permissions = perms
	target.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, target); err != nil {
		return nil, err
	}

	// Append-only override trail: one audit entry per override, keyed by
	// target and timestamp.
	s.audit.Record(&domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      domain.AuditPermissionOverride,
		SubjectID: targetID,
		ActorID:   actorID,
		IP:        prov.IP,
		UserAgent: prov.UserAgent,
		Metadata:  changed,
		CreatedAt: target.UpdatedAt,
	})
	return target, nil
}

func (s *adminService) PendingApprovals(ctx context.Context) ([]*domain.ApprovalEntry, error) {
	return s.approvals.List(ctx)
}
