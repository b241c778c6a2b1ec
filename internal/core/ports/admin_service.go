package ports

import (
	"context"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

// AdminService covers the human-gated lifecycle operations: approval,
// suspension, and capability overrides.
type AdminService interface {
	// Approve promotes a verified guest to user, or records adminApproved for
	// a guest whose email is still unverified. Repeat approvals are no-ops.
	Approve(ctx context.Context, targetID, actorID string, prov domain.Provenance) (*domain.User, error)
	Suspend(ctx context.Context, targetID, actorID string, prov domain.Provenance) (*domain.User, error)
	Reactivate(ctx context.Context, targetID, actorID string, prov domain.Provenance) (*domain.User, error)
	// OverridePermissions applies capability overrides restricted to the
	// allow-list; any admin-only key rejects the whole payload.
	OverridePermissions(ctx context.Context, targetID, actorID string, overrides map[string]bool, prov domain.Provenance) (*domain.User, error)
	PendingApprovals(ctx context.Context) ([]*domain.ApprovalEntry, error)
}
