package ports

import (
	"context"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

// ApprovalRepository maintains the queue of verified guests awaiting admin
// approval.
type ApprovalRepository interface {
	Enqueue(ctx context.Context, entry *domain.ApprovalEntry) error
	Remove(ctx context.Context, userID string) error
	List(ctx context.Context) ([]*domain.ApprovalEntry, error)
}
