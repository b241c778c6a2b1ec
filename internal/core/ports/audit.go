package ports

import (
	"context"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

// AuditRepository appends entries to the immutable security log.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
}

// AuditRecorder is the fire-and-forget facade used on request paths. Record
// never blocks and never fails the caller; delivery is best-effort through a
// bounded queue.
type AuditRecorder interface {
	Record(entry *domain.AuditEntry)
}
