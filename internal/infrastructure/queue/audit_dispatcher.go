package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/quotable/quotes-platform/internal/api/metrics"
	"github.com/quotable/quotes-platform/internal/core/domain"
	"github.com/quotable/quotes-platform/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	appendTimeout  = 5 * time.Second
)

// AuditDispatcher decouples audit persistence from request latency. Entries
// are routed to a fixed set of workers by consistent hashing on the subject
// id, preserving per-subject ordering. Record never blocks: when a worker's
// buffer is full the entry is dropped and counted, never allowed to slow or
// fail the primary response path.
type AuditDispatcher struct {
	workers []chan *domain.AuditEntry
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan *domain.AuditEntry, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan *domain.AuditEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an entry for its subject's worker. Fire-and-forget.
func (d *AuditDispatcher) Record(entry *domain.AuditEntry) {
	ch := d.workers[d.shardIndex(entry.SubjectID)]
	select {
	case ch <- entry:
	default:
		metrics.AuditDroppedTotal.Inc()
		d.log.Warn().
			Str("kind", entry.Kind).
			Str("subject_id", entry.SubjectID).
			Msg("audit queue full, entry dropped")
	}
}

// shardIndex maps a subject id deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(subjectID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subjectID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan *domain.AuditEntry) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))

			appendCtx, cancel := context.WithTimeout(context.Background(), appendTimeout)
			err := d.repo.Append(appendCtx, entry)
			cancel()
			if err != nil {
				// Audit failures never propagate to request paths; log and move on.
				d.log.Error().Err(err).
					Str("kind", entry.Kind).
					Str("subject_id", entry.SubjectID).
					Int("worker_id", id).
					Msg("audit append failed")
			}
		}
	}
}
