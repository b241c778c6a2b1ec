package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

const approvalsCollection = "approval_queue"

// ApprovalRepository stores the shadow queue of verified guests awaiting
// admin action. Enqueue is an upsert so replayed verifications never create
// duplicate entries.
type ApprovalRepository struct {
	coll *mongo.Collection
}

func NewApprovalRepository(db *mongo.Database) *ApprovalRepository {
	return &ApprovalRepository{coll: db.Collection(approvalsCollection)}
}

func (r *ApprovalRepository) Enqueue(ctx context.Context, entry *domain.ApprovalEntry) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": entry.UserID},
		entry,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("enqueue approval: %w", err)
	}
	return nil
}

func (r *ApprovalRepository) Remove(ctx context.Context, userID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		return fmt.Errorf("remove approval: %w", err)
	}
	return nil
}

func (r *ApprovalRepository) List(ctx context.Context) ([]*domain.ApprovalEntry, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"verified_at": 1}))
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer cur.Close(ctx)

	var entries []*domain.ApprovalEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode approvals: %w", err)
	}
	return entries, nil
}
