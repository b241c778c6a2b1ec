package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

const tokensCollection = "verification_tokens"

// TokenRepository persists single-use token records in the document store.
type TokenRepository struct {
	coll *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{coll: db.Collection(tokensCollection)}
}

func (r *TokenRepository) Create(ctx context.Context, token *domain.VerificationToken) error {
	if _, err := r.coll.InsertOne(ctx, token); err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (r *TokenRepository) FindByHash(ctx context.Context, hash string, purpose domain.TokenPurpose) (*domain.VerificationToken, error) {
	var token domain.VerificationToken
	filter := bson.M{"token_hash": hash, "purpose": purpose}
	if err := r.coll.FindOne(ctx, filter).Decode(&token); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &token, nil
}

// MarkConsumed is a conditional single-document update: the filter requires
// consumed_at to be unset, so only one of any number of concurrent callers
// can win. Losers observe domain.ErrTokenConsumed.
func (r *TokenRepository) MarkConsumed(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "consumed_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"consumed_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("consume token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTokenConsumed
	}
	return nil
}

func (r *TokenRepository) DeleteForUser(ctx context.Context, userID string, purpose domain.TokenPurpose) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID, "purpose": purpose}); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}
