package domain

import "time"

// ApprovalEntry is the shadow record of a guest whose email is verified but
// who still lacks admin approval. Created on the pending→awaiting transition,
// removed when an admin promotes the account.
type ApprovalEntry struct {
	UserID      string    `json:"user_id" bson:"_id"`
	Email       string    `json:"email" bson:"email"`
	DisplayName string    `json:"display_name" bson:"display_name"`
	VerifiedAt  time.Time `json:"verified_at" bson:"verified_at"`
}
