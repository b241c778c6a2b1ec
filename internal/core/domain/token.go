package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TokenPurpose discriminates the two single-use code flows.
type TokenPurpose string

const (
	PurposeEmailVerification TokenPurpose = "email_verification"
	PurposePasswordReset     TokenPurpose = "password_reset"
)

// Token lifetimes per purpose.
const (
	VerificationTokenTTL = 24 * time.Hour
	ResetTokenTTL        = time.Hour
)

// TTL returns the lifetime for this purpose.
func (p TokenPurpose) TTL() time.Duration {
	if p == PurposePasswordReset {
		return ResetTokenTTL
	}
	return VerificationTokenTTL
}

// VerificationToken is the persisted form of a single-use code. Only the
// SHA-256 hash of the raw code is stored; the raw code travels once, in the
// outbound email. A token is consumable at most once.
type VerificationToken struct {
	ID         string       `bson:"_id"`
	UserID     string       `bson:"user_id"`
	Purpose    TokenPurpose `bson:"purpose"`
	TokenHash  string       `bson:"token_hash"`
	IssuedAt   time.Time    `bson:"issued_at"`
	ExpiresAt  time.Time    `bson:"expires_at"`
	ConsumedAt *time.Time   `bson:"consumed_at,omitempty"`
}

// Consumed reports whether the token has already been used.
func (t *VerificationToken) Consumed() bool {
	return t.ConsumedAt != nil
}

// Expired reports whether the token is past its lifetime at the given instant.
func (t *VerificationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// NewTokenCode generates a raw single-use code (hex, 256 bits of entropy).
func NewTokenCode() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashTokenCode maps a raw code to its stored one-way hash.
func HashTokenCode(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
