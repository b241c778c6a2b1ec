package domain

import (
	"testing"
	"time"
)

func TestNewTokenCodeIsUniqueAndOpaque(t *testing.T) {
	a, err := NewTokenCode()
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewTokenCode()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two generated codes collided")
	}
	if len(a) != 64 {
		t.Errorf("code length = %d, want 64 hex chars", len(a))
	}
	if HashTokenCode(a) == a {
		t.Error("hash must differ from the raw code")
	}
	if HashTokenCode(a) != HashTokenCode(a) {
		t.Error("hash must be deterministic")
	}
}

func TestTokenLifecyclePredicates(t *testing.T) {
	now := time.Now().UTC()
	tok := &VerificationToken{IssuedAt: now, ExpiresAt: now.Add(time.Hour)}

	if tok.Consumed() {
		t.Error("fresh token reported consumed")
	}
	if tok.Expired(now) {
		t.Error("fresh token reported expired")
	}
	if !tok.Expired(now.Add(2 * time.Hour)) {
		t.Error("past-lifetime token not reported expired")
	}

	consumedAt := now
	tok.ConsumedAt = &consumedAt
	if !tok.Consumed() {
		t.Error("consumed token not reported consumed")
	}
}

func TestPurposeTTL(t *testing.T) {
	if got := PurposeEmailVerification.TTL(); got != VerificationTokenTTL {
		t.Errorf("verification TTL = %v", got)
	}
	if got := PurposePasswordReset.TTL(); got != ResetTokenTTL {
		t.Errorf("reset TTL = %v", got)
	}
}
