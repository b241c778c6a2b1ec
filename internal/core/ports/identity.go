package ports

import (
	"context"
	"time"
)

// IdentityToken is the signed bearer token returned by the identity
// authority's credential exchange.
type IdentityToken struct {
	SubjectID string
	Raw       string
	ExpiresAt time.Time
}

// IdentityClaims is the validated content of an identity-authority token.
type IdentityClaims struct {
	SubjectID string
	Email     string
	ExpiresAt time.Time
}

// IdentityProvider wraps the external identity authority, which owns
// credentials and issues signed identity tokens. Implementations translate
// provider error codes into the domain taxonomy at this boundary; no caller
// branches on provider-specific strings.
type IdentityProvider interface {
	// CreateIdentity registers credentials and returns the new subject id.
	CreateIdentity(ctx context.Context, email, password string) (string, error)
	// DeleteIdentity removes an identity; used for rollback and account deletion.
	DeleteIdentity(ctx context.Context, subjectID string) error
	// SignIn exchanges credentials for a signed identity token.
	SignIn(ctx context.Context, email, password string) (*IdentityToken, error)
	// UpdatePassword replaces the stored credential for a subject.
	UpdatePassword(ctx context.Context, subjectID, newPassword string) error
	// RevokeSessions best-effort invalidates the authority's server-side
	// sessions for a subject.
	RevokeSessions(ctx context.Context, subjectID string) error
}

// TokenVerifier validates identity-authority bearer tokens: signature,
// expiry, and well-formed subject.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*IdentityClaims, error)
}
