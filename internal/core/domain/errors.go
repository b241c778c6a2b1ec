package domain

import "errors"

// Validation errors (4xx, actionable).
var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrWeakPassword  = errors.New("password does not meet strength requirements")
	ErrNotGuest      = errors.New("only guest accounts can be approved")
	ErrProtectedKey  = errors.New("permission key cannot be overridden")
)

// Authentication and authorization errors (401/403, kept generic at the API
// boundary to avoid account enumeration).
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountSuspended   = errors.New("account suspended")
	ErrForbidden          = errors.New("access forbidden")
)

// Conflict errors (409/410).
var (
	ErrEmailExists            = errors.New("email already registered")
	ErrPendingVerification    = errors.New("email registered but not verified")
	ErrVerificationInProgress = errors.New("verification already in progress")
	ErrTokenConsumed          = errors.New("token already used")
	ErrCooldownActive         = errors.New("operation attempted too soon")
)

// Token resolution errors.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Lookup and infrastructure errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrNetwork      = errors.New("upstream service unavailable")
)

// ErrorCode returns the wire-level code for a domain error, or UNEXPECTED for
// anything outside the taxonomy. Provider-specific errors must be translated
// into the taxonomy before reaching this function.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrMissingFields):
		return "MISSING_FIELDS"
	case errors.Is(err, ErrInvalidEmail):
		return "INVALID_EMAIL"
	case errors.Is(err, ErrWeakPassword):
		return "WEAK_PASSWORD"
	case errors.Is(err, ErrNotGuest):
		return "NOT_GUEST"
	case errors.Is(err, ErrProtectedKey):
		return "PROTECTED_PERMISSION"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrAccountSuspended):
		return "ACCOUNT_SUSPENDED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrEmailExists):
		return "EMAIL_EXISTS"
	case errors.Is(err, ErrPendingVerification):
		return "PENDING_VERIFICATION"
	case errors.Is(err, ErrVerificationInProgress):
		return "VERIFICATION_IN_PROGRESS"
	case errors.Is(err, ErrTokenConsumed):
		return "TOKEN_CONSUMED"
	case errors.Is(err, ErrCooldownActive):
		return "COOLDOWN_ACTIVE"
	case errors.Is(err, ErrInvalidToken):
		return "INVALID_TOKEN"
	case errors.Is(err, ErrTokenExpired):
		return "TOKEN_EXPIRED"
	case errors.Is(err, ErrUserNotFound):
		return "USER_NOT_FOUND"
	case errors.Is(err, ErrNetwork):
		return "NETWORK_ERROR"
	default:
		return "UNEXPECTED"
	}
}
