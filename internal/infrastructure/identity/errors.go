package identity

import (
	"net/http"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

// MapProviderCode translates an identity-authority error code into the
// application taxonomy. It is a pure function so the mapping is unit-testable
// without network access; unknown codes fall back on the HTTP status class.
func MapProviderCode(code string, status int) error {
	switch code {
	case "EMAIL_EXISTS", "ACCOUNT_EXISTS":
		return domain.ErrEmailExists
	case "INVALID_CREDENTIALS", "WRONG_PASSWORD", "EMAIL_NOT_FOUND":
		return domain.ErrInvalidCredentials
	case "USER_DISABLED":
		return domain.ErrAccountSuspended
	case "USER_NOT_FOUND":
		return domain.ErrUserNotFound
	case "WEAK_PASSWORD":
		return domain.ErrWeakPassword
	case "INVALID_EMAIL":
		return domain.ErrInvalidEmail
	case "TOO_MANY_ATTEMPTS", "RATE_LIMITED":
		return domain.ErrNetwork
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.ErrInvalidCredentials
	case status == http.StatusNotFound:
		return domain.ErrUserNotFound
	case status == http.StatusConflict:
		return domain.ErrEmailExists
	case status >= 500:
		return domain.ErrNetwork
	default:
		return domain.ErrNetwork
	}
}
