package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quotable/quotes-platform/internal/api/session"
)

// SubjectKey is the context key the session middleware stores the
// authenticated subject id under.
const SubjectKey = "subject_id"

// Session validates the session cookie and injects the subject id into the
// request context. Mutating requests additionally pass the CSRF double-submit
// check.
func Session(manager *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subjectID, err := manager.Validate(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				if err := manager.CheckCSRF(c); err != nil {
					return echo.NewHTTPError(http.StatusForbidden, "csrf token mismatch")
				}
			}

			c.Set(SubjectKey, subjectID)
			return next(c)
		}
	}
}
