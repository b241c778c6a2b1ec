package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quotable/quotes-platform/internal/core/domain"
	"github.com/quotable/quotes-platform/internal/core/ports"
)

// AdminGate restricts a route group to accounts holding the manage_users
// capability, consulting the authoritative permission store on every request.
// Non-admins receive 404, not 403, so the admin surface is indistinguishable
// from a nonexistent route.
func AdminGate(users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subjectID, _ := c.Get(SubjectKey).(string)
			if subjectID == "" {
				return echo.NewHTTPError(http.StatusNotFound, "not found")
			}

			perms, err := users.Permissions(c.Request().Context(), subjectID)
			if err != nil || !perms.Has(domain.PermManageUsers) {
				return echo.NewHTTPError(http.StatusNotFound, "not found")
			}

			return next(c)
		}
	}
}
