package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quotable/quotes-platform/internal/api/middleware"
	"github.com/quotable/quotes-platform/internal/core/domain"
)

// ctxSubject extracts the subject id injected by the session middleware. Its
// presence proves the middleware ran; an empty value means the route was
// wired without authentication and must fail closed.
func ctxSubject(c echo.Context) (string, error) {
	subjectID, _ := c.Get(middleware.SubjectKey).(string)
	if subjectID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return subjectID, nil
}

// ctxProvenance captures the request metadata attached to audited operations.
func ctxProvenance(c echo.Context) domain.Provenance {
	return domain.Provenance{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
