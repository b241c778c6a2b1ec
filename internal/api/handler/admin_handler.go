package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quotable/quotes-platform/internal/core/domain"
	"github.com/quotable/quotes-platform/internal/core/ports"
)

// AdminHandler serves the admin-only lifecycle routes. The route group is
// wrapped by the admin gate, which renders the whole surface as 404 to
// non-admins.
type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type permissionsRequest struct {
	Permissions map[string]bool `json:"permissions" validate:"required"`
}

// Approve promotes a verified guest, or records approval for one whose email
// is still unverified.
//
// @Summary      Approve a guest account
// @Tags         admin
// @Router       /admin/users/{id}/approve [post]
func (h *AdminHandler) Approve(c echo.Context) error {
	actorID, err := ctxSubject(c)
	if err != nil {
		return err
	}

	user, err := h.admin.Approve(c.Request().Context(), c.Param("id"), actorID, ctxProvenance(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// GrantWrite installs a write capability override.
//
// @Summary      Grant write capability
// @Tags         admin
// @Router       /admin/users/{id}/grant-write [post]
func (h *AdminHandler) GrantWrite(c echo.Context) error {
	return h.override(c, map[string]bool{domain.PermWrite: true})
}

// RevokeWrite removes the write capability.
//
// @Summary      Revoke write capability
// @Tags         admin
// @Router       /admin/users/{id}/revoke-write [post]
func (h *AdminHandler) RevokeWrite(c echo.Context) error {
	return h.override(c, map[string]bool{domain.PermWrite: false})
}

// PatchPermissions applies a batch of capability overrides. Admin-only keys
// are rejected whole at the write boundary.
//
// @Summary      Override permissions
// @Tags         admin
// @Router       /admin/users/{id}/permissions [patch]
func (h *AdminHandler) PatchPermissions(c echo.Context) error {
	var req permissionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.override(c, req.Permissions)
}

// Suspend locks an account out of authentication.
//
// @Summary      Suspend an account
// @Tags         admin
// @Router       /admin/users/{id}/suspend [post]
func (h *AdminHandler) Suspend(c echo.Context) error {
	actorID, err := ctxSubject(c)
	if err != nil {
		return err
	}

	user, err := h.admin.Suspend(c.Request().Context(), c.Param("id"), actorID, ctxProvenance(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// Reactivate lifts a suspension.
//
// @Summary      Reactivate an account
// @Tags         admin
// @Router       /admin/users/{id}/reactivate [post]
func (h *AdminHandler) Reactivate(c echo.Context) error {
	actorID, err := ctxSubject(c)
	if err != nil {
		return err
	}

	user, err := h.admin.Reactivate(c.Request().Context(), c.Param("id"), actorID, ctxProvenance(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// ListApprovals returns the queue of verified guests awaiting approval.
//
// @Summary      List pending approvals
// @Tags         admin
// @Router       /admin/approvals [get]
func (h *AdminHandler) ListApprovals(c echo.Context) error {
	entries, err := h.admin.PendingApprovals(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"approvals": entries})
}

func (h *AdminHandler) override(c echo.Context, overrides map[string]bool) error {
	actorID, err := ctxSubject(c)
	if err != nil {
		return err
	}

	user, err := h.admin.OverridePermissions(c.Request().Context(), c.Param("id"), actorID, overrides, ctxProvenance(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}
