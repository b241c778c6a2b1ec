package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quotable/quotes-platform/internal/api/session"
	"github.com/quotable/quotes-platform/internal/core/domain"
	"github.com/quotable/quotes-platform/internal/core/ports"
)

// AuthHandler serves the self-service account surface: registration, login,
// verification, and the authenticated profile routes.
type AuthHandler struct {
	registration ports.RegistrationService
	auth         ports.AuthService
	verification ports.VerificationService
	sessions     *session.Manager
}

func NewAuthHandler(
	registration ports.RegistrationService,
	auth ports.AuthService,
	verification ports.VerificationService,
	sessions *session.Manager,
) *AuthHandler {
	return &AuthHandler{
		registration: registration,
		auth:         auth,
		verification: verification,
		sessions:     sessions,
	}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type registerResponse struct {
	UserID  string        `json:"user_id"`
	Role    domain.Role   `json:"role"`
	Status  domain.Status `json:"status"`
	Message string        `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User        *domain.User       `json:"user"`
	Permissions domain.Permissions `json:"permissions"`
}

type verifyEmailRequest struct {
	Token   string `json:"token" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

type statusResponse struct {
	Status  domain.Status `json:"status,omitempty"`
	Message string        `json:"message"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Subject  string `json:"subject" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates a new account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.registration.Register(c.Request().Context(), ports.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Provenance:  ctxProvenance(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		UserID:  user.ID,
		Role:    user.Role,
		Status:  user.Status,
		Message: "check your inbox for a verification link",
	})
}

// Login exchanges credentials for a cookie-backed session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password, ctxProvenance(c))
	if err != nil {
		return err
	}

	if err := h.sessions.Issue(c, user.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{User: user, Permissions: user.Permissions})
}

// VerifyEmail consumes a single-use verification token.
//
// @Summary      Verify email address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyEmailRequest  true  "Verification token"
// @Success      200   {object}  statusResponse
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      410   {object}  map[string]string
// @Router       /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.verification.Verify(c.Request().Context(), req.Token, req.Subject, req.Email, ctxProvenance(c))
	if err != nil {
		return err
	}

	msg := "email verified"
	if result.AlreadyVerified {
		msg = "already verified"
	}
	return c.JSON(http.StatusOK, statusResponse{Status: result.Status, Message: msg})
}

// ResendVerification issues a fresh verification token. The response is 200
// whether or not the email exists, to prevent account enumeration; only an
// active cooldown is distinguishable.
//
// @Summary      Resend verification email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      emailRequest  true  "Account email"
// @Success      200   {object}  statusResponse
// @Failure      429   {object}  map[string]string
// @Router       /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.registration.ResendVerification(c.Request().Context(), req.Email, ctxProvenance(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Message: "if the address exists, a new link is on its way"})
}

// ForgotPassword issues a password-reset token under the same
// anti-enumeration rules as ResendVerification.
//
// @Summary      Request a password reset
// @Tags         auth
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.registration.RequestPasswordReset(c.Request().Context(), req.Email, ctxProvenance(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Message: "if the address exists, reset instructions are on their way"})
}

// ResetPassword consumes a reset token and installs a new credential.
//
// @Summary      Reset password
// @Tags         auth
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.verification.ResetPassword(c.Request().Context(), req.Token, req.Subject, req.Password, ctxProvenance(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Message: "password updated"})
}

// Me returns the authenticated profile with its authoritative permissions.
//
// @Summary      Current account profile
// @Tags         auth
// @Success      200  {object}  loginResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	subjectID, err := ctxSubject(c)
	if err != nil {
		return err
	}

	user, err := h.auth.Profile(c.Request().Context(), subjectID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{User: user, Permissions: user.Permissions})
}

// DeleteMe removes the account: external identity first, then both store
// records.
//
// @Summary      Delete current account
// @Tags         auth
// @Router       /auth/me [delete]
func (h *AuthHandler) DeleteMe(c echo.Context) error {
	subjectID, err := ctxSubject(c)
	if err != nil {
		return err
	}

	if err := h.auth.DeleteAccount(c.Request().Context(), subjectID, ctxProvenance(c)); err != nil {
		return err
	}
	h.sessions.Clear(c)
	return c.JSON(http.StatusOK, statusResponse{Message: "account deleted"})
}

// Logout clears the cookie triple and best-effort invalidates the upstream
// session; upstream failure never blocks the response.
//
// @Summary      Logout
// @Tags         auth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	subjectID, err := ctxSubject(c)
	if err != nil {
		return err
	}

	h.auth.Logout(c.Request().Context(), subjectID, ctxProvenance(c))
	h.sessions.Clear(c)
	return c.JSON(http.StatusOK, statusResponse{Message: "logged out"})
}

// Refresh rotates the session and csrf cookies from a valid refresh cookie.
// Account state is re-checked first: holding a refresh cookie must not let a
// suspended or deleted account keep minting sessions.
//
// @Summary      Refresh session
// @Tags         auth
// @Success      200   {object}  statusResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	subjectID, err := h.sessions.ValidateRefresh(c)
	if err != nil {
		return err
	}

	user, err := h.auth.Refresh(c.Request().Context(), subjectID)
	if err != nil {
		return err
	}

	if err := h.sessions.Issue(c, user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Message: "session refreshed"})
}
