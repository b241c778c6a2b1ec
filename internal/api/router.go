package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/quotable/quotes-platform/internal/api/handler"
	"github.com/quotable/quotes-platform/internal/api/middleware"
	"github.com/quotable/quotes-platform/internal/api/session"
	"github.com/quotable/quotes-platform/internal/core/ports"
)

// Dependencies carries everything the router needs wired in.
type Dependencies struct {
	Registration ports.RegistrationService
	Auth         ports.AuthService
	Verification ports.VerificationService
	Admin        ports.AdminService
	Users        ports.UserRepository
	Sessions     *session.Manager

	Mongo *mongo.Database
	Redis *redis.Client
	Log   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("quotes"))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Registration, deps.Auth, deps.Verification, deps.Sessions)
	adminHandler := handler.NewAdminHandler(deps.Admin)
	sessionAuth := middleware.Session(deps.Sessions)

	// --- Public auth routes (rate limited per IP) ---
	auth := e.Group("/auth", middleware.AuthRateLimit())
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/verify-email", authHandler.VerifyEmail)
	auth.POST("/resend-verification", authHandler.ResendVerification)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.POST("/refresh", authHandler.Refresh)

	// --- Authenticated account routes ---
	me := e.Group("/auth", sessionAuth)
	me.GET("/me", authHandler.Me)
	me.DELETE("/me", authHandler.DeleteMe)
	me.POST("/logout", authHandler.Logout)

	// --- Admin routes: session, then the 404-rendering gate, then limits ---
	admin := e.Group("/admin", sessionAuth, middleware.AdminGate(deps.Users), middleware.AdminRateLimit())
	admin.POST("/users/:id/approve", adminHandler.Approve)
	admin.POST("/users/:id/grant-write", adminHandler.GrantWrite)
	admin.POST("/users/:id/revoke-write", adminHandler.RevokeWrite)
	admin.PATCH("/users/:id/permissions", adminHandler.PatchPermissions)
	admin.POST("/users/:id/suspend", adminHandler.Suspend)
	admin.POST("/users/:id/reactivate", adminHandler.Reactivate)
	admin.GET("/approvals", adminHandler.ListApprovals)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
