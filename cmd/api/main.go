package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quotable/quotes-platform/internal/api"
	"github.com/quotable/quotes-platform/internal/api/session"
	"github.com/quotable/quotes-platform/internal/core/service"
	"github.com/quotable/quotes-platform/internal/infrastructure/config"
	"github.com/quotable/quotes-platform/internal/infrastructure/db/credstore"
	mongodb "github.com/quotable/quotes-platform/internal/infrastructure/db/mongo"
	redisdb "github.com/quotable/quotes-platform/internal/infrastructure/db/redis"
	"github.com/quotable/quotes-platform/internal/infrastructure/email"
	"github.com/quotable/quotes-platform/internal/infrastructure/identity"
	"github.com/quotable/quotes-platform/internal/infrastructure/queue"
	"github.com/quotable/quotes-platform/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.Production(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	users := credstore.New(mongodb.NewUserRepository(db), redisdb.NewPermissionStore(rdb))
	tokens := mongodb.NewTokenRepository(db)
	approvals := mongodb.NewApprovalRepository(db)
	locks := redisdb.NewLockRegistry(rdb)
	cooldowns := redisdb.NewCooldownRegistry(rdb)

	// --- External collaborators ---
	authority := identity.NewClient(identity.Config{
		BaseURL: cfg.Identity.BaseURL,
		APIKey:  cfg.Identity.APIKey,
		Timeout: cfg.Identity.Timeout,
	})
	verifier := identity.NewVerifier(cfg.Identity.Secret)
	mailer := email.NewLogMailer(log)

	// --- Audit pipeline ---
	audit := queue.NewAuditDispatcher(cfg.Audit.Workers, mongodb.NewAuditRepository(db), log)
	audit.Start(ctx)

	// --- Services ---
	checker := service.NewEmailChecker(nil)
	registration := service.NewRegistrationService(users, tokens, authority, cooldowns, mailer, audit, checker, log)
	auth := service.NewAuthService(users, authority, verifier, audit, log)
	verification := service.NewVerificationService(users, tokens, approvals, locks, authority, audit, log)
	admin := service.NewAdminService(users, approvals, audit, log)
	sessions := session.NewManager(cfg.SessionSecret, cfg.Production())

	e := api.NewRouter(api.Dependencies{
		Registration: registration,
		Auth:         auth,
		Verification: verification,
		Admin:        admin,
		Users:        users,
		Sessions:     sessions,
		Mongo:        db,
		Redis:        rdb,
		Log:          log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("account service listening")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
