package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/api"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/api/middleware"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/ports"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/service"
	mongodb "github.com/walidfaroukPRO/olivegardens-backend/internal/infrastructure/db/mongo"
	redisdb "github.com/walidfaroukPRO/olivegardens-backend/internal/infrastructure/db/redis"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/infrastructure/memory"
	"github.com/walidfaroukPRO/olivegardens-backend/internal/pkg/config"
	"github.com/walidfaroukPRO/olivegardens-backend/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Hour
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// The token service validates the signing secret eagerly: a missing or
	// weak secret aborts the process before any request is served.
	tokenService, err := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid auth configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongodb index creation failed")
	}

	var (
		guard   ports.LoginGuard
		revoker ports.TokenRevoker
		rdb     *goredis.Client
	)
	switch cfg.Auth.Store {
	case "redis":
		rdb, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		guard = redisdb.NewLoginGuard(rdb, cfg.Auth.LockoutThreshold, cfg.Auth.LockoutWindow)
		revoker = redisdb.NewRevocationStore(rdb)
	case "memory":
		memGuard := memory.NewLoginGuard(cfg.Auth.LockoutThreshold, cfg.Auth.LockoutWindow)
		memGuard.StartSweeper(ctx, sweepInterval)
		memRevoker := memory.NewRevocationStore()
		memRevoker.StartSweeper(ctx, sweepInterval)
		guard, revoker = memGuard, memRevoker
		log.Info().Msg("using in-process auth stores: lockouts and revocations reset on restart")
	default:
		log.Fatal().Str("store", cfg.Auth.Store).Msg("unknown AUTH_STORE, expected memory or redis")
	}

	authService := service.NewAuthService(users, tokenService, guard, revoker, log)
	authenticator := middleware.NewAuthenticator(tokenService, users, revoker, guard, middleware.Config{
		RequireVerifiedEmail: cfg.Auth.RequireVerifiedEmail,
		AllowCookieToken:     cfg.Auth.AllowCookieToken,
		EnableIPLockout:      cfg.Auth.EnableIPLockout,
	}, log)

	e := api.NewRouter(db, rdb, authService, users, authenticator, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
