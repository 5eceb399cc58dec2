package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"jobboard/docs"
	"jobboard/internal/auth"
	"jobboard/internal/cache"
	"jobboard/internal/config"
	"jobboard/internal/db"
	"jobboard/internal/handler"
	"jobboard/internal/logger"
	"jobboard/internal/metrics"
	"jobboard/internal/repository"
	"jobboard/internal/router"
	"jobboard/internal/service"
)

// @title Job Board Users API
// @version 1.0
// @description User accounts, companies and JWT authentication for the job board.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.New(logger.Config{Env: cfg.AppEnv, Level: cfg.LogLevel})

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}

	if cfg.ResetDB {
		log.Warn().Msg("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			log.Warn().Err(err).Msg("drop tables")
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		// cache reads degrade to misses, but refresh tokens cannot be stored
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
	}

	store := repository.NewStore(gormDB)

	jwtService := auth.NewJWTServiceWithTTL(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	companyService := service.NewCompanyService(store)
	userService := service.NewUserService(store, companyService, cacheClient)
	authService := service.NewAuthService(store.Users(), jwtService, tokenStore)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, log, metrics.New(cfg.AppName), jwtService, tokenStore, router.Handlers{
		User:    handler.NewUserHandler(userService),
		Auth:    handler.NewAuthHandler(authService, userService),
		Company: handler.NewCompanyHandler(companyService),
	})

	addr := ":" + cfg.ServerPort
	go func() {
		log.Info().Str("addr", addr).Str("db_driver", cfg.DBDriver).Msg("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info().Msg("server stopped")
}
