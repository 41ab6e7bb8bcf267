package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/iliyamo/tutoplus/internal/config"
	"github.com/iliyamo/tutoplus/internal/database"
	"github.com/iliyamo/tutoplus/internal/handler"
	"github.com/iliyamo/tutoplus/internal/logger"
	"github.com/iliyamo/tutoplus/internal/middleware"
	"github.com/iliyamo/tutoplus/internal/queue"
	"github.com/iliyamo/tutoplus/internal/repository"
	"github.com/iliyamo/tutoplus/internal/router"
	"github.com/iliyamo/tutoplus/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if cfg.AutoMigrate {
		m, err := database.NewMigrator(db, log)
		if err != nil {
			log.Fatal("init migrations", zap.Error(err))
		}
		if err := m.Run(ctx); err != nil {
			log.Fatal("apply migrations", zap.Error(err))
		}
	}

	// Redis is optional: without it the vocabulary endpoint is served uncached.
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		log.Warn("redis unavailable, response cache disabled", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	pub, err := queue.NewPublisher(config.LoadBrokerConfig(), log)
	if err != nil {
		log.Fatal("mail publisher", zap.Error(err))
	}
	defer pub.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	profiles := repository.NewProfileRepo(db)
	registrations := repository.NewRegistrationRepo(db)
	assignments := repository.NewAssignmentRepo(db)
	sessions := repository.NewSessionRepo(db)

	authSvc := service.NewAuthService(cfg, users, profiles, tokens, pub, log)
	adminSvc := service.NewAdminService(cfg, users, tokens, log)
	collections := service.NewRegistry(profiles, registrations, assignments, sessions)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewHTTPMetrics(reg)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	v := handler.NewValidator()
	e.Validator = v
	e.Use(middleware.RequestLogger(log), metrics.Middleware())

	router.RegisterRoutes(e, &handler.HealthHandler{DB: db, Redis: rdb}, reg)
	router.RegisterPublic(e, middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log))
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, log, v), cfg.JWTSecret)
	router.RegisterRest(e, handler.NewRestHandler(collections, log), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(adminSvc, log), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
