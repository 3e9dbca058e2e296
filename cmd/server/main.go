package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tutor-slot-booking/internal/config"
	"github.com/iliyamo/tutor-slot-booking/internal/database"
	"github.com/iliyamo/tutor-slot-booking/internal/handler"
	"github.com/iliyamo/tutor-slot-booking/internal/middleware"
	"github.com/iliyamo/tutor-slot-booking/internal/queue"
	"github.com/iliyamo/tutor-slot-booking/internal/repository"
	"github.com/iliyamo/tutor-slot-booking/internal/router"
	"github.com/iliyamo/tutor-slot-booking/internal/service"
	"github.com/iliyamo/tutor-slot-booking/migrations"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := config.NewLogger(cfg.Env)
	defer logger.Sync()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if err := database.Migrate(migrateCtx, db, migrations.FS); err != nil {
		cancel()
		logger.Fatal("migrations failed", zap.Error(err))
	}
	cancel()

	// Redis is optional: rate limiting and the response cache fail open
	// without it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting and response cache disabled")
	}

	// The notification consumer drains booking and feedback events in
	// the background. A broken broker must not take the API down.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			logger.Warn("notification consumer stopped", zap.Error(err))
		}
	}()

	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)
	ratings := repository.NewRatingRepo(db)
	profiles := repository.NewProfileRepo(db)
	notifier := service.NewQueueNotifier(logger)

	svc := service.NewBookingService(db, slots, bookings, ratings, profiles, notifier, logger)

	e := echo.New()
	e.HideBanner = true

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	e.Use(limiter)

	router.RegisterRoutes(e, db)
	router.RegisterPublic(e, handler.NewPublicHandler(svc), cache)
	router.RegisterStudent(e, handler.NewStudentHandler(svc), cfg.JWTSecret)
	router.RegisterTutor(e, handler.NewTutorHandler(svc), cfg.JWTSecret)

	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
