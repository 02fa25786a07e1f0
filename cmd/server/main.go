package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/cache"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/config"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/handlers"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/middleware"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/repositories/postgres"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/services"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/utils"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/pkg"
	"github.com/gin-gonic/gin"
)

const assessmentCacheTTL = 10 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := utils.NewLogger(os.Stdout, cfg.Environment, cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.LogError(err, "Server stopped with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger utils.Logger) error {
	log := logger.Slog()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := postgres.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	repo := postgres.NewRepository(db)
	defer repo.Close()
	log.Info("Connected to database")

	cacheService := cache.CacheService(cache.NoopCache{})
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			log.Warn("Redis unavailable, assessment cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheService = cache.NewRedisCache(redisClient, log)
			log.Info("Connected to Redis")
		}
	}

	publisher, err := cfg.Events.CreateEventPublisher(log)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	v := validator.New()
	assessmentService := services.NewAssessmentService(repo, cache.NewAssessmentCache(cacheService, assessmentCacheTTL, log), publisher, log, v)
	responseService := services.NewResponseService(repo, publisher, log, v)
	exportService := services.NewExportService(assessmentService, responseService, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		utils.RequestIDMiddleware(),
		utils.LoggerMiddleware(logger),
		gin.Recovery(),
		middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(cfg.RateLimit, cfg.RateBurst)),
	)
	handlers.NewHandlerManager(assessmentService, responseService, exportService, repo, logger).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server exited")
	return nil
}
