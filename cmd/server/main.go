package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"nightpaths-server/internal/config"
	"nightpaths-server/internal/content"
	"nightpaths-server/internal/handler"
	"nightpaths-server/internal/logger"
	"nightpaths-server/internal/metrics"
	"nightpaths-server/internal/middleware"
	"nightpaths-server/internal/repository"
	"nightpaths-server/internal/service"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting story server", zap.String("port", cfg.Port))

	redisClient, err := setupRedis(cfg)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.RedisAddr))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))

	authored, err := content.LoadDir(cfg.ContentDir, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load story content", zap.Error(err), zap.String("dir", cfg.ContentDir))
	}
	appLogger.Info("Loaded authored stories", zap.Int("count", len(authored)))

	m := metrics.New()

	storyRepo := repository.NewRedisStoryRepository(redisClient, appLogger)
	ratingRepo := repository.NewRedisRatingRepository(redisClient, appLogger)
	progressRepo := repository.NewRedisProgressRepository(redisClient, appLogger)
	analyticsRepo := repository.NewRedisAnalyticsRepository(redisClient, appLogger)

	storySvc := service.NewStoryService(storyRepo, progressRepo, authored, appLogger)
	ratingSvc := service.NewRatingService(ratingRepo, storyRepo, m, appLogger)
	leaderboardSvc := service.NewLeaderboardService(storyRepo, ratingRepo, appLogger)
	statsSvc := service.NewStatsService(progressRepo, ratingRepo, storyRepo, analyticsRepo, m, appLogger)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, storyRepo, appLogger)

	ctx := context.Background()
	if err := storySvc.EnsureIndex(ctx); err != nil {
		appLogger.Fatal("Failed to seed story index", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.EchoZapLogger(appLogger))
	e.Use(middleware.Identity(appLogger))

	h := handler.NewHandler(storySvc, ratingSvc, leaderboardSvc, statsSvc, analyticsSvc, m, appLogger)
	h.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	go func() {
		appLogger.Info("HTTP server listening", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func setupRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  cfg.RedisDialTimeout,
		ReadTimeout:  cfg.RedisReadTimeout,
		WriteTimeout: cfg.RedisWriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RedisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
