package main

import (
	"context"
	"log"
	"net"
	"os"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mealwise/backend/config"
	"github.com/mealwise/backend/internal/api"
	"github.com/mealwise/backend/internal/database"
	"github.com/mealwise/backend/internal/middleware"
	"github.com/mealwise/backend/internal/router"
	"github.com/mealwise/backend/internal/search"
	"github.com/mealwise/backend/internal/server"
	"github.com/mealwise/backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	var rateLimiter *middleware.RateLimiter
	redisClient, err := database.NewRedisClient(cfg, logger)
	if err != nil {
		logger.Warn("redis unavailable, search rate limiting disabled", zap.Error(err))
	} else {
		rateLimiter = middleware.NewSearchRateLimiter(redisClient)
	}

	// Services
	authService := service.NewAuthService(db, cfg.JWTSecret)
	profileService := service.NewProfileService(db)
	allergyService := service.NewAllergyService(db)

	gemini := search.NewGeminiClient(search.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	}, logger)
	var oracle search.QueryOracle
	if gemini != nil {
		oracle = gemini
	} else {
		logger.Warn("no Gemini API key configured, using keyword parsing only")
	}
	searchService := search.NewService(db, search.NewParser(oracle, logger), logger)

	var imageHandler *api.ImageHandler
	if cfg.S3Bucket != "" {
		awsCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		awsCfg, err := awsconfig.LoadDefaultConfig(awsCtx, awsconfig.WithRegion(cfg.S3Region))
		cancel()
		if err != nil {
			logger.Warn("failed to load AWS config, image uploads disabled", zap.Error(err))
		} else {
			imageService := service.NewImageService(db, s3.NewFromConfig(awsCfg), cfg.S3Bucket)
			imageHandler = api.NewImageHandler(imageService, authService)
		}
	}

	handlers := router.Handlers{
		Auth:    api.NewAuthHandler(authService),
		Profile: api.NewProfileHandler(profileService, authService),
		Allergy: api.NewAllergyHandler(allergyService, authService, db),
		Search:  api.NewSearchHandler(searchService, authService, rateLimiter),
		Image:   imageHandler,
	}

	engine := router.SetupRouter(handlers, corsOrigins())

	srv := server.NewServer(engine, logger)
	addr := net.JoinHostPort(cfg.ServerHost, cfg.ServerPort)
	if err := srv.Start(addr); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger() (*zap.Logger, error) {
	if config.GetEnvironment() == config.Production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func corsOrigins() []string {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			origins = append(origins, v)
		}
	}
	return origins
}
