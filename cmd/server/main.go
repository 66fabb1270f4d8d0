package main

import (
	"context"
	"log"
	"net/http"

	_ "chirp/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"chirp/internal/auth"
	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/db"
	"chirp/internal/handler"
	"chirp/internal/media"
	"chirp/internal/repository"
	"chirp/internal/router"
	"chirp/internal/service"
)

// @title Chirp API
// @version 1.0
// @description Social backend with tweet CRUD, JWT session management and channel subscriptions.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. The accessToken cookie works too.
func main() {
	cfg := config.Load()
	ctx := context.Background()

	e := echo.New()
	e.Use(middleware.RequestID())

	mongoDB, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	defer mongoDB.Client().Disconnect(ctx)

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	mediaStore, err := media.NewMinioStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MediaBaseURL, cfg.MinioUseSSL,
	)
	if err != nil {
		log.Fatalf("media store init: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(mongoDB)
	tweetRepo := repository.NewTweetRepository(mongoDB)
	subscriptionRepo := repository.NewSubscriptionRepository(mongoDB)

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry,
	)
	blacklist := auth.NewRedisBlacklist(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, blacklist)
	tweetService := service.NewTweetService(tweetRepo)
	channelService := service.NewChannelService(subscriptionRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, mediaStore)
	tweetHandler := handler.NewTweetHandler(tweetService)
	channelHandler := handler.NewChannelHandler(channelService)

	// Register routes
	router.Register(e, authService, authHandler, tweetHandler, channelHandler)

	if cfg.SwaggerHost != "" {
		log.Printf("Swagger documentation available at: http://%s/swagger/index.html", cfg.SwaggerHost)
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
