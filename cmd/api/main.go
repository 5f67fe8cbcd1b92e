package main

import (
	"context"
	"log"

	"uslugo/config"
	"uslugo/internal/handler"
	"uslugo/internal/redis"
	"uslugo/internal/repository"
	"uslugo/internal/server"
	"uslugo/internal/services"
	"uslugo/internal/storage"
	"uslugo/internal/ws"
	"uslugo/pkg/database"
	"uslugo/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redis.Ping(context.Background(), redisClient); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	lastSeen := redis.NewLastSeenStore(redisClient, cfg.PresenceTTL)
	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())

	var uploader services.ObjectUploader
	if cfg.S3Bucket != "" {
		s3Client, err := storage.NewClient(context.Background(), storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
		})
		if err != nil {
			log.Fatalf("Failed to set up object storage: %v", err)
		}
		uploader = s3Client
	} else {
		l.Warnf("S3_BUCKET not set, media uploads are disabled")
	}

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	authService := services.NewAuthService(userRepo, cfg)
	messageService := services.NewMessageService(messageRepo, conversationRepo, userRepo)
	userService := services.NewUserService(userRepo, uploader, lastSeen)
	listingService := services.NewListingService(serviceRepo, userRepo, uploader)
	reviewService := services.NewReviewService(reviewRepo, userRepo)
	favoriteService := services.NewFavoriteService(favoriteRepo, serviceRepo, listingService)

	registry := ws.NewRegistry()
	wsHandler := ws.NewHandler(authService, messageService, userRepo, registry, lastSeen, limiter, l.Logger)

	handlers := &server.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Message:  handler.NewMessageHandler(messageService),
		Service:  handler.NewServiceHandler(listingService),
		Review:   handler.NewReviewHandler(reviewService),
		Favorite: handler.NewFavoriteHandler(favoriteService),
		WS:       wsHandler,
	}

	srv := server.New(cfg, l, db)
	srv.SetupRoutes(handlers, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
