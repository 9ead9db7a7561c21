package main

import (
	"context"
	"fmt"
	"log"

	"filevault/config"
	"filevault/internal/handler"
	"filevault/internal/middleware"
	"filevault/internal/redis"
	"filevault/internal/services"
	"filevault/internal/storage"
	"filevault/internal/store"
	"filevault/pkg/database"
	"filevault/pkg/logger"

	"filevault/internal/domain"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == "release" {
		gin.SetMode(gin.ReleaseMode)
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	defer l.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db, "migrations"); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	blobs, err := storage.NewS3Client(context.Background(), storage.S3Config{
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Endpoint:  cfg.S3Endpoint,
	})
	if err != nil {
		log.Fatalf("Failed to create s3 client: %v", err)
	}

	userStore := store.New[domain.User](db)
	attachmentStore := store.New[domain.Attachment](db)

	userService := services.NewUserService(userStore)
	authService := services.NewAuthService(userService, cfg)
	attachmentService := services.NewAttachmentService(attachmentStore, userService, blobs)

	authHandler := handler.NewAuthHandler(authService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService)

	// Rate limiting is optional; without Redis the auth routes are unlimited.
	var limiter *redis.RateLimiter
	if cfg.RedisHost != "" {
		client := redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		limitCfg := redis.DefaultRateLimitConfig()
		limitCfg.AuthLimit = cfg.AuthRateLimit
		limiter = redis.NewRateLimiter(client, limitCfg)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(l))
	r.Use(middleware.ErrorHandler(l))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	auth := r.Group("/v1/auth")
	auth.Use(middleware.AuthRateLimitMiddleware(limiter))
	{
		auth.POST("/signup", authHandler.SignUp)
		auth.POST("/signin", authHandler.SignIn)
	}

	attachments := r.Group("/v1/attachments")
	attachments.Use(middleware.AuthMiddleware(authService))
	{
		attachments.POST("", attachmentHandler.Upload)
		attachments.GET("", attachmentHandler.List)
		attachments.GET("/:id", attachmentHandler.GetByID)
		attachments.GET("/:id/download", attachmentHandler.Download)
		attachments.PATCH("/:id", attachmentHandler.Rename)
		attachments.DELETE("/:id", attachmentHandler.Delete)
		attachments.POST("/share", attachmentHandler.Share)
	}

	l.Infof("Starting server on port %s", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
