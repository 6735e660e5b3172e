package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminHTTP "viewswap/internal/controller/http"
	"viewswap/internal/notify"
	"viewswap/internal/repo/persistent"
	"viewswap/internal/usecase"
	"viewswap/pkg/config"
	"viewswap/pkg/jwt"
	"viewswap/pkg/logger"
	"viewswap/pkg/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RunAdmin wires and runs the admin panel API.
func RunAdmin(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)

	// Repositories
	txManager := persistent.NewTxManager(db)
	userRepo := persistent.NewUserRepository(db)
	videoRepo := persistent.NewVideoRepository(db)
	taskRepo := persistent.NewTaskRepository(db)
	logRepo := persistent.NewLogRepository(db)

	policy := usecase.PolicyFromConfig(cfg)

	// Use cases
	userUseCase := usecase.NewUserUseCase(txManager, userRepo, videoRepo, taskRepo, logRepo, log)
	enforcementUseCase := usecase.NewEnforcementUseCase(txManager, userRepo, logRepo, log, policy)
	matcher := usecase.NewMatcher(taskRepo)

	inbox := notify.NewInboxStore(redisClient, log)

	adminHandler := adminHTTP.NewAdminHandler(userUseCase, enforcementUseCase, matcher, logRepo, inbox, jwtService, adminHTTP.AdminCredentials{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
	})

	// Setup router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		// No wildcard here: with AllowCredentials it would override the list
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/api/v1/login", adminHandler.Login)

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	api.Use(middleware.RequireRole("admin"))
	api.Use(middleware.RateLimitMiddleware(redisClient, 100, time.Minute))

	{
		api.GET("/users/strikable", adminHandler.GetStrikableUsers)
		api.GET("/users/:id", adminHandler.GetUser)
		api.GET("/users/:id/next-video", adminHandler.GetNextVideo)
		api.GET("/users/:id/inbox", adminHandler.GetUserInbox)
		api.POST("/users/:id/strikes", adminHandler.AddStrike)
		api.DELETE("/users/:id/strikes", adminHandler.RemoveStrike)
		api.GET("/logs", adminHandler.GetLogs)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info("Admin API starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down admin API...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		panic(err)
	}

	log.Info("Admin API exited")
}
