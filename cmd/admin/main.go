package main

import (
	"viewswap/internal/app"
	"viewswap/pkg/cache"
	"viewswap/pkg/config"
	"viewswap/pkg/database"
	"viewswap/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if cfg.JWTSecret == "your-secret-key-change-in-production" || cfg.JWTSecret == "" {
		panic("JWT_SECRET must be set in environment variables")
	}
	if cfg.AdminPasswordHash == "" {
		panic("ADMIN_PASSWORD_HASH must be set in environment variables")
	}

	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}

	app.RunAdmin(cfg, log, db, redisClient)
}
