package main

import (
	"viewswap/internal/app"
	"viewswap/pkg/cache"
	"viewswap/pkg/config"
	"viewswap/pkg/database"
	"viewswap/pkg/logger"
	"viewswap/pkg/queue"
	"viewswap/pkg/s3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if cfg.BotToken == "" {
		panic("BOT_TOKEN must be set in environment variables")
	}

	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	// Redis, RabbitMQ and S3 are optional: without them the bot runs with
	// rate limiting, queued notifications and proof archiving disabled.
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Redis unavailable, continuing without it: %v", err)
		redisClient = nil
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("RabbitMQ unavailable, continuing without notifications: %v", err)
		queueClient = nil
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Warn("S3 unavailable, continuing without proof archiving: %v", err)
		s3Client = nil
	}

	app.RunBot(cfg, log, db, s3Client, queueClient, redisClient)
}
