package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"viewswap/internal/archive"
	"viewswap/internal/gateway"
	"viewswap/internal/notify"
	"viewswap/internal/repo/persistent"
	"viewswap/internal/sweep"
	"viewswap/internal/usecase"
	"viewswap/pkg/config"
	"viewswap/pkg/logger"
	"viewswap/pkg/queue"
	"viewswap/pkg/s3"
	"viewswap/pkg/telegram"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RunBot wires and runs the bot process: the Telegram gateway, the
// notification consumer and the proof expiry sweeper.
func RunBot(cfg *config.Config, log *logger.Logger, db *gorm.DB, s3Client *s3.Client, queueClient *queue.Client, redisClient *redis.Client) {
	// Repositories
	txManager := persistent.NewTxManager(db)
	userRepo := persistent.NewUserRepository(db)
	videoRepo := persistent.NewVideoRepository(db)
	taskRepo := persistent.NewTaskRepository(db)
	logRepo := persistent.NewLogRepository(db)

	policy := usecase.PolicyFromConfig(cfg)
	botClient := telegram.NewClient(cfg.BotToken)

	var archiver usecase.ProofArchiver
	if s3Client != nil {
		archiver = archive.NewArchiver(botClient, s3Client, taskRepo, log)
	}

	// Use cases
	taskUseCase := usecase.NewTaskUseCase(txManager, userRepo, videoRepo, taskRepo, logRepo, queueClient, archiver, log, policy)
	videoUseCase := usecase.NewVideoUseCase(txManager, videoRepo, logRepo, log, policy)
	userUseCase := usecase.NewUserUseCase(txManager, userRepo, videoRepo, taskRepo, logRepo, log)
	enforcementUseCase := usecase.NewEnforcementUseCase(txManager, userRepo, logRepo, log, policy)

	bot := gateway.New(botClient, userUseCase, videoUseCase, taskUseCase, enforcementUseCase, redisClient, log, cfg.AdminTelegramIDs)
	sweeper := sweep.NewSweeper(taskUseCase, cfg.SweepInterval, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("Gateway stopped unexpectedly: %v", err)
		}
	}()
	go sweeper.Run(ctx)

	if queueClient != nil {
		consumer := notify.NewConsumer(queueClient, botClient, notify.NewInboxStore(redisClient, log), log)
		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("Notification consumer stopped unexpectedly: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down bot...")

	cancel()

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
	if queueClient != nil {
		queueClient.Close()
	}

	log.Info("Bot exited")
}
