package gateway

import (
	"context"
	"time"

	"viewswap/internal/usecase"
	"viewswap/pkg/logger"
	"viewswap/pkg/telegram"

	"github.com/redis/go-redis/v9"
)

const (
	pollTimeoutSecs   = 30
	rateLimitMessages = 20
	rateLimitWindow   = 10 * time.Second
)

// BotAPI is the slice of the Telegram client the gateway talks to.
type BotAPI interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) error
	SendPhoto(ctx context.Context, req telegram.SendPhotoRequest) error
	AnswerCallbackQuery(ctx context.Context, req telegram.AnswerCallbackQueryRequest) error
}

// Gateway is the bot's inbound edge: it long-polls Telegram, tracks per-chat
// dialogue state and translates commands into use case calls.
type Gateway struct {
	api         BotAPI
	users       usecase.UserUseCase
	videos      usecase.VideoUseCase
	tasks       usecase.TaskUseCase
	enforcement usecase.EnforcementUseCase
	sessions    *SessionStore
	redisClient *redis.Client
	logger      *logger.Logger
	adminIDs    map[int64]bool
}

func New(
	api BotAPI,
	users usecase.UserUseCase,
	videos usecase.VideoUseCase,
	tasks usecase.TaskUseCase,
	enforcement usecase.EnforcementUseCase,
	redisClient *redis.Client,
	logger *logger.Logger,
	adminTelegramIDs []int64,
) *Gateway {
	admins := make(map[int64]bool, len(adminTelegramIDs))
	for _, id := range adminTelegramIDs {
		admins[id] = true
	}
	return &Gateway{
		api:         api,
		users:       users,
		videos:      videos,
		tasks:       tasks,
		enforcement: enforcement,
		sessions:    NewSessionStore(),
		redisClient: redisClient,
		logger:      logger,
		adminIDs:    admins,
	}
}

// Run long-polls for updates until the context is cancelled. Updates are
// handled concurrently; ordering within a chat is guarded by the session
// store's lock and the database transactions underneath.
func (g *Gateway) Run(ctx context.Context) error {
	var offset int64

	g.logger.Info("Gateway started, polling for updates")
	for {
		select {
		case <-ctx.Done():
			g.logger.Info("Gateway stopped")
			return ctx.Err()
		default:
		}

		updates, err := g.api.GetUpdates(ctx, offset, pollTimeoutSecs)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.logger.Error("Failed to poll updates: %v", err)
			time.Sleep(3 * time.Second)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			go g.HandleUpdate(ctx, update)
		}
	}
}

func (g *Gateway) HandleUpdate(ctx context.Context, update telegram.Update) {
	switch {
	case update.Message != nil:
		g.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		g.handleCallback(ctx, update.CallbackQuery)
	}
}

// allowMessage applies a per-chat sliding rate limit. Without Redis the
// limiter is disabled rather than failing closed.
func (g *Gateway) allowMessage(ctx context.Context, chatID int64) bool {
	if g.redisClient == nil {
		return true
	}

	key := keyRateLimit(chatID)
	count, err := g.redisClient.Incr(ctx, key).Result()
	if err != nil {
		g.logger.Warn("Rate limiter unavailable: %v", err)
		return true
	}
	if count == 1 {
		g.redisClient.Expire(ctx, key, rateLimitWindow)
	}
	return count <= rateLimitMessages
}

func (g *Gateway) isAdmin(telegramID int64) bool {
	return g.adminIDs[telegramID]
}

func (g *Gateway) reply(ctx context.Context, chatID int64, text string) {
	g.replyMarkup(ctx, chatID, text, nil)
}

func (g *Gateway) replyMarkup(ctx context.Context, chatID int64, text string, markup interface{}) {
	err := g.api.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		g.logger.Error("Failed to send message to chat %d: %v", chatID, err)
	}
}
