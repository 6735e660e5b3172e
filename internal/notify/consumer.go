package notify

import (
	"context"
	"fmt"

	"viewswap/pkg/logger"
	"viewswap/pkg/queue"
	"viewswap/pkg/telegram"
)

// MessageSender delivers a notification to a Telegram chat.
type MessageSender interface {
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) error
}

// Consumer drains the notification queue and delivers each message to its
// recipient. Delivered notifications are also recorded in the inbox store.
type Consumer struct {
	queueClient *queue.Client
	sender      MessageSender
	inbox       *InboxStore
	logger      *logger.Logger
}

func NewConsumer(queueClient *queue.Client, sender MessageSender, inbox *InboxStore, logger *logger.Logger) *Consumer {
	return &Consumer{
		queueClient: queueClient,
		sender:      sender,
		inbox:       inbox,
		logger:      logger,
	}
}

// Run consumes until the queue channel closes or the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.queueClient.ConsumeNotifications(func(n queue.Notification) error {
			return c.deliver(ctx, n)
		})
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (c *Consumer) deliver(ctx context.Context, n queue.Notification) error {
	if n.ChatID == 0 {
		c.logger.Warn("Dropping %s notification without chat id (task %s)", n.Kind, n.TaskID)
		return nil
	}

	err := c.sender.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID: n.ChatID,
		Text:   n.Text,
	})
	if err != nil {
		// Returning the error nacks the delivery for a retry
		return fmt.Errorf("failed to deliver %s notification to chat %d: %w", n.Kind, n.ChatID, err)
	}

	c.inbox.Record(ctx, n)
	return nil
}
