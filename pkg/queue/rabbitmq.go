package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"viewswap/pkg/config"
	"viewswap/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	NotificationQueueName = "notification_queue"
	NotificationExchange  = "notifications"
	TaskEventRoutingKey   = "task_event"
)

// Notification kinds published by the task lifecycle.
const (
	KindProofSubmitted = "proof_submitted"
	KindProofAccepted  = "proof_accepted"
	KindProofRejected  = "proof_rejected"
)

// Notification is a message addressed to one Telegram chat, produced after a
// task state transition has committed.
type Notification struct {
	Kind       string `json:"kind"`
	ChatID     int64  `json:"chat_id"`
	TaskID     string `json:"task_id"`
	VideoTitle string `json:"video_title,omitempty"`
	Text       string `json:"text"`
	Priority   int    `json:"priority"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		NotificationExchange, // name
		"direct",             // type
		true,                 // durable
		false,                // auto-deleted
		false,                // internal
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Priority queue so rejection notices outrank routine ones
	_, err = channel.QueueDeclare(
		NotificationQueueName, // name
		true,                  // durable
		false,                 // delete when unused
		false,                 // exclusive
		false,                 // no-wait
		amqp.Table{
			"x-max-priority": 10,
		},
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		NotificationQueueName,
		TaskEventRoutingKey,
		NotificationExchange,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PublishNotification publishes a task notification to the queue with priority.
func (c *Client) PublishNotification(n Notification) error {
	priority := n.Priority
	if priority < 0 {
		priority = 0
	}
	if priority > 10 {
		priority = 10
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = c.channel.Publish(
		NotificationExchange,
		TaskEventRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			Priority:     uint8(priority),
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish %s notification for task %s: %v", n.Kind, n.TaskID, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published %s notification for task %s to chat %d", n.Kind, n.TaskID, n.ChatID)
	return nil
}

// ConsumeNotifications consumes task notifications from the queue.
func (c *Client) ConsumeNotifications(handler func(n Notification) error) error {
	msgs, err := c.channel.Consume(
		NotificationQueueName, // queue
		"",                    // consumer
		false,                 // auto-ack (we'll manually ack after processing)
		false,                 // exclusive
		false,                 // no-local
		false,                 // no-wait
		nil,                   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from notification queue: %s", NotificationQueueName)

	go func() {
		for msg := range msgs {
			var n Notification
			if err := json.Unmarshal(msg.Body, &n); err != nil {
				c.logger.Error("[RABBITMQ] Failed to unmarshal notification: %v, body=%s", err, string(msg.Body))
				msg.Nack(false, false) // Reject and don't requeue
				continue
			}

			if err := handler(n); err != nil {
				c.logger.Error("[RABBITMQ] Handler failed for %s notification (task %s): %v", n.Kind, n.TaskID, err)
				msg.Nack(false, true) // Reject and requeue
				continue
			}

			msg.Ack(false)
		}
	}()

	return nil
}

// GetQueueLength returns the number of messages in the queue.
func (c *Client) GetQueueLength() (int, error) {
	queue, err := c.channel.QueueInspect(NotificationQueueName)
	if err != nil {
		return 0, err
	}
	return queue.Messages, nil
}
