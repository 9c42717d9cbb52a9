package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baguri-ro/baguri-api/internal/config"
	"github.com/baguri-ro/baguri-api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue is the queue tasks land on unless overridden.
	DefaultQueue = constants.QueueDefault
)

// ErrQueueDisabled tells callers to process the work inline instead.
var ErrQueueDisabled = errors.New("queue disabled")

// Client wraps the asynq producer. A disabled client swallows enqueues so
// callers can fall back to inline processing.
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient builds a queue client.
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled reports whether tasks actually reach Redis.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close shuts down the producer connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue)}, opts...)
	_, err := c.client.EnqueueContext(ctx, task, options...)
	return err
}

// EnqueueOrderSettle pushes an order settlement task.
func (c *Client) EnqueueOrderSettle(ctx context.Context, orderID uint) error {
	if !c.Enabled() {
		return ErrQueueDisabled
	}
	task, err := NewOrderSettleTask(OrderSettlePayload{OrderID: orderID})
	if err != nil {
		return err
	}
	// Settlement must survive worker crashes; retries are cheap because the
	// handler is idempotent.
	return c.enqueue(ctx, task, asynq.MaxRetry(10))
}

// EnqueueWalletReconcile pushes a wallet reconciliation task.
func (c *Client) EnqueueWalletReconcile(ctx context.Context, designerID uint) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewWalletReconcileTask(WalletReconcilePayload{DesignerID: designerID})
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

// EnqueueWithdrawalPayout pushes a withdrawal payout task.
func (c *Client) EnqueueWithdrawalPayout(ctx context.Context, withdrawalID uint) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewWithdrawalPayoutTask(WithdrawalPayoutPayload{WithdrawalID: withdrawalID})
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, asynq.MaxRetry(5))
}

// EnqueueOrderExpire pushes an expiry sweep task.
func (c *Client) EnqueueOrderExpire(ctx context.Context, limit int) error {
	if !c.Enabled() {
		return ErrQueueDisabled
	}
	task, err := NewOrderExpireTask(OrderExpirePayload{Limit: limit})
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task)
}

// BuildServerConfig derives the asynq server settings.
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
