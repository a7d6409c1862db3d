package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Client holds the Redis connection the roll queue pushes to and pops from.
// The API and the worker each open their own.
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewClient dials the roll queue's Redis from a redis:// URL and fails fast
// when the server does not answer a ping.
func NewClient(redisURL string, logger *slog.Logger) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid roll queue redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("roll queue redis at %s unreachable: %w", opt.Addr, err)
	}

	// The URL may carry a password, so only the address is logged.
	logger.Info("Roll queue connected", "addr", opt.Addr, "db", opt.DB)

	return &Client{
		rdb:    rdb,
		logger: logger.With("component", "roll_queue"),
	}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
