package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwebster45206/wod-sheets/pkg/queue"
	"github.com/redis/go-redis/v9"
)

// RequestsKey is the Redis list holding queued roll requests for all sheets.
const RequestsKey = "roll-requests"

// RollQueue is a FIFO of roll requests shared by the API and the workers
type RollQueue struct {
	client *Client
}

func NewRollQueue(client *Client) *RollQueue {
	return &RollQueue{
		client: client,
	}
}

// EnqueueRequest adds a request to the end of the queue
func (q *RollQueue) EnqueueRequest(ctx context.Context, req *queue.Request) error {
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	if err := q.client.rdb.RPush(ctx, RequestsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	q.client.logger.Debug("Roll request enqueued",
		"request_id", req.RequestID,
		"sheet_id", req.SheetID.String())
	return nil
}

// DequeueRequest removes and returns the next request
// Returns nil if queue is empty
func (q *RollQueue) DequeueRequest(ctx context.Context) (*queue.Request, error) {
	result, err := q.client.rdb.LPop(ctx, RequestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Queue is empty
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	req, err := queue.FromJSON([]byte(result))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// BlockingDequeueRequest waits up to timeout for a request. It returns nil
// when the timeout passes or ctx ends with the queue still empty.
func (q *RollQueue) BlockingDequeueRequest(ctx context.Context, timeout time.Duration) (*queue.Request, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, RequestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := queue.FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// Peek returns up to limit queued requests without removing them
func (q *RollQueue) Peek(ctx context.Context, limit int) ([]*queue.Request, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1 // Get all
	}
	entries, err := q.client.rdb.LRange(ctx, RequestsKey, 0, end).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to peek requests: %w", err)
	}

	out := make([]*queue.Request, 0, len(entries))
	for _, e := range entries {
		req, err := queue.FromJSON([]byte(e))
		if err != nil {
			q.client.logger.Warn("Skipping malformed queued request", "error", err)
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

// RequestQueueDepth returns the number of queued requests
func (q *RollQueue) RequestQueueDepth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, RequestsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get request queue depth: %w", err)
	}
	return int(count), nil
}

// Clear drops every queued request
func (q *RollQueue) Clear(ctx context.Context) error {
	if err := q.client.rdb.Del(ctx, RequestsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear request queue: %w", err)
	}
	return nil
}
