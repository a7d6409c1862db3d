package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/pkg/chat"
	"github.com/jwebster45206/wod-sheets/pkg/storage"
	"github.com/redis/go-redis/v9"
)

func logKey(sheetID uuid.UUID) string {
	return "sheet-log:" + sheetID.String()
}

// Roll log operations. Newest entries sit at the head of the list.

func (r *RedisStorage) AppendLog(ctx context.Context, sheetID uuid.UUID, msg chat.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}
	key := logKey(sheetID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, storage.MaxLogEntries-1)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to append roll log", "sheet_id", sheetID, "error", err)
		return fmt.Errorf("failed to append roll log: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListLog(ctx context.Context, sheetID uuid.UUID, limit int) ([]chat.Message, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1 // Get all
	}
	entries, err := r.client.LRange(ctx, logKey(sheetID), 0, end).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read roll log: %w", err)
	}

	out := make([]chat.Message, 0, len(entries))
	for _, e := range entries {
		var msg chat.Message
		if err := json.Unmarshal([]byte(e), &msg); err != nil {
			r.logger.Warn("Skipping malformed roll log entry", "sheet_id", sheetID, "error", err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}
