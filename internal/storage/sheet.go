package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/storage"
	"github.com/redis/go-redis/v9"
)

const (
	sheetIndexKey     = "sheets"
	maxUpdateAttempts = 5
)

func sheetKey(id uuid.UUID) string {
	return "sheet:" + id.String()
}

// Sheet operations (Redis-backed)

func (r *RedisStorage) SaveSheet(ctx context.Context, s *actor.Sheet) error {
	if s == nil {
		return errors.New("sheet cannot be nil")
	}
	s.UpdatedAt = time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}

	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("Failed to marshal sheet", "sheet_id", s.ID, "error", err)
		return fmt.Errorf("failed to marshal sheet: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sheetKey(s.ID), data, r.ttl)
		pipe.SAdd(ctx, sheetIndexKey, s.ID.String())
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save sheet", "sheet_id", s.ID, "error", err)
		return fmt.Errorf("failed to save sheet: %w", err)
	}
	return nil
}

func (r *RedisStorage) GetSheet(ctx context.Context, id uuid.UUID) (*actor.Sheet, error) {
	data, err := r.client.Get(ctx, sheetKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Sheet not found", "sheet_id", id)
			return nil, storage.ErrNotFound
		}
		r.logger.Error("Failed to load sheet", "sheet_id", id, "error", err)
		return nil, fmt.Errorf("failed to load sheet: %w", err)
	}

	var s actor.Sheet
	if err := json.Unmarshal(data, &s); err != nil {
		r.logger.Error("Failed to unmarshal sheet", "sheet_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal sheet: %w", err)
	}
	return &s, nil
}

// UpdateSheet writes deep-keyed fields into the stored document under an
// optimistic WATCH, retrying when another writer touched the sheet.
func (r *RedisStorage) UpdateSheet(ctx context.Context, id uuid.UUID, updates ...actor.FieldUpdate) (*actor.Sheet, error) {
	key := sheetKey(id)
	updates = append(slices.Clone(updates), actor.FieldUpdate{Path: "updated_at", Value: time.Now()})

	var out *actor.Sheet
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return storage.ErrNotFound
			}
			return err
		}
		next, err := actor.ApplyUpdates(data, updates...)
		if err != nil {
			return err
		}
		var s actor.Sheet
		if err := json.Unmarshal(next, &s); err != nil {
			return fmt.Errorf("failed to unmarshal sheet: %w", err)
		}
		if r.beforeCommit != nil {
			r.beforeCommit()
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		out = &s
		return nil
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return out, nil
		case errors.Is(err, redis.TxFailedErr):
			r.logger.Debug("Sheet changed during update, retrying", "sheet_id", id, "attempt", attempt)
			continue
		case errors.Is(err, storage.ErrNotFound):
			return nil, err
		default:
			r.logger.Error("Failed to update sheet", "sheet_id", id, "error", err)
			return nil, fmt.Errorf("failed to update sheet: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to update sheet %s: too much contention", id)
}

func (r *RedisStorage) DeleteSheet(ctx context.Context, id uuid.UUID) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sheetKey(id), logKey(id))
		pipe.SRem(ctx, sheetIndexKey, id.String())
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to delete sheet", "sheet_id", id, "error", err)
		return fmt.Errorf("failed to delete sheet: %w", err)
	}
	return nil
}

// ListSheets summarizes every indexed sheet, pruning index entries whose
// sheet has expired.
func (r *RedisStorage) ListSheets(ctx context.Context) ([]actor.Summary, error) {
	ids, err := r.client.SMembers(ctx, sheetIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	if len(ids) == 0 {
		return []actor.Summary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "sheet:" + id
	}
	docs, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load sheets: %w", err)
	}

	out := make([]actor.Summary, 0, len(docs))
	var stale []any
	for i, doc := range docs {
		s, ok := doc.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		out = append(out, actor.Summarize([]byte(s)))
	}
	if len(stale) > 0 {
		if err := r.client.SRem(ctx, sheetIndexKey, stale...).Err(); err != nil {
			r.logger.Warn("Failed to prune sheet index", "error", err)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
