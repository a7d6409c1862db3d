package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/internal/services/events"
	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/chat"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
	"github.com/jwebster45206/wod-sheets/pkg/storage"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// RollResult is a persisted roll.
type RollResult struct {
	RequestID string             `json:"request_id"`
	Outcome   *sheet.RollOutcome `json:"outcome"`
	Message   chat.Message       `json:"message"`
	Sheet     *actor.Sheet       `json:"sheet"`
}

// SheetProcessor loads sessions and sheets, runs controller operations and
// persists the resulting field updates.
// It's used by both the HTTP handlers (synchronously) and the worker (asynchronously)
type SheetProcessor struct {
	storage     storage.Storage
	controller  *sheet.Controller
	broadcaster *events.Broadcaster
	logger      *slog.Logger
}

// NewSheetProcessor creates a new processor. broadcaster may be nil, in which
// case no events are published.
func NewSheetProcessor(
	storage storage.Storage,
	controller *sheet.Controller,
	broadcaster *events.Broadcaster,
	logger *slog.Logger,
) *SheetProcessor {
	return &SheetProcessor{
		storage:     storage,
		controller:  controller,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Controller exposes the sheet controller.
func (p *SheetProcessor) Controller() *sheet.Controller {
	return p.controller
}

// Load returns a session and its sheet.
func (p *SheetProcessor) Load(ctx context.Context, sessionID uuid.UUID) (*sheet.Session, *actor.Sheet, error) {
	sess, err := p.storage.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	s, err := p.storage.GetSheet(ctx, sess.SheetID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sheet: %w", err)
	}
	return sess, s, nil
}

// OpenSession starts a locked session on an existing sheet.
func (p *SheetProcessor) OpenSession(ctx context.Context, sheetID uuid.UUID, editable bool) (*sheet.Session, error) {
	if _, err := p.storage.GetSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	sess := sheet.NewSession(sheetID, editable)
	if err := p.storage.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	p.logger.Info("Session opened", "session_id", sess.ID, "sheet_id", sheetID, "editable", editable)
	return sess, nil
}

// View renders the sheet for a session.
func (p *SheetProcessor) View(ctx context.Context, sessionID uuid.UUID) (*sheet.View, error) {
	sess, s, err := p.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return p.controller.View(s, sess)
}

// ToggleLock flips and stores the session lock.
func (p *SheetProcessor) ToggleLock(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	sess, s, err := p.Load(ctx, sessionID)
	if err != nil {
		return false, err
	}
	locked, err := p.controller.ToggleLock(s, sess)
	if err != nil {
		return false, err
	}
	if err := p.storage.SaveSession(ctx, sess); err != nil {
		return false, err
	}
	if p.broadcaster != nil {
		if err := p.broadcaster.PublishSheetLocked(ctx, s.ID, sess.ID, locked); err != nil {
			p.logger.Warn("Failed to publish lock event", "error", err)
		}
	}
	return locked, nil
}

// StepTrack cycles one box. A stale index returns the current sheet with
// applied=false.
func (p *SheetProcessor) StepTrack(ctx context.Context, sessionID uuid.UUID, name string, index int) (*actor.Sheet, bool, error) {
	sess, s, err := p.Load(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	updates, applied, err := p.controller.StepTrack(s, sess, name, index)
	if err != nil {
		return nil, false, err
	}
	if !applied {
		p.logger.Debug("Stale box index ignored", "sheet_id", s.ID, "track", name, "index", index)
		return s, false, nil
	}
	s, err = p.apply(ctx, s, updates)
	return s, err == nil, err
}

// ChangeMax grows or shrinks a health or willpower track.
func (p *SheetProcessor) ChangeMax(ctx context.Context, sessionID uuid.UUID, name string, delta int) (*actor.Sheet, error) {
	sess, s, err := p.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	updates, err := p.controller.ChangeMax(s, sess, name, delta)
	if err != nil {
		return nil, err
	}
	return p.apply(ctx, s, updates)
}

// SetDots sets a dot counter, or clears it when empty is true.
func (p *SheetProcessor) SetDots(ctx context.Context, sessionID uuid.UUID, field string, index int, empty bool) (*actor.Sheet, error) {
	sess, s, err := p.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var updates []actor.FieldUpdate
	if empty {
		updates, err = p.controller.EmptyDots(s, sess, field)
	} else {
		updates, err = p.controller.SetDots(s, sess, field, index)
	}
	if err != nil {
		return nil, err
	}
	return p.apply(ctx, s, updates)
}

// CreateItem adds an item with per-type defaults.
func (p *SheetProcessor) CreateItem(ctx context.Context, sessionID uuid.UUID, typ actor.ItemType, data actor.Item) (actor.Item, error) {
	sess, s, err := p.Load(ctx, sessionID)
	if err != nil {
		return actor.Item{}, err
	}
	item, updates, err := p.controller.CreateItem(s, sess, typ, data)
	if err != nil {
		return actor.Item{}, err
	}
	if _, err := p.apply(ctx, s, updates); err != nil {
		return actor.Item{}, err
	}
	return item, nil
}

// DeleteItem removes an item.
func (p *SheetProcessor) DeleteItem(ctx context.Context, sessionID uuid.UUID, itemID string) error {
	sess, s, err := p.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	updates, err := p.controller.DeleteItem(s, sess, itemID)
	if err != nil {
		return err
	}
	_, err = p.apply(ctx, s, updates)
	return err
}

// ProcessRoll resolves a roll, persists its side effects, appends it to the
// sheet's log and publishes it.
func (p *SheetProcessor) ProcessRoll(ctx context.Context, sessionID uuid.UUID, requestID string, req sheet.RollRequest) (*RollResult, error) {
	start := time.Now()
	sess, s, err := p.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	outcome, err := p.controller.Roll(s, sess, req)
	if err != nil {
		return nil, err
	}
	msg := outcome.Message(s)

	s, err = p.apply(ctx, s, outcome.Updates)
	if err != nil {
		return nil, err
	}
	if err := p.storage.AppendLog(ctx, s.ID, msg); err != nil {
		return nil, err
	}

	if p.broadcaster != nil {
		if err := p.broadcaster.PublishRollCompleted(ctx, s.ID, requestID, msg); err != nil {
			p.logger.Warn("Failed to publish roll event", "error", err, "request_id", requestID)
		}
	}

	p.logger.Info("Roll resolved",
		"sheet_id", s.ID,
		"request_id", requestID,
		"label", outcome.Label,
		"successes", outcome.Result.TotalSuccesses,
		"duration_ms", time.Since(start).Milliseconds())

	return &RollResult{RequestID: requestID, Outcome: outcome, Message: msg, Sheet: s}, nil
}

// apply persists updates and announces them. With no updates it returns s.
func (p *SheetProcessor) apply(ctx context.Context, s *actor.Sheet, updates []actor.FieldUpdate) (*actor.Sheet, error) {
	if len(updates) == 0 {
		return s, nil
	}
	next, err := p.storage.UpdateSheet(ctx, s.ID, updates...)
	if err != nil {
		p.logger.Error("Failed to persist sheet updates", "sheet_id", s.ID, "error", err)
		return nil, err
	}
	if p.broadcaster != nil {
		if err := p.broadcaster.PublishSheetUpdated(ctx, s.ID, updates); err != nil {
			p.logger.Warn("Failed to publish sheet update", "error", err, "sheet_id", s.ID)
		}
	}
	return next, nil
}
