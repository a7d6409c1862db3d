package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/internal/logger"
	"github.com/jwebster45206/wod-sheets/internal/services/events"
	"github.com/jwebster45206/wod-sheets/internal/services/queue"
	queuePkg "github.com/jwebster45206/wod-sheets/pkg/queue"
	"github.com/redis/go-redis/v9"
)

const (
	workerTimeout = 5 * time.Second
	lockTTL       = 30 * time.Second
)

// releaseScript deletes the lock only if this worker still owns it.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Worker processes queued roll requests
type Worker struct {
	id          string
	queue       *queue.RollQueue
	processor   *SheetProcessor
	broadcaster *events.Broadcaster
	redisClient *redis.Client
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance
func New(rollQueue *queue.RollQueue, processor *SheetProcessor, broadcaster *events.Broadcaster, redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:          workerID,
		queue:       rollQueue,
		processor:   processor,
		broadcaster: broadcaster,
		redisClient: redisClient,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// ID returns the worker's identifier, used as the lock owner value
func (w *Worker) ID() string {
	return w.id
}

// Start begins processing requests from the queue
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNextRequest(); err != nil {
				logger.WithError(w.log, err).Error("Error processing request", "worker_id", w.id)
				// Continue processing even on error
				time.Sleep(1 * time.Second)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// processNextRequest pulls the next request from the queue and processes it
func (w *Worker) processNextRequest() error {
	req, err := w.queue.BlockingDequeueRequest(w.ctx, workerTimeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		// Queue is empty or timeout occurred - this is normal
		return nil
	}
	return w.handle(req)
}

// handle runs one request under the sheet lock, re-queueing it when another
// worker holds the lock.
func (w *Worker) handle(req *queuePkg.Request) error {
	w.log.Info("Received request from queue",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"type", req.Type,
		"sheet_id", req.SheetID.String(),
	)

	locked, err := w.acquireSheetLock(req.SheetID)
	if err != nil {
		return fmt.Errorf("failed to acquire sheet lock: %w", err)
	}
	if !locked {
		w.log.Info("Sheet already locked, re-queueing request",
			"worker_id", w.id,
			"request_id", req.RequestID,
			"sheet_id", req.SheetID.String(),
		)
		if err := w.queue.EnqueueRequest(w.ctx, req); err != nil {
			return fmt.Errorf("failed to re-queue request: %w", err)
		}
		return nil
	}

	defer w.releaseSheetLock(req.SheetID)
	return w.processRequest(req)
}

func lockKey(sheetID uuid.UUID) string {
	return fmt.Sprintf("sheet-lock:%s", sheetID.String())
}

// acquireSheetLock attempts to acquire a lock for a sheet
// Returns true if lock was acquired, false if already locked
func (w *Worker) acquireSheetLock(sheetID uuid.UUID) (bool, error) {
	return w.redisClient.SetNX(w.ctx, lockKey(sheetID), w.id, lockTTL).Result()
}

// releaseSheetLock releases the lock for a sheet
func (w *Worker) releaseSheetLock(sheetID uuid.UUID) {
	if err := releaseScript.Run(w.ctx, w.redisClient, []string{lockKey(sheetID)}, w.id).Err(); err != nil {
		w.log.Error("Failed to release sheet lock", "error", err, "sheet_id", sheetID.String())
	}
}

// processRequest resolves a single request with the SheetProcessor
func (w *Worker) processRequest(req *queuePkg.Request) error {
	switch req.Type {
	case queuePkg.RequestTypeRoll:
		if err := w.broadcaster.PublishRollProcessing(w.ctx, req.SheetID, req.RequestID, req.Roll.Label); err != nil {
			w.log.Error("Failed to publish processing event", "error", err)
		}

		if _, err := w.processor.ProcessRoll(w.ctx, req.SessionID, req.RequestID, req.Roll); err != nil {
			w.log.Error("Failed to process roll",
				"error", err,
				"request_id", req.RequestID,
				"sheet_id", req.SheetID.String(),
			)
			if pubErr := w.broadcaster.PublishRollFailed(w.ctx, req.SheetID, req.RequestID, err.Error()); pubErr != nil {
				w.log.Error("Failed to publish failure event", "error", pubErr)
			}
			return fmt.Errorf("failed to process roll: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown request type: %s", req.Type)
	}
}
