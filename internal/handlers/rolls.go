package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/internal/services/events"
	"github.com/jwebster45206/wod-sheets/internal/worker"
	"github.com/jwebster45206/wod-sheets/pkg/queue"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
)

// RollEnqueuer accepts roll requests for the worker.
type RollEnqueuer interface {
	EnqueueRequest(ctx context.Context, req *queue.Request) error
}

// QueuedRollResponse is returned for async rolls.
type QueuedRollResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// RollHandler resolves rolls inline or hands them to the worker when async
// is requested and a queue is configured.
type RollHandler struct {
	processor   *worker.SheetProcessor
	queue       RollEnqueuer
	broadcaster *events.Broadcaster
	logger      *slog.Logger
}

func NewRollHandler(processor *worker.SheetProcessor, queue RollEnqueuer, broadcaster *events.Broadcaster, logger *slog.Logger) *RollHandler {
	return &RollHandler{
		processor:   processor,
		queue:       queue,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// ServeHTTP handles POST /v1/sessions/{sid}/rolls
func (h *RollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sid, err := pathID(r, "sid")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	var req sheet.RollRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if req.Async && h.queue != nil {
		h.enqueue(w, r, sid, req)
		return
	}

	res, err := h.processor.ProcessRoll(r.Context(), sid, uuid.NewString(), req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, res)
}

func (h *RollHandler) enqueue(w http.ResponseWriter, r *http.Request, sid uuid.UUID, req sheet.RollRequest) {
	sess, _, err := h.processor.Load(r.Context(), sid)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	qr := queue.NewRollRequest(sess.SheetID, sess.ID, req)
	if err := h.queue.EnqueueRequest(r.Context(), qr); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	if h.broadcaster != nil {
		if err := h.broadcaster.PublishRollQueued(r.Context(), sess.SheetID, qr.RequestID); err != nil {
			h.logger.Warn("Failed to publish roll queued event", "error", err)
		}
	}
	h.logger.Info("Roll queued", "request_id", qr.RequestID, "sheet_id", sess.SheetID)
	writeJSON(w, h.logger, http.StatusAccepted, QueuedRollResponse{RequestID: qr.RequestID, Status: "queued"})
}
