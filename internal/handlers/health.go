package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/wod-sheets/pkg/storage"
)

type HealthResponse struct {
	Status     string         `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
	Service    string         `json:"service"`
	Components map[string]any `json:"components"`
}

// QueueDepther reports the number of queued roll requests.
type QueueDepther interface {
	RequestQueueDepth(ctx context.Context) (int, error)
}

type HealthHandler struct {
	storage storage.Storage
	queue   QueueDepther
	logger  *slog.Logger
}

// NewHealthHandler creates a health handler. queue may be nil when async
// rolls are disabled.
func NewHealthHandler(storage storage.Storage, queue QueueDepther, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		queue:   queue,
		logger:  logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]any)
	overallStatus := "healthy"

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	if h.queue != nil {
		depth, err := h.queue.RequestQueueDepth(ctx)
		if err != nil {
			h.logger.Warn("Queue health check failed", "error", err)
			components["queue"] = map[string]any{"status": "unhealthy"}
			overallStatus = "degraded"
		} else {
			components["queue"] = map[string]any{"status": "healthy", "depth": depth}
		}
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "wod-sheets",
		Components: components,
	})
}
