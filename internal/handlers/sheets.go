package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/storage"
)

// CreateSheetRequest names the template a new sheet starts from.
type CreateSheetRequest struct {
	Template string `json:"template"`
	Name     string `json:"name"`
}

type SheetListResponse struct {
	Sheets []actor.Summary `json:"sheets"`
}

type SheetHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSheetHandler(storage storage.Storage, logger *slog.Logger) *SheetHandler {
	return &SheetHandler{storage: storage, logger: logger}
}

// List handles GET /v1/sheets
func (h *SheetHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.storage.ListSheets(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, SheetListResponse{Sheets: list})
}

// Create handles POST /v1/sheets
func (h *SheetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSheetRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	if req.Template == "" {
		writeError(w, h.logger, http.StatusBadRequest, "template is required")
		return
	}

	tmpl, err := h.storage.GetTemplate(r.Context(), req.Template)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	s, err := actor.FromTemplate(tmpl, req.Name)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	if err := h.storage.SaveSheet(r.Context(), s); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Sheet created", "sheet_id", s.ID, "template", req.Template, "type", s.Type)
	writeJSON(w, h.logger, http.StatusCreated, s)
}

// Get handles GET /v1/sheets/{id}
func (h *SheetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	s, err := h.storage.GetSheet(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

// Replace handles PUT /v1/sheets/{id}. The stored id and creation time are
// kept; derived values are recomputed.
func (h *SheetHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	existing, err := h.storage.GetSheet(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	var s actor.Sheet
	if err := decodeBody(w, r, &s); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	s.ID = id
	s.CreatedAt = existing.CreatedAt
	s.Health.Normalize()
	s.Willpower.Normalize()
	if err := s.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.storage.SaveSheet(r.Context(), &s); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, &s)
}

// Delete handles DELETE /v1/sheets/{id}
func (h *SheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.storage.DeleteSheet(r.Context(), id); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	h.logger.Info("Sheet deleted", "sheet_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Log handles GET /v1/sheets/{id}/log?limit=N
func (h *SheetHandler) Log(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, h.logger, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}
	log, err := h.storage.ListLog(r.Context(), id, limit)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, log)
}
