package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jwebster45206/wod-sheets/internal/worker"
	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
)

type OpenSessionRequest struct {
	SheetID  uuid.UUID `json:"sheet_id"`
	Editable bool      `json:"editable"`
}

type LockResponse struct {
	Locked bool `json:"locked"`
}

type StepRequest struct {
	Index int `json:"index"`
}

// StepResponse reports whether the click landed and how the track looks now.
type StepResponse struct {
	Applied bool            `json:"applied"`
	Track   sheet.TrackView `json:"track"`
	Sheet   *actor.Sheet    `json:"sheet"`
}

type MaxRequest struct {
	Delta int `json:"delta"`
}

type DotsRequest struct {
	Index int  `json:"index"`
	Empty bool `json:"empty"`
}

type CreateItemRequest struct {
	Type actor.ItemType `json:"type"`
	Item actor.Item     `json:"item"`
}

// SessionHandler serves the interactive sheet actions of a session.
type SessionHandler struct {
	processor *worker.SheetProcessor
	logger    *slog.Logger
}

func NewSessionHandler(processor *worker.SheetProcessor, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{processor: processor, logger: logger}
}

// Open handles POST /v1/sessions
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	if req.SheetID == uuid.Nil {
		writeError(w, h.logger, http.StatusBadRequest, "sheet_id is required")
		return
	}
	sess, err := h.processor.OpenSession(r.Context(), req.SheetID, req.Editable)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, sess)
}

// View handles GET /v1/sessions/{sid}
func (h *SessionHandler) View(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.processor.View(r.Context(), sid)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

// ToggleLock handles POST /v1/sessions/{sid}/lock
func (h *SessionHandler) ToggleLock(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	locked, err := h.processor.ToggleLock(r.Context(), sid)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, LockResponse{Locked: locked})
}

// Step handles POST /v1/sessions/{sid}/tracks/{track}/step
func (h *SessionHandler) Step(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req StepRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	name := mux.Vars(r)["track"]
	s, applied, err := h.processor.StepTrack(r.Context(), sid, name, req.Index)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	ts, _ := sheet.LookupTrack(name)
	writeJSON(w, h.logger, http.StatusOK, StepResponse{
		Applied: applied,
		Track:   sheet.TrackView{Binding: ts.Binding.String(), Boxes: ts.Decode(s)},
		Sheet:   s,
	})
}

// ChangeMax handles POST /v1/sessions/{sid}/tracks/{track}/max
func (h *SessionHandler) ChangeMax(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req MaxRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	s, err := h.processor.ChangeMax(r.Context(), sid, mux.Vars(r)["track"], req.Delta)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

// SetDots handles POST /v1/sessions/{sid}/dots/{field}
func (h *SessionHandler) SetDots(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req DotsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	s, err := h.processor.SetDots(r.Context(), sid, mux.Vars(r)["field"], req.Index, req.Empty)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

// CreateItem handles POST /v1/sessions/{sid}/items
func (h *SessionHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req CreateItemRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.processor.CreateItem(r.Context(), sid, req.Type, req.Item)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, item)
}

// DeleteItem handles DELETE /v1/sessions/{sid}/items/{item}
func (h *SessionHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.processor.DeleteItem(r.Context(), sid, mux.Vars(r)["item"]); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sid, err := pathID(r, "sid")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return uuid.Nil, false
	}
	return sid, true
}
