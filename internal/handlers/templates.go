package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jwebster45206/wod-sheets/pkg/storage"
)

type TemplateListResponse struct {
	Templates []string `json:"templates"`
}

type TemplateHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewTemplateHandler(storage storage.Storage, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{storage: storage, logger: logger}
}

// List handles GET /v1/templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.storage.ListTemplates(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, TemplateListResponse{Templates: names})
}

// Get handles GET /v1/templates/{name}
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.storage.GetTemplate(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, tmpl)
}
