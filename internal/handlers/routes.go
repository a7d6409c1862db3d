package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jwebster45206/wod-sheets/internal/services/events"
	queuesvc "github.com/jwebster45206/wod-sheets/internal/services/queue"
	"github.com/jwebster45206/wod-sheets/internal/worker"
	"github.com/jwebster45206/wod-sheets/pkg/storage"
)

// Deps are the services the router wires into handlers. Queue and
// Broadcaster are optional.
type Deps struct {
	Storage     storage.Storage
	Processor   *worker.SheetProcessor
	Queue       *queuesvc.RollQueue
	Broadcaster *events.Broadcaster
	Logger      *slog.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()

	var depth QueueDepther
	var enqueuer RollEnqueuer
	if d.Queue != nil {
		depth, enqueuer = d.Queue, d.Queue
	}

	r.Handle("/health", NewHealthHandler(d.Storage, depth, d.Logger)).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()

	templates := NewTemplateHandler(d.Storage, d.Logger)
	v1.HandleFunc("/templates", templates.List).Methods(http.MethodGet)
	v1.HandleFunc("/templates/{name}", templates.Get).Methods(http.MethodGet)

	sheets := NewSheetHandler(d.Storage, d.Logger)
	v1.HandleFunc("/sheets", sheets.List).Methods(http.MethodGet)
	v1.HandleFunc("/sheets", sheets.Create).Methods(http.MethodPost)
	v1.HandleFunc("/sheets/{id}", sheets.Get).Methods(http.MethodGet)
	v1.HandleFunc("/sheets/{id}", sheets.Replace).Methods(http.MethodPut)
	v1.HandleFunc("/sheets/{id}", sheets.Delete).Methods(http.MethodDelete)
	v1.HandleFunc("/sheets/{id}/log", sheets.Log).Methods(http.MethodGet)

	sessions := NewSessionHandler(d.Processor, d.Logger)
	v1.HandleFunc("/sessions", sessions.Open).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{sid}", sessions.View).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{sid}/lock", sessions.ToggleLock).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{sid}/tracks/{track}/step", sessions.Step).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{sid}/tracks/{track}/max", sessions.ChangeMax).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{sid}/dots/{field}", sessions.SetDots).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{sid}/items", sessions.CreateItem).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{sid}/items/{item}", sessions.DeleteItem).Methods(http.MethodDelete)
	v1.Handle("/sessions/{sid}/rolls", NewRollHandler(d.Processor, enqueuer, d.Broadcaster, d.Logger)).Methods(http.MethodPost)

	if d.Broadcaster != nil {
		v1.Handle("/events/sheets/{id}", NewEventsHandler(d.Broadcaster, d.Logger)).Methods(http.MethodGet)
		v1.Handle("/ws/sheets/{id}", NewSocketHandler(d.Broadcaster, d.Logger)).Methods(http.MethodGet)
	}

	return r
}
