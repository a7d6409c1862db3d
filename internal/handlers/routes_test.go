package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jwebster45206/wod-sheets/internal/services/events"
	queuesvc "github.com/jwebster45206/wod-sheets/internal/services/queue"
	"github.com/jwebster45206/wod-sheets/internal/worker"
	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/chat"
	"github.com/jwebster45206/wod-sheets/pkg/dice"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
	"github.com/jwebster45206/wod-sheets/pkg/storage"
	"github.com/jwebster45206/wod-sheets/pkg/track"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sixes struct{}

func (sixes) Intn(n int) int { return 5 }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testAPI struct {
	router *mux.Router
	store  *storage.MockStorage
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := storage.NewMockStorage()
	ctrl := sheet.NewController(dice.NewRollerFromSource(sixes{}), sheet.Options{AutomatedWillpower: true, RageThresholds: []int{2}})
	proc := worker.NewSheetProcessor(store, ctrl, nil, testLogger())
	return &testAPI{
		router: NewRouter(Deps{Storage: store, Processor: proc, Logger: testLogger()}),
		store:  store,
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

func vampireTemplate() *actor.Sheet {
	return &actor.Sheet{
		Name: "Vampire",
		Type: actor.LineVampire,
		Abilities: map[string]actor.Trait{
			"wits": {Name: "WOD5E.Wits", Value: 3},
		},
		Skills: map[string]actor.Trait{
			"occult": {Name: "WOD5E.Occult", Value: 2},
		},
		Health:    actor.Damage{Max: 5},
		Willpower: actor.Damage{Max: 4},
		Humanity:  actor.Humanity{Value: 7},
		Hunger:    actor.Level{Value: 1},
	}
}

// openSheet creates a sheet from the vampire template and opens a session.
func (a *testAPI) openSheet(t *testing.T, editable bool) (*actor.Sheet, *sheet.Session) {
	t.Helper()
	a.store.AddTemplate("vampire", vampireTemplate())

	rr := a.do(t, http.MethodPost, "/v1/sheets", CreateSheetRequest{Template: "vampire", Name: "Lucia"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	s := decode[actor.Sheet](t, rr)

	rr = a.do(t, http.MethodPost, "/v1/sessions", OpenSessionRequest{SheetID: s.ID, Editable: editable})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	sess := decode[sheet.Session](t, rr)
	return &s, &sess
}

func TestTemplates(t *testing.T) {
	a := newTestAPI(t)
	a.store.AddTemplate("vampire", vampireTemplate())

	rr := a.do(t, http.MethodGet, "/v1/templates", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"vampire"}, decode[TemplateListResponse](t, rr).Templates)

	rr = a.do(t, http.MethodGet, "/v1/templates/vampire", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, actor.LineVampire, decode[actor.Sheet](t, rr).Type)

	rr = a.do(t, http.MethodGet, "/v1/templates/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSheets_CRUD(t *testing.T) {
	a := newTestAPI(t)
	s, _ := a.openSheet(t, true)
	assert.Equal(t, "Lucia", s.Name)
	assert.NotEqual(t, uuid.Nil, s.ID)

	rr := a.do(t, http.MethodGet, "/v1/sheets", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[SheetListResponse](t, rr).Sheets
	require.Len(t, list, 1)
	assert.Equal(t, "Lucia", list[0].Name)

	s.Name = "Lucia Renamed"
	s.Skills["occult"] = actor.Trait{Name: "WOD5E.Occult", Value: 4}
	rr = a.do(t, http.MethodPut, "/v1/sheets/"+s.ID.String(), s)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = a.do(t, http.MethodGet, "/v1/sheets/"+s.ID.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[actor.Sheet](t, rr)
	assert.Equal(t, "Lucia Renamed", got.Name)
	assert.Equal(t, 4, got.Skills["occult"].Value)

	rr = a.do(t, http.MethodDelete, "/v1/sheets/"+s.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = a.do(t, http.MethodGet, "/v1/sheets/"+s.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSheets_BadRequests(t *testing.T) {
	a := newTestAPI(t)
	s, _ := a.openSheet(t, true)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing template", http.MethodPost, "/v1/sheets", CreateSheetRequest{Name: "x"}, http.StatusBadRequest},
		{"unknown template", http.MethodPost, "/v1/sheets", CreateSheetRequest{Template: "nope"}, http.StatusNotFound},
		{"bad id", http.MethodGet, "/v1/sheets/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown sheet", http.MethodGet, "/v1/sheets/" + uuid.NewString(), nil, http.StatusNotFound},
		{"replace unknown sheet", http.MethodPut, "/v1/sheets/" + uuid.NewString(), s, http.StatusNotFound},
		{"bad log limit", http.MethodGet, "/v1/sheets/" + s.ID.String() + "/log?limit=-1", nil, http.StatusBadRequest},
		{"wrong method", http.MethodPatch, "/v1/sheets/" + s.ID.String(), nil, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := a.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}

	invalid := *s
	invalid.Skills = map[string]actor.Trait{"occult": {Value: 9}}
	rr := a.do(t, http.MethodPut, "/v1/sheets/"+s.ID.String(), &invalid)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessions_StepTrack(t *testing.T) {
	a := newTestAPI(t)
	s, sess := a.openSheet(t, false)

	rr := a.do(t, http.MethodPost, fmt.Sprintf("/v1/sessions/%s/tracks/health/step", sess.ID), StepRequest{Index: 0})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode[StepResponse](t, rr)
	assert.True(t, resp.Applied)
	assert.Equal(t, track.Half, resp.Track.Boxes[0])
	assert.Equal(t, 1, resp.Sheet.Health.Superficial)

	rr = a.do(t, http.MethodPost, fmt.Sprintf("/v1/sessions/%s/tracks/health/step", sess.ID), StepRequest{Index: 99})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[StepResponse](t, rr).Applied)

	rr = a.do(t, http.MethodPost, fmt.Sprintf("/v1/sessions/%s/tracks/danger/step", sess.ID), StepRequest{Index: 0})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	stored, err := a.store.GetSheet(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Health.Superficial)
}

func TestSessions_LockAndDots(t *testing.T) {
	a := newTestAPI(t)
	s, sess := a.openSheet(t, true)
	base := "/v1/sessions/" + sess.ID.String()

	rr := a.do(t, http.MethodPost, base+"/dots/skills.occult", DotsRequest{Index: 3})
	assert.Equal(t, http.StatusLocked, rr.Code)

	rr = a.do(t, http.MethodPost, base+"/dots/hunger", DotsRequest{Index: 2})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 3, decode[actor.Sheet](t, rr).Hunger.Value)

	rr = a.do(t, http.MethodPost, base+"/lock", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[LockResponse](t, rr).Locked)

	rr = a.do(t, http.MethodPost, base+"/dots/skills.occult", DotsRequest{Index: 3})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 4, decode[actor.Sheet](t, rr).Skills["occult"].Value)

	rr = a.do(t, http.MethodPost, base+"/dots/skills.occult", DotsRequest{Empty: true})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[actor.Sheet](t, rr).Skills["occult"].Value)

	rr = a.do(t, http.MethodPost, base+"/dots/skills.bogus", DotsRequest{Index: 1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = a.do(t, http.MethodPost, base+"/tracks/health/max", MaxRequest{Delta: 2})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 7, decode[actor.Sheet](t, rr).Health.Max)

	rr = a.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[sheet.View](t, rr)
	assert.Equal(t, s.ID, view.Sheet.ID)
	assert.Len(t, view.Tracks[sheet.TrackHealth].Boxes, 7)
}

func TestSessions_Items(t *testing.T) {
	a := newTestAPI(t)
	_, sess := a.openSheet(t, true)
	base := "/v1/sessions/" + sess.ID.String()

	rr := a.do(t, http.MethodPost, base+"/items", CreateItemRequest{Type: actor.ItemSpecialty, Item: actor.Item{Name: "Rituals"}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	item := decode[actor.Item](t, rr)
	require.NotEmpty(t, item.ID)

	rr = a.do(t, http.MethodDelete, base+"/items/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = a.do(t, http.MethodDelete, base+"/items/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessions_UnknownSession(t *testing.T) {
	a := newTestAPI(t)
	rr := a.do(t, http.MethodGet, "/v1/sessions/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = a.do(t, http.MethodPost, "/v1/sessions", OpenSessionRequest{SheetID: uuid.New()})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = a.do(t, http.MethodPost, "/v1/sessions", OpenSessionRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRolls_Sync(t *testing.T) {
	a := newTestAPI(t)
	s, sess := a.openSheet(t, true)

	rr := a.do(t, http.MethodPost, "/v1/sessions/"+sess.ID.String()+"/rolls",
		sheet.RollRequest{Ability: "wits", Skill: "occult", Difficulty: 3})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[worker.RollResult](t, rr)
	assert.Equal(t, 5, res.Outcome.Pool.Ordinary+res.Outcome.Pool.Modifier)
	assert.Equal(t, 5, res.Outcome.Result.TotalSuccesses)
	assert.NotEmpty(t, res.RequestID)

	rr = a.do(t, http.MethodGet, "/v1/sheets/"+s.ID.String()+"/log?limit=10", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]chat.Message](t, rr), 1)
}

func TestRolls_ReadOnlySessionRejected(t *testing.T) {
	a := newTestAPI(t)
	_, sess := a.openSheet(t, false)

	rr := a.do(t, http.MethodPost, "/v1/sessions/"+sess.ID.String()+"/rolls", sheet.RollRequest{Dice: 2})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRolls_AsyncFallsBackWithoutQueue(t *testing.T) {
	a := newTestAPI(t)
	_, sess := a.openSheet(t, true)

	rr := a.do(t, http.MethodPost, "/v1/sessions/"+sess.ID.String()+"/rolls", sheet.RollRequest{Dice: 2, Async: true})
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestRolls_AsyncQueued(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := queuesvc.NewClient("redis://"+mr.Addr(), testLogger())
	require.NoError(t, err)
	defer client.Close()
	q := queuesvc.NewRollQueue(client)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	broadcaster := events.NewBroadcaster(rdb, testLogger())

	store := storage.NewMockStorage()
	ctrl := sheet.NewController(dice.NewRollerFromSource(sixes{}), sheet.Options{})
	proc := worker.NewSheetProcessor(store, ctrl, broadcaster, testLogger())
	a := &testAPI{
		router: NewRouter(Deps{Storage: store, Processor: proc, Queue: q, Broadcaster: broadcaster, Logger: testLogger()}),
		store:  store,
	}
	s, sess := a.openSheet(t, true)

	rr := a.do(t, http.MethodPost, "/v1/sessions/"+sess.ID.String()+"/rolls", sheet.RollRequest{Dice: 2, Async: true})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	queued := decode[QueuedRollResponse](t, rr)
	assert.Equal(t, "queued", queued.Status)

	ctx := context.Background()
	depth, err := q.RequestQueueDepth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)

	req, err := q.DequeueRequest(ctx)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, queued.RequestID, req.RequestID)
	assert.Equal(t, s.ID, req.SheetID)
	assert.False(t, req.Roll.Async)

	rr = a.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{worker.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", sheet.ErrLocked), http.StatusLocked},
		{sheet.ErrActionNotAllowed, http.StatusForbidden},
		{dice.ErrInvalidArgument, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
