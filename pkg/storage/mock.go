package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/chat"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	sheets    map[uuid.UUID][]byte
	sessions  map[uuid.UUID]*sheet.Session
	logs      map[uuid.UUID][]chat.Message
	templates map[string]*actor.Sheet
	pingError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sheets:    make(map[uuid.UUID][]byte),
		sessions:  make(map[uuid.UUID]*sheet.Session),
		logs:      make(map[uuid.UUID][]chat.Message),
		templates: make(map[string]*actor.Sheet),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// AddTemplate registers a template for testing
func (m *MockStorage) AddTemplate(name string, tmpl *actor.Sheet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[name] = tmpl
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSheet(ctx context.Context, s *actor.Sheet) error {
	if s == nil {
		return errors.New("sheet cannot be nil")
	}
	s.UpdatedAt = time.Now()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal sheet: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[s.ID] = data
	return nil
}

func (m *MockStorage) GetSheet(ctx context.Context, id uuid.UUID) (*actor.Sheet, error) {
	m.mu.RLock()
	data, ok := m.sheets[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var s actor.Sheet
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sheet: %w", err)
	}
	return &s, nil
}

func (m *MockStorage) UpdateSheet(ctx context.Context, id uuid.UUID, updates ...actor.FieldUpdate) (*actor.Sheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.sheets[id]
	if !ok {
		return nil, ErrNotFound
	}
	updates = append(slices.Clone(updates), actor.FieldUpdate{Path: "updated_at", Value: time.Now()})
	next, err := actor.ApplyUpdates(data, updates...)
	if err != nil {
		return nil, err
	}
	var s actor.Sheet
	if err := json.Unmarshal(next, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sheet: %w", err)
	}
	m.sheets[id] = next
	return &s, nil
}

func (m *MockStorage) DeleteSheet(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sheets, id)
	delete(m.logs, id)
	return nil
}

func (m *MockStorage) ListSheets(ctx context.Context) ([]actor.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]actor.Summary, 0, len(m.sheets))
	for _, data := range m.sheets {
		out = append(out, actor.Summarize(data))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockStorage) SaveSession(ctx context.Context, sess *sheet.Session) error {
	if sess == nil {
		return errors.New("session cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sess
	m.sessions[sess.ID] = &cp
	return nil
}

func (m *MockStorage) GetSession(ctx context.Context, id uuid.UUID) (*sheet.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MockStorage) AppendLog(ctx context.Context, sheetID uuid.UUID, msg chat.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	log := append([]chat.Message{msg}, m.logs[sheetID]...)
	if len(log) > MaxLogEntries {
		log = log[:MaxLogEntries]
	}
	m.logs[sheetID] = log
	return nil
}

func (m *MockStorage) ListLog(ctx context.Context, sheetID uuid.UUID, limit int) ([]chat.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	log := m.logs[sheetID]
	if limit > 0 && limit < len(log) {
		log = log[:limit]
	}
	return slices.Clone(log), nil
}

func (m *MockStorage) ListTemplates(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.templates))
	for name := range m.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockStorage) GetTemplate(ctx context.Context, name string) (*actor.Sheet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tmpl, ok := m.templates[name]
	if !ok {
		return nil, ErrNotFound
	}
	return tmpl.Clone(), nil
}
