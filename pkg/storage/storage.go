package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/chat"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
)

// ErrNotFound is returned when a sheet, session or template does not exist.
var ErrNotFound = errors.New("not found")

// MaxLogEntries caps the roll log kept per sheet.
const MaxLogEntries = 200

// Storage defines a unified interface for all storage operations
// This interface combines sheet persistence (Redis) with template loading (filesystem)
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Sheet operations (Redis-backed)
	SaveSheet(ctx context.Context, s *actor.Sheet) error
	GetSheet(ctx context.Context, id uuid.UUID) (*actor.Sheet, error)
	// UpdateSheet applies deep-keyed field updates and returns the new sheet
	UpdateSheet(ctx context.Context, id uuid.UUID, updates ...actor.FieldUpdate) (*actor.Sheet, error)
	DeleteSheet(ctx context.Context, id uuid.UUID) error
	ListSheets(ctx context.Context) ([]actor.Summary, error)

	// Session operations (Redis-backed, expiring)
	SaveSession(ctx context.Context, sess *sheet.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*sheet.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// Roll log operations, newest first
	AppendLog(ctx context.Context, sheetID uuid.UUID, msg chat.Message) error
	ListLog(ctx context.Context, sheetID uuid.UUID, limit int) ([]chat.Message, error)

	// Template operations (filesystem-backed)
	ListTemplates(ctx context.Context) ([]string, error)
	GetTemplate(ctx context.Context, name string) (*actor.Sheet, error)
}
