package sheet

import (
	"time"

	"github.com/google/uuid"
)

// Session is one open view of a sheet. It carries the lock toggle and
// whether the viewer may edit at all.
type Session struct {
	ID        uuid.UUID `json:"id"`
	SheetID   uuid.UUID `json:"sheet_id"`
	Locked    bool      `json:"locked"`
	Editable  bool      `json:"editable"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession opens a locked session.
func NewSession(sheetID uuid.UUID, editable bool) *Session {
	return &Session{
		ID:        uuid.New(),
		SheetID:   sheetID,
		Locked:    true,
		Editable:  editable,
		CreatedAt: time.Now(),
	}
}

// ToggleLock flips the lock and returns the new state.
func (s *Session) ToggleLock() bool {
	s.Locked = !s.Locked
	return s.Locked
}
