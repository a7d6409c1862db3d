package sheet

import "errors"

var (
	// ErrLocked is returned for edits that require an unlocked session.
	ErrLocked = errors.New("sheet is locked")
	// ErrActionNotAllowed is returned when the game line or session does not
	// offer the requested action.
	ErrActionNotAllowed = errors.New("action not allowed")
	ErrUnknownTrack     = errors.New("unknown track")
	ErrUnknownField     = errors.New("unknown field")
	ErrUnknownItem      = errors.New("unknown item")
	ErrInvalidRoll      = errors.New("invalid roll request")
)
