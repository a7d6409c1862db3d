package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
)

// RequestType identifies the type of request in the queue
type RequestType string

const (
	// RequestTypeRoll is a dice roll requested from a sheet session
	RequestTypeRoll RequestType = "roll"
)

// Request represents a queued request against a sheet
type Request struct {
	RequestID string      `json:"request_id"`
	Type      RequestType `json:"type"`
	SheetID   uuid.UUID   `json:"sheet_id"`
	SessionID uuid.UUID   `json:"session_id"`

	Roll sheet.RollRequest `json:"roll"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewRollRequest wraps a roll for the queue
func NewRollRequest(sheetID, sessionID uuid.UUID, roll sheet.RollRequest) *Request {
	roll.Async = false
	return &Request{
		RequestID:  uuid.New().String(),
		Type:       RequestTypeRoll,
		SheetID:    sheetID,
		SessionID:  sessionID,
		Roll:       roll,
		EnqueuedAt: time.Now(),
	}
}

// MarshalJSON serializes the request to JSON for Redis storage
func (r *Request) MarshalJSON() ([]byte, error) {
	type Alias Request
	return json.Marshal(&struct {
		SheetID   string `json:"sheet_id"`
		SessionID string `json:"session_id"`
		*Alias
	}{
		SheetID:   r.SheetID.String(),
		SessionID: r.SessionID.String(),
		Alias:     (*Alias)(r),
	})
}

// UnmarshalJSON deserializes the request from JSON in Redis
func (r *Request) UnmarshalJSON(data []byte) error {
	type Alias Request
	aux := &struct {
		SheetID   string `json:"sheet_id"`
		SessionID string `json:"session_id"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	sheetID, err := uuid.Parse(aux.SheetID)
	if err != nil {
		return err
	}
	sessionID, err := uuid.Parse(aux.SessionID)
	if err != nil {
		return err
	}

	r.SheetID = sheetID
	r.SessionID = sessionID
	return nil
}

// ToJSON converts the request to JSON bytes for Redis
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
