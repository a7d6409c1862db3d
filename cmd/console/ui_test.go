package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/internal/services/events"
	"github.com/jwebster45206/wod-sheets/pkg/chat"
	"github.com/jwebster45206/wod-sheets/pkg/track"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBoxes(t *testing.T) {
	got := renderBoxes([]track.State{track.Crossed, track.Half, track.Empty, track.Full})
	assert.Equal(t, "☒◩☐■", got)
}

func TestReadSSE(t *testing.T) {
	stream := strings.Join([]string{
		"event: connected",
		`data: {"sheet_id":"x"}`,
		"",
		": keepalive",
		"",
		"event: sheet.updated",
		`data: {"type":"sheet.updated"}`,
		"",
	}, "\n")

	ch := make(chan SSEEvent, 4)
	require.NoError(t, readSSE(context.Background(), strings.NewReader(stream), ch))
	close(ch)

	var got []string
	for e := range ch {
		got = append(got, e.Type)
	}
	assert.Equal(t, []string{"connected", "sheet.updated"}, got)
}

func TestHandleEvent_DedupesRolls(t *testing.T) {
	m := ConsoleUI{}
	msg := chat.NewMessage(uuid.New(), "Lucia", "Wits", nil)
	m.addLog(msg)

	data, err := json.Marshal(events.Event{
		Type: events.EventTypeRollCompleted,
		Data: map[string]any{"message": msg},
	})
	require.NoError(t, err)

	m.handleEvent(SSEEvent{Type: string(events.EventTypeRollCompleted), Data: data})
	assert.Len(t, m.log, 1)

	other := chat.NewMessage(msg.SheetID, "Lucia", "Resolve", nil)
	data, err = json.Marshal(events.Event{
		Type: events.EventTypeRollCompleted,
		Data: map[string]any{"message": other},
	})
	require.NoError(t, err)
	m.handleEvent(SSEEvent{Type: string(events.EventTypeRollCompleted), Data: data})
	assert.Len(t, m.log, 2)
}

func TestRenderLog(t *testing.T) {
	msg := chat.NewMessage(uuid.New(), "Lucia", "Wits + Occult", nil)
	out := renderLog([]chat.Message{msg}, 40, "Sheet locked.", nil)
	assert.Contains(t, out, "WITS + OCCULT")
	assert.Contains(t, out, "Sheet locked.")
}
