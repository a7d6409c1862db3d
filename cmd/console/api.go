package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/internal/handlers"
	"github.com/jwebster45206/wod-sheets/internal/worker"
	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/chat"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
)

// APIClient talks to the sheets API.
type APIClient struct {
	http    *http.Client
	baseURL string
}

func NewAPIClient(client *http.Client, baseURL string) *APIClient {
	return &APIClient{http: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *APIClient) Healthy() bool {
	resp, err := c.http.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// do sends body as JSON and decodes the response into out when the status
// matches want.
func (c *APIClient) do(method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *APIClient) ListTemplates() ([]string, error) {
	var resp handlers.TemplateListResponse
	err := c.do(http.MethodGet, "/v1/templates", nil, http.StatusOK, &resp)
	return resp.Templates, err
}

func (c *APIClient) ListSheets() ([]actor.Summary, error) {
	var resp handlers.SheetListResponse
	err := c.do(http.MethodGet, "/v1/sheets", nil, http.StatusOK, &resp)
	return resp.Sheets, err
}

func (c *APIClient) CreateSheet(template, name string) (*actor.Sheet, error) {
	var s actor.Sheet
	err := c.do(http.MethodPost, "/v1/sheets", handlers.CreateSheetRequest{Template: template, Name: name}, http.StatusCreated, &s)
	return &s, err
}

func (c *APIClient) OpenSession(sheetID uuid.UUID) (*sheet.Session, error) {
	var sess sheet.Session
	err := c.do(http.MethodPost, "/v1/sessions", handlers.OpenSessionRequest{SheetID: sheetID, Editable: true}, http.StatusCreated, &sess)
	return &sess, err
}

func (c *APIClient) View(sessionID uuid.UUID) (*sheet.View, error) {
	var v sheet.View
	err := c.do(http.MethodGet, "/v1/sessions/"+sessionID.String(), nil, http.StatusOK, &v)
	return &v, err
}

func (c *APIClient) ToggleLock(sessionID uuid.UUID) (bool, error) {
	var resp handlers.LockResponse
	err := c.do(http.MethodPost, "/v1/sessions/"+sessionID.String()+"/lock", nil, http.StatusOK, &resp)
	return resp.Locked, err
}

func (c *APIClient) Step(sessionID uuid.UUID, track string, index int) (*handlers.StepResponse, error) {
	var resp handlers.StepResponse
	path := fmt.Sprintf("/v1/sessions/%s/tracks/%s/step", sessionID, track)
	err := c.do(http.MethodPost, path, handlers.StepRequest{Index: index}, http.StatusOK, &resp)
	return &resp, err
}

func (c *APIClient) Roll(sessionID uuid.UUID, req sheet.RollRequest) (*worker.RollResult, error) {
	var res worker.RollResult
	err := c.do(http.MethodPost, "/v1/sessions/"+sessionID.String()+"/rolls", req, http.StatusOK, &res)
	return &res, err
}

func (c *APIClient) Log(sheetID uuid.UUID, limit int) ([]chat.Message, error) {
	var log []chat.Message
	err := c.do(http.MethodGet, fmt.Sprintf("/v1/sheets/%s/log?limit=%d", sheetID, limit), nil, http.StatusOK, &log)
	return log, err
}

// SSEEvent is one event from the sheet event stream.
type SSEEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// listenToSSE streams a sheet's events into eventChan until ctx ends or the
// connection drops.
func (c *APIClient) listenToSSE(ctx context.Context, sheetID uuid.UUID, eventChan chan<- SSEEvent) error {
	url := fmt.Sprintf("%s/v1/events/sheets/%s", c.baseURL, sheetID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// The shared client has a timeout; the stream must not.
	stream := &http.Client{Transport: c.http.Transport}
	resp, err := stream.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to SSE: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SSE connection failed with status %d: %s", resp.StatusCode, string(body))
	}
	return readSSE(ctx, resp.Body, eventChan)
}

func readSSE(ctx context.Context, r io.Reader, eventChan chan<- SSEEvent) error {
	scanner := bufio.NewScanner(r)
	var current SSEEvent

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			// Empty line signals end of event
			if current.Type != "" {
				select {
				case eventChan <- current:
				case <-ctx.Done():
					return ctx.Err()
				}
				current = SSEEvent{}
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			current.Type = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			current.Data = json.RawMessage(strings.TrimPrefix(line, "data: "))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading SSE stream: %w", err)
	}
	return nil
}
