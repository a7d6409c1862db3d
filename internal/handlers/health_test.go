package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jwebster45206/wod-sheets/pkg/storage"
)

type stubQueue struct {
	depth int
	err   error
}

func (q stubQueue) RequestQueueDepth(ctx context.Context) (int, error) {
	return q.depth, q.err
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))

	tests := []struct {
		name            string
		setupStorage    func() storage.Storage
		queue           QueueDepther
		expectedStatus  int
		expectedHealth  string
		expectedStorage string
		expectedQueue   string
	}{
		{
			name:            "all healthy",
			setupStorage:    func() storage.Storage { return storage.NewMockStorage() },
			queue:           stubQueue{depth: 3},
			expectedStatus:  http.StatusOK,
			expectedHealth:  "healthy",
			expectedStorage: "healthy",
			expectedQueue:   "healthy",
		},
		{
			name: "unhealthy storage",
			setupStorage: func() storage.Storage {
				m := storage.NewMockStorage()
				m.SetPingError(errors.New("connection failed"))
				return m
			},
			queue:           stubQueue{},
			expectedStatus:  http.StatusServiceUnavailable,
			expectedHealth:  "degraded",
			expectedStorage: "unhealthy",
			expectedQueue:   "healthy",
		},
		{
			name:            "unhealthy queue",
			setupStorage:    func() storage.Storage { return storage.NewMockStorage() },
			queue:           stubQueue{err: errors.New("queue down")},
			expectedStatus:  http.StatusServiceUnavailable,
			expectedHealth:  "degraded",
			expectedStorage: "healthy",
			expectedQueue:   "unhealthy",
		},
		{
			name:            "no queue configured",
			setupStorage:    func() storage.Storage { return storage.NewMockStorage() },
			expectedStatus:  http.StatusOK,
			expectedHealth:  "healthy",
			expectedStorage: "healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.setupStorage(), tt.queue, logger)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if rr.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
			}

			var response HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if response.Status != tt.expectedHealth {
				t.Errorf("Expected status '%s', got '%s'", tt.expectedHealth, response.Status)
			}
			if response.Service != "wod-sheets" {
				t.Errorf("Expected service 'wod-sheets', got '%s'", response.Service)
			}
			if got := response.Components["storage"]; got != tt.expectedStorage {
				t.Errorf("Expected storage status '%s', got '%v'", tt.expectedStorage, got)
			}

			queueComponent, exists := response.Components["queue"]
			if tt.expectedQueue == "" {
				if exists {
					t.Error("Expected no queue component without a queue")
				}
			} else {
				queueMap, ok := queueComponent.(map[string]any)
				if !ok {
					t.Fatalf("Expected queue component to be a map, got %T", queueComponent)
				}
				if queueMap["status"] != tt.expectedQueue {
					t.Errorf("Expected queue status '%s', got '%v'", tt.expectedQueue, queueMap["status"])
				}
				if tt.expectedQueue == "healthy" {
					if _, ok := queueMap["depth"]; !ok {
						t.Error("Expected depth in healthy queue component")
					}
				}
			}

			if timeDiff := time.Since(response.Timestamp); timeDiff > time.Second {
				t.Errorf("Health check timestamp seems old: %v", timeDiff)
			}
		})
	}
}
