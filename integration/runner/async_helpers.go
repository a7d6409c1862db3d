package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// PollInterval is how often to check the roll log for updates
	PollInterval = 250 * time.Millisecond
	// RollTimeout is max time to wait for a queued roll to be resolved
	RollTimeout = 30 * time.Second
)

// WaitForLogEntries polls the sheet's roll log until it holds want entries,
// which is how a queued roll shows it was processed by a worker.
func WaitForLogEntries(ctx context.Context, r *Runner, sheetID uuid.UUID, want int) error {
	timeout := time.After(RollTimeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	last := -1
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %d log entries (have %d): %w", want, last, ctx.Err())
		case <-timeout:
			return fmt.Errorf("timeout waiting for %d log entries (have %d, waited %v)", want, last, RollTimeout)
		case <-ticker.C:
			n, err := r.logLength(ctx, sheetID)
			if err != nil {
				// Log error but continue polling
				r.Logger("      poll failed: %v", err)
				continue
			}
			last = n
			if n >= want {
				return nil
			}
		}
	}
}
