package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// retryPolicy controls how long startup waits for a store to answer pings.
type retryPolicy struct {
	attempts    int
	backoff     time.Duration
	maxBackoff  time.Duration
	pingTimeout time.Duration
}

// startupRetry covers a database container that is still booting when the
// server starts.
var startupRetry = retryPolicy{
	attempts:    10,
	backoff:     time.Second,
	maxBackoff:  30 * time.Second,
	pingTimeout: 5 * time.Second,
}

// waitReady calls ping until it succeeds, the attempts run out, or ctx is
// done. Backoff doubles between attempts up to maxBackoff.
func waitReady(ctx context.Context, store string, ping func(context.Context) error, p retryPolicy) error {
	backoff := p.backoff
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, p.pingTimeout)
		err := ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt >= p.attempts {
			return fmt.Errorf("%s not ready after %d attempts: %w", store, attempt, err)
		}

		slog.Warn("store not ready, retrying",
			slog.String("store", store),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", p.attempts),
			slog.Duration("backoff", backoff),
			slog.Any("error", err),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("waiting for %s: %w", store, errors.Join(ctx.Err(), err))
		case <-timer.C:
		}
		backoff = min(backoff*2, p.maxBackoff)
	}
}
