package main

import (
	"context"
	"io"
	"log/slog"
)

// shutdowner abstracts the authenticator so tests can verify cleanup behavior
// without constructing real infrastructure dependencies.
type shutdowner interface {
	Shutdown(context.Context) error
}

// newCleanup constructs the shutdown hook: drain pending last_seen_at updates,
// then close each resource in order. The database goes last because the
// drain still writes to it.
func newCleanup(ctx context.Context, authenticator shutdowner, closers ...io.Closer) func() {
	return func() {
		if authenticator != nil {
			if err := authenticator.Shutdown(ctx); err != nil {
				slog.ErrorContext(ctx, "failed to shut down authenticator", "error", err)
			}
		}

		for _, c := range closers {
			if c == nil {
				continue
			}
			if err := c.Close(); err != nil {
				slog.ErrorContext(ctx, "failed to close resource", "error", err)
			}
		}
	}
}
