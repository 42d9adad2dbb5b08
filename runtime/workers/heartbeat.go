package workers

import (
	"context"
	"log/slog"
	"time"
)

// StaleSweeper is implemented by the transport server.
type StaleSweeper interface {
	SweepStale(maxIdle time.Duration) int
}

// HeartbeatWorker reaps sessions whose peer stopped answering pings. The
// write pump already pings; this worker is the backstop that closes
// connections stuck long past the pong deadline.
type HeartbeatWorker struct {
	log     *slog.Logger
	sweeper StaleSweeper
	every   time.Duration
	maxIdle time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, sweeper StaleSweeper, every, maxIdle time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, sweeper: sweeper, every: every, maxIdle: maxIdle}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping heartbeat sweeper")
			return nil
		case <-ticker.C:
			if reaped := w.sweeper.SweepStale(w.maxIdle); reaped > 0 {
				w.log.Info("Reaped stale sessions", "count", reaped)
			}
		}
	}
}
