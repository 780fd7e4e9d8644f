// Package scheduler runs the recurring silent ledger refresh. It is a small
// two-state machine (stopped/running) around a ticker: start is rejected while
// running so no second timer can exist, and refreshes execute synchronously in
// the loop so two cycles can never overlap.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RefreshFunc performs one full ledger refresh. silent refreshes must not
// surface errors to the user; the function owns that distinction.
type RefreshFunc func(ctx context.Context, silent bool) error

// Config holds scheduler configuration.
type Config struct {
	// Interval is how often to refresh the ledger (default: 30s).
	Interval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Interval: 30 * time.Second}
}

type Scheduler struct {
	refresh RefreshFunc
	config  Config

	// Lifecycle management
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	lastSync time.Time
}

func New(refresh RefreshFunc, config Config) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	return &Scheduler{refresh: refresh, config: config}
}

// Start begins the refresh loop. Returns an error if already running, so a
// repeated call cannot create a second concurrent timer.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	prevDone := s.doneCh
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	// An async stop leaves the previous loop draining its last refresh. Wait
	// it out so two loops can never refresh concurrently.
	if prevDone != nil {
		<-prevDone
	}

	go s.runLoop(ctx)

	slog.InfoContext(ctx, "Sync scheduler started", "interval", s.config.Interval)
	return nil
}

// Stop cancels the pending timer and waits for the loop to exit. Safe to call
// when not running. Must be called on shutdown.
func (s *Scheduler) Stop(ctx context.Context) error {
	doneCh, wasRunning := s.signalStop()
	if !wasRunning {
		return nil
	}

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync scheduler stopped")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync scheduler stop timed out")
		return ctx.Err()
	}
	return nil
}

// StopAsync signals the loop to exit without waiting for it. This is the only
// safe stop on the forced-logout path, which can run inside the refresh call
// itself; waiting there would deadlock the loop on its own exit.
func (s *Scheduler) StopAsync() {
	s.signalStop()
}

func (s *Scheduler) signalStop() (doneCh chan struct{}, wasRunning bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil, false
	}
	s.running = false
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	return s.doneCh, true
}

// IsRunning returns whether the scheduler loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastSync returns the completion time of the most recent successful refresh,
// zero if none has completed yet.
func (s *Scheduler) LastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}

func (s *Scheduler) runLoop(ctx context.Context) {
	// Captured under the lock so a restart after an async stop cannot swap
	// the channels out from under a loop that is still draining a refresh.
	s.mu.Lock()
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()
	defer close(doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Synchronous call: the next tick cannot fire a refresh while
			// this one's network call is still outstanding.
			if err := s.refresh(ctx, true); err != nil {
				slog.DebugContext(ctx, "Silent refresh failed", "error", err)
				continue
			}
			s.mu.Lock()
			s.lastSync = time.Now()
			s.mu.Unlock()
		}
	}
}
