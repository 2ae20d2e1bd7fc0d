package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"taman-digital/internal/logger"
)

// TrashSweeper purges expired trash.
type TrashSweeper interface {
	SweepTrash(ctx context.Context) (int, error)
}

// RetentionSweeper runs a trash sweep on a fixed interval.
type RetentionSweeper struct {
	sweeper  TrashSweeper
	timeout  time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewRetentionSweeper creates a new sweeper. Each run is bounded by timeout.
func NewRetentionSweeper(sweeper TrashSweeper, timeout time.Duration) *RetentionSweeper {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &RetentionSweeper{
		sweeper:  sweeper,
		timeout:  timeout,
		stopChan: make(chan struct{}),
	}
}

// Start sweeps once immediately and then every interval.
func (s *RetentionSweeper) Start(interval time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.RunOnce()

		for {
			select {
			case <-ticker.C:
				s.RunOnce()
			case <-s.stopChan:
				return
			}
		}
	}()
}

// RunOnce performs a single sweep and returns the number of purged posts.
func (s *RetentionSweeper) RunOnce() int {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	purged, err := s.sweeper.SweepTrash(ctx)
	if err != nil {
		logger.Error("Trash sweep failed", slog.String("error", err.Error()))
		return 0
	}
	if purged > 0 {
		logger.Info("Trash sweep purged expired posts", slog.Int("count", purged))
	}
	return purged
}

// Stop stops the sweeper and waits for a running sweep to finish.
func (s *RetentionSweeper) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
