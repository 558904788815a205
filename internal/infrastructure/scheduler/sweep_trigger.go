package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper re-enqueues recipes whose PDF job never finished
type Sweeper interface {
	RecoverPending(ctx context.Context) (int, error)
}

// SweepTrigger periodically runs a Sweeper so that jobs dropped by a full
// queue or a shutdown are eventually picked up again.
type SweepTrigger struct {
	interval time.Duration
	sweeper  Sweeper
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweepTrigger creates a new sweep trigger. A zero interval disables it.
func NewSweepTrigger(interval time.Duration, sweeper Sweeper, logger *zap.Logger) *SweepTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepTrigger{
		interval: interval,
		sweeper:  sweeper,
		logger:   logger,
	}
}

// Start starts the periodic sweep
func (t *SweepTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isRunning || t.interval <= 0 {
		return nil
	}
	t.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Pending PDF sweep started", zap.Duration("interval", t.interval))
	return nil
}

// Stop stops the periodic sweep
func (t *SweepTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	t.cancel()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Pending PDF sweep stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *SweepTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.sweep(ctx)
		}
	}
}

func (t *SweepTrigger) sweep(ctx context.Context) {
	n, err := t.sweeper.RecoverPending(ctx)
	if err != nil {
		t.logger.Error("Pending PDF sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		t.logger.Info("Pending PDF jobs re-enqueued", zap.Int("count", n))
	}
}
