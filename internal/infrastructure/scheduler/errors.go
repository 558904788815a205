package scheduler

import "errors"

// Submit errors. A rejected job leaves its recipe pending; the sweep retries it.
var (
	ErrStopped    = errors.New("scheduler: stopped")
	ErrQueueFull  = errors.New("scheduler: queue full")
	ErrInvalidJob = errors.New("scheduler: job needs a recipe id and a job id")
)

// ErrInvalidConfig is returned by NewScheduler for non-positive sizes or a missing executor
var ErrInvalidConfig = errors.New("scheduler: invalid configuration")
