// Package scheduler runs recipe PDF jobs on a fixed pool of long-lived workers.
//
// Jobs are keyed by recipe id. At most one job per recipe runs at a time;
// submitting a newer job for a recipe replaces a queued one and cancels a
// running one, and the newer job then runs on the same worker once the
// cancelled one has returned.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cookbook/api/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSuccess   JobStatus = "SUCCESS"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusCancelled JobStatus = "CANCELLED"
)

// Job is one request to render a recipe's URL and attach the result
type Job struct {
	ID          uuid.UUID // the recipe's pdf_job_id when the job was requested
	RecipeID    uint
	URL         string
	Status      JobStatus
	Error       string
	SubmittedAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// NewJob creates a new pending job
func NewJob(recipeID uint, jobID uuid.UUID, url string) *Job {
	return &Job{
		ID:          jobID,
		RecipeID:    recipeID,
		URL:         url,
		Status:      JobStatusPending,
		SubmittedAt: time.Now(),
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// Cancel marks the job as cancelled
func (j *Job) Cancel() {
	now := time.Now()
	j.Status = JobStatusCancelled
	j.CompletedAt = &now
}

// JobExecutor is the interface for executing jobs
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// JobExecutorFunc adapts a function to JobExecutor
type JobExecutorFunc func(ctx context.Context, job *Job) error

// Execute calls f(ctx, job)
func (f JobExecutorFunc) Execute(ctx context.Context, job *Job) error {
	return f(ctx, job)
}

// Config holds scheduler configuration
type Config struct {
	Workers   int
	QueueSize int
	// JobTimeout bounds a whole job including lease wait and storage. 0 means no bound.
	JobTimeout time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Workers:    2,
		QueueSize:  100,
		JobTimeout: 2 * time.Minute,
	}
}

// Stats is a point-in-time view of the scheduler
type Stats struct {
	Queued  int
	Running int
}

// keyState tracks the jobs of one recipe
type keyState struct {
	queued  *Job
	running *Job
	cancel  context.CancelFunc
	next    *Job
}

func (k *keyState) idle() bool {
	return k.queued == nil && k.running == nil && k.next == nil
}

// Scheduler is a worker pool with per-recipe supersede and serialization
type Scheduler struct {
	config   Config
	executor JobExecutor
	logger   *zap.Logger

	queue chan uint

	mu        sync.Mutex
	keys      map[uint]*keyState
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config, executor JobExecutor, logger *zap.Logger) (*Scheduler, error) {
	if config.Workers < 1 || config.QueueSize < 1 || config.JobTimeout < 0 {
		return nil, fmt.Errorf("%w: workers=%d queue_size=%d job_timeout=%s",
			ErrInvalidConfig, config.Workers, config.QueueSize, config.JobTimeout)
	}
	if executor == nil {
		return nil, fmt.Errorf("%w: executor is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		queue:    make(chan uint, config.QueueSize),
		keys:     make(map[uint]*keyState),
	}, nil
}

// Start launches the workers. Jobs run under a context derived from ctx
// that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.logger.Info("PDF job scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Int("queue_size", s.config.QueueSize),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs, drops queued ones and waits for workers to
// return or ctx to end. Dropped recipes stay pending in the database and are
// picked up by the next recovery.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.cancel()
	dropped := 0
	for id, st := range s.keys {
		if st.queued != nil {
			dropped++
		}
		st.queued, st.next = nil, nil
		if st.running == nil {
			delete(s.keys, id)
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("PDF job scheduler stopped gracefully", zap.Int("dropped_jobs", dropped))
		return nil
	case <-ctx.Done():
		s.logger.Warn("PDF job scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler accepts jobs
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Submit enqueues job. A queued job for the same recipe is replaced; a running
// one is cancelled and job runs after it returns. Submitting the job that is
// already running is a no-op.
func (s *Scheduler) Submit(job *Job) error {
	if job == nil || job.RecipeID == 0 || job.ID == uuid.Nil {
		return ErrInvalidJob
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrStopped
	}

	log := s.logger.With(
		zap.Uint("recipe_id", job.RecipeID),
		zap.String("job_id", job.ID.String()),
	)

	st := s.keys[job.RecipeID]
	switch {
	case st != nil && st.running != nil:
		if st.running.ID == job.ID {
			return nil
		}
		if st.next == nil || st.next.ID != job.ID {
			st.next = job
			st.cancel()
			log.Info("Superseding running PDF job", zap.String("superseded_job_id", st.running.ID.String()))
		}
		return nil
	case st != nil && st.queued != nil:
		if st.queued.ID != job.ID {
			log.Info("Replacing queued PDF job", zap.String("superseded_job_id", st.queued.ID.String()))
			st.queued = job
		}
		return nil
	}

	select {
	case s.queue <- job.RecipeID:
		s.keys[job.RecipeID] = &keyState{queued: job}
		log.Debug("PDF job submitted")
		return nil
	default:
		log.Warn("PDF job queue is full")
		return ErrQueueFull
	}
}

// Cancel drops queued work and cancels running work for a recipe
func (s *Scheduler) Cancel(recipeID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.keys[recipeID]
	if !ok {
		return false
	}
	st.queued, st.next = nil, nil
	if st.running != nil {
		st.cancel()
	} else {
		delete(s.keys, recipeID)
	}
	s.logger.Info("PDF jobs cancelled", zap.Uint("recipe_id", recipeID))
	return true
}

// Active reports whether a job for the recipe is queued or running
func (s *Scheduler) Active(recipeID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[recipeID]
	return ok
}

// Stats returns the number of queued and running jobs
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stats Stats
	for _, st := range s.keys {
		if st.running != nil {
			stats.Running++
		}
		if st.queued != nil || st.next != nil {
			stats.Queued++
		}
	}
	return stats
}

func (s *Scheduler) worker(workerID int) {
	defer s.wg.Done()
	s.logger.Debug("Worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debug("Worker stopping", zap.Int("worker_id", workerID))
			return
		case recipeID := <-s.queue:
			s.runKey(workerID, recipeID)
		}
	}
}

// runKey runs the queued job of a recipe, then any job that superseded it
// while it was running.
func (s *Scheduler) runKey(workerID int, recipeID uint) {
	s.mu.Lock()
	st, ok := s.keys[recipeID]
	if !ok || st.queued == nil || s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	job := st.queued
	st.queued = nil

	for job != nil {
		jobCtx, cancel := s.jobContext()
		st.running, st.cancel = job, cancel
		s.mu.Unlock()

		s.processJob(jobCtx, workerID, job)
		cancel()

		s.mu.Lock()
		st.running, st.cancel = nil, nil
		job, st.next = st.next, nil
		if job != nil && s.ctx.Err() != nil {
			job = nil
		}
	}
	if st.idle() {
		delete(s.keys, recipeID)
	}
	s.mu.Unlock()
}

func (s *Scheduler) jobContext() (context.Context, context.CancelFunc) {
	if s.config.JobTimeout > 0 {
		return context.WithTimeout(s.ctx, s.config.JobTimeout)
	}
	return context.WithCancel(s.ctx)
}

// processJob executes a single job, keeping the worker alive through panics
func (s *Scheduler) processJob(ctx context.Context, workerID int, job *Job) {
	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.Uint("recipe_id", job.RecipeID),
		zap.String("job_id", job.ID.String()),
	)

	ctx = logger.WithContext(ctx, log)

	job.Start()
	log.Info("Processing PDF job")

	err := s.execute(ctx, job)
	switch {
	case err == nil:
		job.Complete()
		log.Info("PDF job completed", zap.Duration("duration", time.Since(*job.StartedAt)))
	case errors.Is(ctx.Err(), context.Canceled):
		job.Cancel()
		log.Info("PDF job cancelled")
	default:
		job.Fail(err.Error())
		log.Error("PDF job failed", zap.Error(err))
	}
}

func (s *Scheduler) execute(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
			s.logger.Error("PDF job panicked",
				zap.Uint("recipe_id", job.RecipeID),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	return s.executor.Execute(ctx, job)
}
