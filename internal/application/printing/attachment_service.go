// Package printing runs the background job that renders a recipe's URL to PDF
// and attaches the result, and turns recipe events into scheduled jobs.
package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cookbook/api/internal/domain/recipe"
	"github.com/cookbook/api/internal/domain/shared"
	"github.com/cookbook/api/internal/infrastructure/cache"
	infra "github.com/cookbook/api/internal/infrastructure/printing"
	"github.com/cookbook/api/internal/infrastructure/scheduler"
	"github.com/cookbook/api/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// completeTimeout bounds the final status write, which runs detached from the
// job context so a shutdown after the file was stored still records it
const completeTimeout = 10 * time.Second

// AttachmentConfig tunes the attachment job
type AttachmentConfig struct {
	// LeaseTTL is how long the render lease of a recipe is held at most
	LeaseTTL time.Duration
	// LeasePoll is the interval between lease acquisition attempts
	LeasePoll time.Duration
	// Zoom is passed to the renderer
	Zoom float64
}

// PDFAttachmentService executes scheduler jobs: render, store, attach
type PDFAttachmentService struct {
	repo     recipe.Repository
	renderer infra.PDFRenderer
	storage  infra.PDFStorage
	lease    shared.Lease
	metrics  *telemetry.PDFMetrics
	config   AttachmentConfig
	logger   *zap.Logger
}

// NewPDFAttachmentService creates the job executor. metrics may be nil.
func NewPDFAttachmentService(
	repo recipe.Repository,
	renderer infra.PDFRenderer,
	storage infra.PDFStorage,
	lease shared.Lease,
	metrics *telemetry.PDFMetrics,
	config AttachmentConfig,
	logger *zap.Logger,
) *PDFAttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.LeaseTTL <= 0 {
		config.LeaseTTL = 90 * time.Second
	}
	if config.LeasePoll <= 0 {
		config.LeasePoll = 250 * time.Millisecond
	}
	return &PDFAttachmentService{
		repo:     repo,
		renderer: renderer,
		storage:  storage,
		lease:    lease,
		metrics:  metrics,
		config:   config,
		logger:   logger.Named("pdf_attachment"),
	}
}

// SetMetrics replaces the metrics recorder. The metrics observe the scheduler
// that runs this service, so they can only be built after it.
func (s *PDFAttachmentService) SetMetrics(metrics *telemetry.PDFMetrics) {
	s.metrics = metrics
}

// LeaseKey is the render lease key of a recipe
func LeaseKey(recipeID uint) string {
	return fmt.Sprintf("recipe:%d", recipeID)
}

// Execute runs one job. Only the recipe's current job may attach a file; a
// superseded job discards its output. Cancellation never marks the recipe failed.
func (s *PDFAttachmentService) Execute(ctx context.Context, job *scheduler.Job) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "pdf_attachment", "execute",
		telemetry.SpanAttrRecipeID, job.RecipeID,
		telemetry.SpanAttrJobID, job.ID.String(),
		telemetry.SpanAttrURL, job.URL,
	)
	defer span.End()

	log := s.logger.With(zap.Uint("recipe_id", job.RecipeID), zap.String("job_id", job.ID.String()))
	outcome := telemetry.OutcomeFailed
	defer func() {
		s.metrics.RecordJob(context.WithoutCancel(ctx), outcome)
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf job panicked: %v", r)
			log.Error("PDF job panicked", zap.Any("panic", r), zap.Stack("stack"))
			s.fail(ctx, job, log, err)
			outcome = telemetry.OutcomeFailed
		}
		telemetry.RecordError(span, err)
	}()

	owner := job.ID.String()
	leaseKey := LeaseKey(job.RecipeID)
	if err := cache.AcquireWait(ctx, s.lease, leaseKey, owner, s.config.LeaseTTL, s.config.LeasePoll); err != nil {
		return s.abort(ctx, job, log, fmt.Errorf("failed to acquire render lease: %w", err), &outcome)
	}
	defer func() {
		if err := s.lease.Release(context.WithoutCancel(ctx), leaseKey, owner); err != nil {
			log.Warn("failed to release render lease", zap.Error(err))
		}
	}()

	current, err := s.repo.FindByID(ctx, job.RecipeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Info("recipe deleted before rendering, dropping job")
			outcome = telemetry.OutcomeSuperseded
			return nil
		}
		return s.abort(ctx, job, log, fmt.Errorf("failed to load recipe: %w", err), &outcome)
	}
	if !current.IsCurrentJob(job.ID) || current.PDFStatus != recipe.PDFStatusPending {
		log.Info("job superseded before rendering",
			zap.String("current_job_id", current.PDFJobID.String()),
			zap.String("pdf_status", current.PDFStatus.String()))
		outcome = telemetry.OutcomeSuperseded
		return nil
	}

	started := time.Now()
	result, err := s.renderer.Render(ctx, &infra.RenderRequest{URL: job.URL, Zoom: s.config.Zoom})
	s.metrics.RecordRender(context.WithoutCancel(ctx), time.Since(started), err == nil)
	if err == nil {
		err = infra.ValidatePDF(result.PDFData)
	}
	if err != nil {
		return s.abort(ctx, job, log, err, &outcome)
	}
	if result.Warning != "" {
		log.Warn("renderer reported errors, keeping its output", zap.String("warning", result.Warning))
	}
	log.Debug("rendered PDF",
		zap.Int("bytes", len(result.PDFData)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))

	fileKey := infra.RecipeFileKey(job.RecipeID)
	if _, err := s.storage.Store(ctx, &infra.StoreRequest{Key: fileKey, PDFData: result.PDFData}); err != nil {
		return s.abort(ctx, job, log, infra.NewRenderError(infra.ErrCodeStorageFailed, "failed to store PDF", err), &outcome)
	}

	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), completeTimeout)
	defer cancel()

	attached, err := s.repo.CompletePDFJob(detached, job.RecipeID, job.ID, recipe.Succeeded(fileKey))
	if err != nil {
		return fmt.Errorf("failed to attach PDF: %w", err)
	}
	if !attached {
		log.Info("job superseded while rendering, discarding output")
		s.discardOutput(detached, job, fileKey, log)
		outcome = telemetry.OutcomeSuperseded
		return nil
	}

	outcome = telemetry.OutcomeSucceeded
	telemetry.SetOK(span)
	log.Info("PDF attached", zap.String("file", fileKey))
	return nil
}

// abort ends a job that did not produce a file. A cancelled job leaves the
// recipe untouched, every other error marks it failed.
func (s *PDFAttachmentService) abort(ctx context.Context, job *scheduler.Job, log *zap.Logger, cause error, outcome *string) error {
	if infra.IsCancelled(cause) || errors.Is(ctx.Err(), context.Canceled) {
		log.Info("PDF job cancelled", zap.Error(cause))
		*outcome = telemetry.OutcomeCancelled
		return cause
	}

	*outcome = telemetry.OutcomeFailed
	s.fail(ctx, job, log, cause)
	return cause
}

// fail records cause on the recipe while job is still its current job
func (s *PDFAttachmentService) fail(ctx context.Context, job *scheduler.Job, log *zap.Logger, cause error) {
	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), completeTimeout)
	defer cancel()

	recorded, err := s.repo.CompletePDFJob(detached, job.RecipeID, job.ID, recipe.Failed(cause.Error()))
	switch {
	case err != nil:
		log.Error("failed to record PDF job failure", zap.Error(err), zap.NamedError("cause", cause))
	case !recorded:
		log.Info("superseded job failed, nothing recorded", zap.Error(cause))
	default:
		log.Warn("PDF job failed", zap.Error(cause))
	}
}

// discardOutput removes the file written by a superseded job, unless the
// recipe's current state references it. The lease is still held here, so no
// newer job can be writing the same key.
func (s *PDFAttachmentService) discardOutput(ctx context.Context, job *scheduler.Job, fileKey string, log *zap.Logger) {
	current, err := s.repo.FindByID(ctx, job.RecipeID)
	switch {
	case err == nil && current.FileKey == fileKey && current.PDFStatus == recipe.PDFStatusSucceeded:
		log.Debug("stored key is owned by a newer job, keeping it")
		return
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		log.Warn("failed to reload recipe, keeping stale output", zap.Error(err))
		return
	}

	if err := s.storage.Delete(ctx, fileKey); err != nil {
		log.Warn("failed to delete stale output", zap.String("file", fileKey), zap.Error(err))
	}
}

var _ scheduler.JobExecutor = (*PDFAttachmentService)(nil)
