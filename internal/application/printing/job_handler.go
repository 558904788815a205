package printing

import (
	"context"
	"errors"
	"fmt"

	"github.com/cookbook/api/internal/domain/recipe"
	"github.com/cookbook/api/internal/domain/shared"
	infra "github.com/cookbook/api/internal/infrastructure/printing"
	"github.com/cookbook/api/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// JobScheduler is the part of the worker pool the handler drives
type JobScheduler interface {
	Submit(job *scheduler.Job) error
	Cancel(recipeID uint) bool
}

// PDFJobHandler schedules attachment jobs for recipe events and re-enqueues
// recipes whose job never finished
type PDFJobHandler struct {
	scheduler JobScheduler
	repo      recipe.Repository
	storage   infra.PDFStorage
	logger    *zap.Logger
}

// NewPDFJobHandler creates a new handler
func NewPDFJobHandler(s JobScheduler, repo recipe.Repository, storage infra.PDFStorage, logger *zap.Logger) *PDFJobHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFJobHandler{
		scheduler: s,
		repo:      repo,
		storage:   storage,
		logger:    logger.Named("pdf_job_handler"),
	}
}

// EventTypes returns the recipe events the handler reacts to
func (h *PDFJobHandler) EventTypes() []string {
	return []string{recipe.EventTypeRecipePDFRequested, recipe.EventTypeRecipeDeleted}
}

// Handle submits a job for a PDF request, or cancels jobs and removes the
// file of a deleted recipe
func (h *PDFJobHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *recipe.RecipePDFRequestedEvent:
		return h.submit(e.RecipeID, scheduler.NewJob(e.RecipeID, e.JobID, e.URL))
	case *recipe.RecipeDeletedEvent:
		return h.cleanup(ctx, e)
	default:
		return fmt.Errorf("unexpected event type %T", event)
	}
}

// RecoverPending submits a job for every recipe still pending, using the job
// id stored on the recipe so a result of an older run is still recognized
func (h *PDFJobHandler) RecoverPending(ctx context.Context) (int, error) {
	pending, err := h.repo.FindPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending recipes: %w", err)
	}

	submitted := 0
	for i := range pending {
		r := &pending[i]
		err := h.submit(r.ID, scheduler.NewJob(r.ID, r.PDFJobID, r.URL))
		if errors.Is(err, scheduler.ErrQueueFull) {
			h.logger.Warn("queue full, remaining pending recipes wait for the next sweep",
				zap.Int("remaining", len(pending)-i))
			break
		}
		if err != nil {
			return submitted, err
		}
		submitted++
	}

	if submitted > 0 {
		h.logger.Info("re-enqueued pending PDF jobs", zap.Int("count", submitted))
	}
	return submitted, nil
}

func (h *PDFJobHandler) submit(recipeID uint, job *scheduler.Job) error {
	if err := h.scheduler.Submit(job); err != nil {
		h.logger.Warn("failed to submit PDF job, recipe stays pending",
			zap.Uint("recipe_id", recipeID),
			zap.String("job_id", job.ID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

func (h *PDFJobHandler) cleanup(ctx context.Context, e *recipe.RecipeDeletedEvent) error {
	if h.scheduler.Cancel(e.RecipeID) {
		h.logger.Info("cancelled PDF job of deleted recipe", zap.Uint("recipe_id", e.RecipeID))
	}
	if e.FileKey == "" {
		return nil
	}
	if err := h.storage.Delete(ctx, e.FileKey); err != nil {
		h.logger.Warn("failed to delete file of deleted recipe",
			zap.Uint("recipe_id", e.RecipeID), zap.String("file", e.FileKey), zap.Error(err))
		return err
	}
	h.logger.Info("deleted file of deleted recipe", zap.Uint("recipe_id", e.RecipeID), zap.String("file", e.FileKey))
	return nil
}

var (
	_ shared.EventHandler = (*PDFJobHandler)(nil)
	_ scheduler.Sweeper   = (*PDFJobHandler)(nil)
)
