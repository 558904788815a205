package recipe

import (
	"context"

	"github.com/cookbook/api/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence for recipes and their association sets
type Repository interface {
	// FindByID loads a recipe with its associations
	FindByID(ctx context.Context, id uint) (*Recipe, error)

	// FindAll lists recipes with their associations (name ascending by default)
	FindAll(ctx context.Context, filter shared.Filter) ([]Recipe, error)

	// FindPending lists recipes whose PDF job never reached a terminal state
	FindPending(ctx context.Context) ([]Recipe, error)

	// ExistsByName reports whether another recipe (not excludeID) already uses name
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)

	// Save inserts or updates the recipe and replaces its association rows.
	// Updates are guarded by the loaded version and fail with ErrConcurrencyConflict
	// when the row changed in between.
	Save(ctx context.Context, r *Recipe) error

	// Delete removes the recipe and its association rows
	Delete(ctx context.Context, id uint) error

	// CompletePDFJob writes the outcome of a job, but only while jobID is still the
	// recipe's current job. It returns false when the job was superseded or the recipe is gone.
	CompletePDFJob(ctx context.Context, id uint, jobID uuid.UUID, outcome PDFOutcome) (bool, error)
}

// PDFOutcome is the terminal result of an attachment job
type PDFOutcome struct {
	Status  PDFStatus
	FileKey string
	Error   string
}

// Succeeded builds the outcome of a job that stored fileKey
func Succeeded(fileKey string) PDFOutcome {
	return PDFOutcome{Status: PDFStatusSucceeded, FileKey: fileKey}
}

// Failed builds the outcome of a job that could not produce a file
func Failed(reason string) PDFOutcome {
	return PDFOutcome{Status: PDFStatusFailed, Error: reason}
}
