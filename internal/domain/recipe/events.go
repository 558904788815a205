package recipe

import (
	"github.com/cookbook/api/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeRecipe is the aggregate type name carried by recipe events
const AggregateTypeRecipe = "Recipe"

// Event type constants for Recipe
const (
	EventTypeRecipePDFRequested = "recipe.pdf_requested"
	EventTypeRecipeDeleted      = "recipe.deleted"
)

// RecipePDFRequestedEvent is published after a write that supplied a new URL.
// JobID is the only job allowed to attach a file for this request.
type RecipePDFRequestedEvent struct {
	shared.BaseDomainEvent
	RecipeID uint      `json:"recipe_id"`
	URL      string    `json:"url"`
	JobID    uuid.UUID `json:"job_id"`
}

// NewRecipePDFRequestedEvent creates a new RecipePDFRequestedEvent
func NewRecipePDFRequestedEvent(r *Recipe) *RecipePDFRequestedEvent {
	return &RecipePDFRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRecipePDFRequested, AggregateTypeRecipe, r.ID),
		RecipeID:        r.ID,
		URL:             r.URL,
		JobID:           r.PDFJobID,
	}
}

// RecipeDeletedEvent is published after a recipe row is removed
type RecipeDeletedEvent struct {
	shared.BaseDomainEvent
	RecipeID uint   `json:"recipe_id"`
	FileKey  string `json:"file_key,omitempty"`
}

// NewRecipeDeletedEvent creates a new RecipeDeletedEvent
func NewRecipeDeletedEvent(r *Recipe) *RecipeDeletedEvent {
	return &RecipeDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRecipeDeleted, AggregateTypeRecipe, r.ID),
		RecipeID:        r.ID,
		FileKey:         r.FileKey,
	}
}
