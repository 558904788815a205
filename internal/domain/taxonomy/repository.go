package taxonomy

import (
	"context"

	"github.com/cookbook/api/internal/domain/shared"
)

// TermRepository defines persistence for the terms of a single kind
type TermRepository interface {
	// Kind returns the kind this repository serves
	Kind() Kind

	// FindByID finds a term by its ID
	FindByID(ctx context.Context, id uint) (*Term, error)

	// FindAll lists terms ordered per the filter (name ascending by default)
	FindAll(ctx context.Context, filter shared.Filter) ([]Term, error)

	// FindByIDs returns the terms for the given ids. Missing ids are simply absent from the result.
	FindByIDs(ctx context.Context, ids []uint) ([]Term, error)

	// ExistsByName reports whether another term (not excludeID) already uses name
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)

	// Save creates or updates a term
	Save(ctx context.Context, term *Term) error

	// Delete removes a term and its recipe links
	Delete(ctx context.Context, id uint) error
}
