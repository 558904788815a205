package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/cookbook/api/internal/domain/shared"
	"github.com/cookbook/api/internal/domain/taxonomy"
	"github.com/cookbook/api/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTermRepository implements taxonomy.TermRepository for one kind using GORM.
// All four taxonomy tables share the row shape, so one implementation serves them
// by switching the table name.
type GormTermRepository struct {
	db   *gorm.DB
	kind taxonomy.Kind
}

// NewGormTermRepository creates a repository for the terms of kind
func NewGormTermRepository(db *gorm.DB, kind taxonomy.Kind) *GormTermRepository {
	return &GormTermRepository{db: db, kind: kind}
}

// NewGormTermRepositories creates one repository per taxonomy kind
func NewGormTermRepositories(db *gorm.DB) map[taxonomy.Kind]*GormTermRepository {
	repos := make(map[taxonomy.Kind]*GormTermRepository, len(taxonomy.AllKinds()))
	for _, kind := range taxonomy.AllKinds() {
		repos[kind] = NewGormTermRepository(db, kind)
	}
	return repos
}

// Kind returns the kind this repository serves
func (r *GormTermRepository) Kind() taxonomy.Kind {
	return r.kind
}

func (r *GormTermRepository) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.kind.Plural())
}

// FindByID finds a term by its ID
func (r *GormTermRepository) FindByID(ctx context.Context, id uint) (*taxonomy.Term, error) {
	var model models.TermModel
	if err := r.table(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(r.kind), nil
}

// FindAll lists terms, ordered by name unless the filter says otherwise
func (r *GormTermRepository) FindAll(ctx context.Context, filter shared.Filter) ([]taxonomy.Term, error) {
	query := termListing.apply(r.table(ctx), filter)

	var rows []models.TermModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomain(rows), nil
}

// FindByIDs returns the terms for the given ids in name order
func (r *GormTermRepository) FindByIDs(ctx context.Context, ids []uint) ([]taxonomy.Term, error) {
	if len(ids) == 0 {
		return []taxonomy.Term{}, nil
	}
	var rows []models.TermModel
	if err := r.table(ctx).Where("id IN ?", ids).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toDomain(rows), nil
}

// ExistsByName reports whether another term already uses name
func (r *GormTermRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.table(ctx).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a term. A unique violation on name becomes a
// field-level conflict error.
func (r *GormTermRepository) Save(ctx context.Context, term *taxonomy.Term) error {
	model := models.TermModelFromDomain(term)

	var err error
	if term.IsNew() {
		err = r.table(ctx).Create(model).Error
	} else {
		result := r.table(ctx).Where("id = ?", term.ID).Updates(map[string]any{
			"name":       model.Name,
			"updated_at": model.UpdatedAt,
		})
		err = result.Error
		if err == nil && result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
	}
	if err != nil {
		if isUniqueViolation(err) {
			return taxonomy.DuplicateNameError(r.kind)
		}
		return fmt.Errorf("failed to save %s: %w", r.kind, err)
	}

	term.ID = model.ID
	term.CreatedAt = model.CreatedAt
	return nil
}

// Delete removes a term together with its recipe links. Recipes themselves are untouched.
func (r *GormTermRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unlink := "DELETE FROM " + models.JoinTable(r.kind) + " WHERE " + models.JoinColumn(r.kind) + " = ?"
		if err := tx.Exec(unlink, id).Error; err != nil {
			return fmt.Errorf("failed to unlink %s: %w", r.kind, err)
		}

		result := tx.Exec("DELETE FROM "+r.kind.Plural()+" WHERE id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormTermRepository) toDomain(rows []models.TermModel) []taxonomy.Term {
	terms := make([]taxonomy.Term, 0, len(rows))
	for i := range rows {
		terms = append(terms, *rows[i].ToDomain(r.kind))
	}
	return terms
}

var _ taxonomy.TermRepository = (*GormTermRepository)(nil)
