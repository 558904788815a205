package persistence

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cookbook/api/internal/domain/recipe"
	"github.com/cookbook/api/internal/domain/shared"
	"github.com/cookbook/api/internal/domain/taxonomy"
	"github.com/cookbook/api/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRecipeRepository implements recipe.Repository using GORM
type GormRecipeRepository struct {
	db *gorm.DB
}

// NewGormRecipeRepository creates a new GormRecipeRepository
func NewGormRecipeRepository(db *gorm.DB) *GormRecipeRepository {
	return &GormRecipeRepository{db: db}
}

// FindByID loads a recipe with its association sets
func (r *GormRecipeRepository) FindByID(ctx context.Context, id uint) (*recipe.Recipe, error) {
	var model models.RecipeModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	recipes := []*recipe.Recipe{model.ToDomain()}
	if err := r.loadAssociations(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes[0], nil
}

// FindAll lists recipes with their association sets
func (r *GormRecipeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]recipe.Recipe, error) {
	query := recipeListing.apply(r.db.WithContext(ctx).Model(&models.RecipeModel{}), filter)

	var rows []models.RecipeModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

// FindPending lists recipes whose PDF job has not reached a terminal state
func (r *GormRecipeRepository) FindPending(ctx context.Context) ([]recipe.Recipe, error) {
	var rows []models.RecipeModel
	if err := r.db.WithContext(ctx).
		Where("pdf_status = ?", string(recipe.PDFStatusPending)).
		Order("updated_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

// ExistsByName reports whether another recipe already uses name
func (r *GormRecipeRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.RecipeModel{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts or updates the recipe row and rewrites its association rows in one
// transaction. Updates only apply while the stored version equals the loaded one.
func (r *GormRecipeRepository) Save(ctx context.Context, rec *recipe.Recipe) error {
	model := models.RecipeModelFromDomain(rec)
	isNew := rec.IsNew()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isNew {
			if err := tx.Create(model).Error; err != nil {
				return err
			}
		} else {
			result := tx.Model(&models.RecipeModel{}).
				Where("id = ? AND version = ?", rec.ID, rec.Version).
				Updates(map[string]any{
					"name":       model.Name,
					"url":        model.URL,
					"note":       model.Note,
					"file":       model.File,
					"pdf_status": model.PDFStatus,
					"pdf_error":  model.PDFError,
					"pdf_job_id": model.PDFJobID,
					"updated_at": time.Now(),
					"version":    gorm.Expr("version + 1"),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return r.missingOrConflict(tx, rec.ID)
			}
		}

		return replaceAssociations(tx, model.ID, rec)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return recipe.DuplicateNameError()
		}
		var dangling *danglingLinkError
		if errors.As(err, &dangling) {
			return r.danglingLinkValidation(ctx, dangling)
		}
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return err
		}
		return fmt.Errorf("failed to save recipe: %w", err)
	}

	rec.ID = model.ID
	rec.CreatedAt = model.CreatedAt
	if !isNew {
		rec.IncrementVersion()
	}
	return nil
}

// Delete removes the recipe and its association rows
func (r *GormRecipeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, kind := range taxonomy.AllKinds() {
			if err := tx.Exec("DELETE FROM "+models.JoinTable(kind)+" WHERE recipe_id = ?", id).Error; err != nil {
				return fmt.Errorf("failed to unlink %s: %w", kind.Plural(), err)
			}
		}

		result := tx.Where("id = ?", id).Delete(&models.RecipeModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CompletePDFJob records a job's terminal outcome with a conditional update:
// the row only changes while pdf_job_id still equals jobID and the job is pending.
func (r *GormRecipeRepository) CompletePDFJob(ctx context.Context, id uint, jobID uuid.UUID, outcome recipe.PDFOutcome) (bool, error) {
	if !outcome.Status.IsTerminal() {
		return false, shared.NewDomainError("INVALID_STATE", "PDF job outcome must be terminal")
	}

	updates := map[string]any{
		"pdf_status": string(outcome.Status),
		"pdf_error":  outcome.Error,
		"updated_at": time.Now(),
		"version":    gorm.Expr("version + 1"),
	}
	if outcome.Status == recipe.PDFStatusSucceeded {
		updates["file"] = outcome.FileKey
	}

	result := r.db.WithContext(ctx).Model(&models.RecipeModel{}).
		Where("id = ? AND pdf_job_id = ? AND pdf_status = ?", id, jobID.String(), string(recipe.PDFStatusPending)).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to complete pdf job: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *GormRecipeRepository) missingOrConflict(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.RecipeModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}

func (r *GormRecipeRepository) hydrate(ctx context.Context, rows []models.RecipeModel) ([]recipe.Recipe, error) {
	ptrs := make([]*recipe.Recipe, 0, len(rows))
	for i := range rows {
		ptrs = append(ptrs, rows[i].ToDomain())
	}
	if err := r.loadAssociations(ctx, ptrs); err != nil {
		return nil, err
	}

	recipes := make([]recipe.Recipe, 0, len(ptrs))
	for _, p := range ptrs {
		recipes = append(recipes, *p)
	}
	return recipes, nil
}

// linkedTerm is a taxonomy row joined with the recipe it is linked to
type linkedTerm struct {
	RecipeID  uint
	ID        uint
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// loadAssociations fills the association sets of recipes with one query per kind
func (r *GormRecipeRepository) loadAssociations(ctx context.Context, recipes []*recipe.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	byID := make(map[uint]*recipe.Recipe, len(recipes))
	ids := make([]uint, 0, len(recipes))
	for _, rec := range recipes {
		byID[rec.ID] = rec
		ids = append(ids, rec.ID)
	}

	for _, kind := range taxonomy.AllKinds() {
		var rows []linkedTerm
		err := r.db.WithContext(ctx).
			Table(kind.Plural()+" AS t").
			Select("l.recipe_id, t.id, t.name, t.created_at, t.updated_at").
			Joins("JOIN "+models.JoinTable(kind)+" AS l ON l."+models.JoinColumn(kind)+" = t.id").
			Where("l.recipe_id IN ?", ids).
			Order("t.name ASC").
			Scan(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", kind.Plural(), err)
		}

		grouped := make(map[uint][]taxonomy.Term, len(recipes))
		for _, row := range rows {
			grouped[row.RecipeID] = append(grouped[row.RecipeID], taxonomy.Term{
				BaseEntity: shared.BaseEntity{ID: row.ID, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
				Kind:       kind,
				Name:       row.Name,
			})
		}
		for id, rec := range byID {
			terms := grouped[id]
			if terms == nil {
				terms = []taxonomy.Term{}
			}
			rec.SetAssociations(kind, terms)
		}
	}
	return nil
}

// replaceAssociations rewrites every association set of the recipe
func replaceAssociations(tx *gorm.DB, recipeID uint, rec *recipe.Recipe) error {
	for _, kind := range taxonomy.AllKinds() {
		table := models.JoinTable(kind)
		column := models.JoinColumn(kind)

		if err := tx.Exec("DELETE FROM "+table+" WHERE recipe_id = ?", recipeID).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}

		termIDs := rec.AssociationIDs(kind)
		if len(termIDs) == 0 {
			continue
		}
		rows := make([]map[string]any, 0, len(termIDs))
		for _, termID := range termIDs {
			rows = append(rows, map[string]any{"recipe_id": recipeID, column: termID})
		}
		if err := tx.Table(table).Create(rows).Error; err != nil {
			if isForeignKeyViolation(err) {
				return &danglingLinkError{kind: kind, termIDs: termIDs, err: err}
			}
			return fmt.Errorf("failed to link %s: %w", kind.Plural(), err)
		}
	}
	return nil
}

// danglingLinkError reports a link to a term that was deleted after the
// service resolved it
type danglingLinkError struct {
	kind    taxonomy.Kind
	termIDs []uint
	err     error
}

func (e *danglingLinkError) Error() string {
	return fmt.Sprintf("failed to link %s: %v", e.kind.Plural(), e.err)
}

func (e *danglingLinkError) Unwrap() error { return e.err }

// danglingLinkValidation turns a foreign key failure into the validation error
// an unknown id gets, naming the ids that no longer exist
func (r *GormRecipeRepository) danglingLinkValidation(ctx context.Context, e *danglingLinkError) error {
	var existing []uint
	if err := r.db.WithContext(ctx).Table(e.kind.Plural()).
		Where("id IN ?", e.termIDs).
		Pluck("id", &existing).Error; err != nil {
		return fmt.Errorf("failed to save recipe: %w", e)
	}

	var verr *shared.ValidationError
	for _, id := range e.termIDs {
		if slices.Contains(existing, id) {
			continue
		}
		msg := fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
		if verr == nil {
			verr = shared.NewValidationError(e.kind.IDsField(), msg)
		} else {
			verr.Add(e.kind.IDsField(), msg)
		}
	}
	if verr == nil {
		return fmt.Errorf("failed to save recipe: %w", e)
	}
	return verr
}

var _ recipe.Repository = (*GormRecipeRepository)(nil)
