// Package recipe implements the recipe use cases: the synchronous write path,
// reads, deletion and download of the attached PDF.
package recipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/cookbook/api/internal/domain/recipe"
	"github.com/cookbook/api/internal/domain/shared"
	"github.com/cookbook/api/internal/domain/taxonomy"
	infra "github.com/cookbook/api/internal/infrastructure/printing"
	"github.com/cookbook/api/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// maxWriteAttempts bounds the retries of a write that lost the version check
// to a concurrently finishing PDF job
const maxWriteAttempts = 3

// Service handles recipe operations
type Service struct {
	repo    recipe.Repository
	terms   map[taxonomy.Kind]taxonomy.TermRepository
	storage infra.PDFStorage
	events  shared.EventPublisher
	logger  *zap.Logger
}

// NewService creates a recipe Service. terms must hold a repository for every kind.
func NewService[R taxonomy.TermRepository](
	repo recipe.Repository,
	terms map[taxonomy.Kind]R,
	storage infra.PDFStorage,
	events shared.EventPublisher,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	byKind := make(map[taxonomy.Kind]taxonomy.TermRepository, len(terms))
	for kind, r := range terms {
		byKind[kind] = r
	}
	return &Service{
		repo:    repo,
		terms:   byKind,
		storage: storage,
		events:  events,
		logger:  logger.Named("recipe_service"),
	}
}

// List returns every recipe ordered by name
func (s *Service) List(ctx context.Context) ([]RecipeResponse, error) {
	recipes, err := s.repo.FindAll(ctx, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, s.toResponse(ctx, &recipes[i]))
	}
	return out, nil
}

// GetByID returns a single recipe
func (s *Service) GetByID(ctx context.Context, id uint) (*RecipeResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(ctx, r)
	return &resp, nil
}

// Create persists a new recipe with its associations in one transaction.
// A non-empty URL starts the PDF attachment job once the recipe is committed.
func (s *Service) Create(ctx context.Context, req CreateRecipeRequest) (*RecipeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "recipe", "create")
	defer span.End()

	r, err := recipe.NewRecipe(req.Name)
	if err != nil {
		return nil, err
	}
	r.SetNote(req.Note)

	var stale string
	if strings.TrimSpace(req.URL) != "" {
		if stale, err = r.RequestPDF(req.URL); err != nil {
			return nil, err
		}
	}
	if err := s.resolveAssociations(ctx, r, req.AssociationIDs); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, r.Name, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRecipeID, r.ID)

	s.logger.Info("recipe created", zap.Uint("recipe_id", r.ID), zap.String("name", r.Name))
	s.afterCommit(ctx, r, stale)

	resp := s.toResponse(ctx, r)
	return &resp, nil
}

// Update applies a full update (PUT). The note is replaced, the URL is only
// changed when a non-empty one is supplied.
func (s *Service) Update(ctx context.Context, id uint, req CreateRecipeRequest) (*RecipeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "recipe", "update", telemetry.SpanAttrRecipeID, id)
	defer span.End()

	note := req.Note
	return s.write(ctx, id, PatchRecipeRequest{
		Name:           &req.Name,
		URL:            &req.URL,
		Note:           &note,
		AssociationIDs: req.AssociationIDs,
	})
}

// Patch applies a partial update (PATCH). Absent fields are left untouched.
func (s *Service) Patch(ctx context.Context, id uint, req PatchRecipeRequest) (*RecipeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "recipe", "patch", telemetry.SpanAttrRecipeID, id)
	defer span.End()

	return s.write(ctx, id, req)
}

// Delete removes the recipe. Its running job is cancelled and its file deleted
// by the handlers of the deletion event.
func (s *Service) Delete(ctx context.Context, id uint) error {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("recipe deleted", zap.Uint("recipe_id", id))
	r.MarkDeleted()
	s.publish(ctx, r)
	return nil
}

// OpenFile opens the attached PDF of a recipe. The caller closes the reader.
func (s *Service) OpenFile(ctx context.Context, id uint) (io.ReadCloser, string, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !r.HasFile() {
		return nil, "", shared.NewDomainError("NOT_FOUND", "Recipe has no attached file")
	}

	rc, err := s.storage.Get(ctx, r.FileKey)
	if err != nil {
		if errors.Is(err, infra.ErrFileNotFound) {
			s.logger.Warn("attached file missing from storage",
				zap.Uint("recipe_id", id), zap.String("file", r.FileKey))
			return nil, "", shared.NewDomainError("NOT_FOUND", "Attached file not found")
		}
		return nil, "", err
	}
	return rc, path.Base(r.FileKey), nil
}

// write loads the recipe, applies req and saves it. A version conflict, which
// happens when a PDF job completes in between, reloads and reapplies.
func (s *Service) write(ctx context.Context, id uint, req PatchRecipeRequest) (*RecipeResponse, error) {
	for attempt := 1; ; attempt++ {
		r, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		stale, err := s.apply(ctx, r, req)
		if err != nil {
			return nil, err
		}

		err = s.repo.Save(ctx, r)
		if errors.Is(err, shared.ErrConcurrencyConflict) && attempt < maxWriteAttempts {
			s.logger.Debug("recipe changed during write, retrying",
				zap.Uint("recipe_id", id), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("recipe updated", zap.Uint("recipe_id", r.ID))
		s.afterCommit(ctx, r, stale)

		resp := s.toResponse(ctx, r)
		return &resp, nil
	}
}

// apply changes r in memory and returns the key of a file the change detached
func (s *Service) apply(ctx context.Context, r *recipe.Recipe, req PatchRecipeRequest) (string, error) {
	if req.Name != nil {
		if err := r.Rename(*req.Name); err != nil {
			return "", err
		}
		if err := s.ensureUniqueName(ctx, r.Name, r.ID); err != nil {
			return "", err
		}
	}
	if req.Note != nil {
		r.SetNote(*req.Note)
	}

	var stale string
	if req.URL != nil && strings.TrimSpace(*req.URL) != "" {
		var err error
		if stale, err = r.RequestPDF(*req.URL); err != nil {
			return "", err
		}
	}

	return stale, s.resolveAssociations(ctx, r, req.AssociationIDs)
}

// resolveAssociations replaces each association set for which ids were supplied.
// Every unknown id is reported against the kind's ids field.
func (s *Service) resolveAssociations(ctx context.Context, r *recipe.Recipe, ids AssociationIDs) error {
	var verr *shared.ValidationError
	for _, kind := range taxonomy.AllKinds() {
		wanted := ids.ByKind(kind)
		if len(wanted) == 0 {
			continue
		}

		repo, ok := s.terms[kind]
		if !ok {
			return fmt.Errorf("no repository for %s", kind)
		}
		terms, err := repo.FindByIDs(ctx, wanted)
		if err != nil {
			return err
		}

		found := make(map[uint]taxonomy.Term, len(terms))
		for _, t := range terms {
			found[t.ID] = t
		}

		ordered := make([]taxonomy.Term, 0, len(wanted))
		for _, id := range wanted {
			t, ok := found[id]
			if !ok {
				msg := fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
				if verr == nil {
					verr = shared.NewValidationError(kind.IDsField(), msg)
				} else {
					verr.Add(kind.IDsField(), msg)
				}
				continue
			}
			if !slices.ContainsFunc(ordered, func(o taxonomy.Term) bool { return o.ID == id }) {
				ordered = append(ordered, t)
			}
		}
		r.ReplaceAssociations(kind, ordered)
	}

	if verr != nil {
		return verr
	}
	return nil
}

func (s *Service) ensureUniqueName(ctx context.Context, name string, excludeID uint) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return recipe.DuplicateNameError()
	}
	return nil
}

// afterCommit removes a detached file and publishes the recipe's events
func (s *Service) afterCommit(ctx context.Context, r *recipe.Recipe, staleKey string) {
	if staleKey != "" {
		if err := s.storage.Delete(ctx, staleKey); err != nil {
			s.logger.Warn("failed to delete replaced file",
				zap.Uint("recipe_id", r.ID), zap.String("file", staleKey), zap.Error(err))
		} else {
			s.logger.Info("deleted replaced file", zap.Uint("recipe_id", r.ID), zap.String("file", staleKey))
		}
	}
	s.publish(ctx, r)
}

// publish hands the recipe's events to the bus. A recipe whose request event
// was lost stays pending and is picked up by the recovery sweep.
func (s *Service) publish(ctx context.Context, r *recipe.Recipe) {
	events := r.ReleaseEvents()
	if len(events) == 0 || s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish recipe events",
			zap.Uint("recipe_id", r.ID), zap.Int("count", len(events)), zap.Error(err))
	}
}

func (s *Service) toResponse(ctx context.Context, r *recipe.Recipe) RecipeResponse {
	var fileURL *string
	if r.HasFile() {
		u, err := s.storage.GetURL(ctx, r.FileKey)
		if err != nil {
			s.logger.Warn("failed to resolve file url",
				zap.Uint("recipe_id", r.ID), zap.String("file", r.FileKey), zap.Error(err))
		} else {
			fileURL = &u
		}
	}
	return toRecipeResponse(r, fileURL)
}
