// Package taxonomy implements the use cases of the cuisine, diet, ingredient
// and occasion collections. One Service serves one kind.
package taxonomy

import (
	"context"

	"github.com/cookbook/api/internal/domain/shared"
	"github.com/cookbook/api/internal/domain/taxonomy"
	"github.com/cookbook/api/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service handles the operations of a single taxonomy kind
type Service struct {
	repo   taxonomy.TermRepository
	logger *zap.Logger
}

// NewService creates a Service over the repository of one kind
func NewService(repo taxonomy.TermRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger.With(zap.String("kind", string(repo.Kind())))}
}

// NewServices creates one Service per repository, keyed by kind
func NewServices[R taxonomy.TermRepository](repos map[taxonomy.Kind]R, logger *zap.Logger) map[taxonomy.Kind]*Service {
	services := make(map[taxonomy.Kind]*Service, len(repos))
	for kind, repo := range repos {
		services[kind] = NewService(repo, logger)
	}
	return services
}

// Kind returns the kind this service manages
func (s *Service) Kind() taxonomy.Kind {
	return s.repo.Kind()
}

// List returns every term ordered by name
func (s *Service) List(ctx context.Context) ([]TermResponse, error) {
	terms, err := s.repo.FindAll(ctx, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	return ToTermResponses(terms), nil
}

// GetByID returns a single term
func (s *Service) GetByID(ctx context.Context, id uint) (*TermResponse, error) {
	term, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTermResponse(term)
	return &resp, nil
}

// Create adds a term with a unique name
func (s *Service) Create(ctx context.Context, req CreateTermRequest) (*TermResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, string(s.Kind()), "create")
	defer span.End()

	term, err := taxonomy.NewTerm(s.Kind(), req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, term.Name, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, term); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("term created", zap.Uint("id", term.ID), zap.String("name", term.Name))
	resp := ToTermResponse(term)
	return &resp, nil
}

// Update replaces the term's name (PUT)
func (s *Service) Update(ctx context.Context, id uint, req CreateTermRequest) (*TermResponse, error) {
	return s.rename(ctx, id, &req.Name)
}

// Patch changes the name only when one is supplied
func (s *Service) Patch(ctx context.Context, id uint, req PatchTermRequest) (*TermResponse, error) {
	return s.rename(ctx, id, req.Name)
}

// Delete removes the term and its recipe links
func (s *Service) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("term deleted", zap.Uint("id", id))
	return nil
}

func (s *Service) rename(ctx context.Context, id uint, name *string) (*TermResponse, error) {
	term, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		if err := term.Rename(*name); err != nil {
			return nil, err
		}
		if err := s.ensureUniqueName(ctx, term.Name, term.ID); err != nil {
			return nil, err
		}
		if err := s.repo.Save(ctx, term); err != nil {
			return nil, err
		}
	}

	resp := ToTermResponse(term)
	return &resp, nil
}

func (s *Service) ensureUniqueName(ctx context.Context, name string, excludeID uint) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return taxonomy.DuplicateNameError(s.Kind())
	}
	return nil
}
