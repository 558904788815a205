package recipe_test

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/cookbook/api/internal/domain/recipe"
	"github.com/cookbook/api/internal/domain/shared"
	"github.com/cookbook/api/internal/domain/taxonomy"
	infra "github.com/cookbook/api/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) FindByID(ctx context.Context, id uint) (*recipe.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recipe.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]recipe.Recipe, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recipe.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) FindPending(ctx context.Context) ([]recipe.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recipe.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecipeRepository) Save(ctx context.Context, r *recipe.Recipe) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecipeRepository) CompletePDFJob(ctx context.Context, id uint, jobID uuid.UUID, outcome recipe.PDFOutcome) (bool, error) {
	args := m.Called(ctx, id, jobID, outcome)
	return args.Bool(0), args.Error(1)
}

type MockTermRepository struct {
	mock.Mock
	kind taxonomy.Kind
}

func (m *MockTermRepository) Kind() taxonomy.Kind { return m.kind }

func (m *MockTermRepository) FindByID(ctx context.Context, id uint) (*taxonomy.Term, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomy.Term), args.Error(1)
}

func (m *MockTermRepository) FindAll(ctx context.Context, filter shared.Filter) ([]taxonomy.Term, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]taxonomy.Term), args.Error(1)
}

func (m *MockTermRepository) FindByIDs(ctx context.Context, ids []uint) ([]taxonomy.Term, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]taxonomy.Term), args.Error(1)
}

func (m *MockTermRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTermRepository) Save(ctx context.Context, term *taxonomy.Term) error {
	return m.Called(ctx, term).Error(0)
}

func (m *MockTermRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type MockPDFStorage struct {
	mock.Mock
}

func (m *MockPDFStorage) Store(ctx context.Context, req *infra.StoreRequest) (*infra.StoreResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.StoreResult), args.Error(1)
}

func (m *MockPDFStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return io.NopCloser(bytes.NewReader(args.Get(0).([]byte))), args.Error(1)
}

func (m *MockPDFStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockPDFStorage) GetURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// recordingPublisher keeps published events in order
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) published() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]shared.DomainEvent(nil), p.events...)
}
