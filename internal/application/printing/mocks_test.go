package printing

import (
	"context"
	"io"

	"github.com/cookbook/api/internal/domain/recipe"
	"github.com/cookbook/api/internal/domain/shared"
	infra "github.com/cookbook/api/internal/infrastructure/printing"
	"github.com/cookbook/api/internal/infrastructure/scheduler"
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
	return m.Called(ctx, r).Error(0)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecipeRepository) CompletePDFJob(ctx context.Context, id uint, jobID uuid.UUID, outcome recipe.PDFOutcome) (bool, error) {
	args := m.Called(ctx, id, jobID, outcome)
	return args.Bool(0), args.Error(1)
}

type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req *infra.RenderRequest) (*infra.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.RenderResult), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	return m.Called().Error(0)
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
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockPDFStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockPDFStorage) GetURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

type MockJobScheduler struct {
	mock.Mock
}

func (m *MockJobScheduler) Submit(job *scheduler.Job) error {
	return m.Called(job).Error(0)
}

func (m *MockJobScheduler) Cancel(recipeID uint) bool {
	return m.Called(recipeID).Bool(0)
}
