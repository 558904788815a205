package handler

import (
	"context"
	"io"

	recipeapp "github.com/cookbook/api/internal/application/recipe"
	taxonomyapp "github.com/cookbook/api/internal/application/taxonomy"
	"github.com/cookbook/api/internal/domain/taxonomy"
	"github.com/stretchr/testify/mock"
)

// MockTermService implements TermService for testing
type MockTermService struct {
	mock.Mock
	kind taxonomy.Kind
}

func (m *MockTermService) Kind() taxonomy.Kind { return m.kind }

func (m *MockTermService) List(ctx context.Context) ([]taxonomyapp.TermResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]taxonomyapp.TermResponse), args.Error(1)
}

func (m *MockTermService) GetByID(ctx context.Context, id uint) (*taxonomyapp.TermResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomyapp.TermResponse), args.Error(1)
}

func (m *MockTermService) Create(ctx context.Context, req taxonomyapp.CreateTermRequest) (*taxonomyapp.TermResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomyapp.TermResponse), args.Error(1)
}

func (m *MockTermService) Update(ctx context.Context, id uint, req taxonomyapp.CreateTermRequest) (*taxonomyapp.TermResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomyapp.TermResponse), args.Error(1)
}

func (m *MockTermService) Patch(ctx context.Context, id uint, req taxonomyapp.PatchTermRequest) (*taxonomyapp.TermResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxonomyapp.TermResponse), args.Error(1)
}

func (m *MockTermService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

// MockRecipeService implements RecipeService for testing
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) List(ctx context.Context) ([]recipeapp.RecipeResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]recipeapp.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) GetByID(ctx context.Context, id uint) (*recipeapp.RecipeResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recipeapp.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Create(ctx context.Context, req recipeapp.CreateRecipeRequest) (*recipeapp.RecipeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recipeapp.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, id uint, req recipeapp.CreateRecipeRequest) (*recipeapp.RecipeResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recipeapp.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Patch(ctx context.Context, id uint, req recipeapp.PatchRecipeRequest) (*recipeapp.RecipeResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recipeapp.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecipeService) OpenFile(ctx context.Context, id uint) (io.ReadCloser, string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.String(1), args.Error(2)
}
