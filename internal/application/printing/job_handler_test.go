package printing

import (
	"context"
	"errors"
	"testing"

	"github.com/cookbook/api/internal/domain/recipe"
	"github.com/cookbook/api/internal/domain/shared"
	"github.com/cookbook/api/internal/infrastructure/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newHandler(t *testing.T) (*PDFJobHandler, *MockJobScheduler, *MockRecipeRepository, *MockPDFStorage) {
	t.Helper()
	sched := new(MockJobScheduler)
	repo := new(MockRecipeRepository)
	storage := new(MockPDFStorage)
	return NewPDFJobHandler(sched, repo, storage, zaptest.NewLogger(t)), sched, repo, storage
}

func TestPDFJobHandler_EventTypes(t *testing.T) {
	h, _, _, _ := newHandler(t)
	assert.ElementsMatch(t, []string{recipe.EventTypeRecipePDFRequested, recipe.EventTypeRecipeDeleted}, h.EventTypes())
}

func TestPDFJobHandler_SubmitsRequestedJob(t *testing.T) {
	h, sched, _, _ := newHandler(t)
	r := pendingRecipe(3, "http://example.com/pho")
	event := recipe.NewRecipePDFRequestedEvent(r)

	sched.On("Submit", mock.MatchedBy(func(job *scheduler.Job) bool {
		return job.RecipeID == 3 && job.ID == r.PDFJobID && job.URL == "http://example.com/pho"
	})).Return(nil)

	require.NoError(t, h.Handle(context.Background(), event))
	sched.AssertExpectations(t)
}

func TestPDFJobHandler_SubmitFailureIsReturned(t *testing.T) {
	h, sched, _, _ := newHandler(t)
	sched.On("Submit", mock.Anything).Return(scheduler.ErrQueueFull)

	err := h.Handle(context.Background(), recipe.NewRecipePDFRequestedEvent(pendingRecipe(3, "http://example.com")))
	assert.ErrorIs(t, err, scheduler.ErrQueueFull)
}

func TestPDFJobHandler_DeletedRecipe(t *testing.T) {
	t.Run("cancels jobs and deletes file", func(t *testing.T) {
		h, sched, _, storage := newHandler(t)
		r := pendingRecipe(3, "http://example.com")
		require.NoError(t, r.AttachPDF(r.PDFJobID, "recipe-3.pdf"))

		sched.On("Cancel", uint(3)).Return(true)
		storage.On("Delete", mock.Anything, "recipe-3.pdf").Return(nil)

		require.NoError(t, h.Handle(context.Background(), recipe.NewRecipeDeletedEvent(r)))
		sched.AssertExpectations(t)
		storage.AssertExpectations(t)
	})

	t.Run("without file only cancels", func(t *testing.T) {
		h, sched, _, storage := newHandler(t)
		sched.On("Cancel", uint(4)).Return(false)

		r := pendingRecipe(4, "http://example.com")
		require.NoError(t, h.Handle(context.Background(), recipe.NewRecipeDeletedEvent(r)))
		storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestPDFJobHandler_UnexpectedEvent(t *testing.T) {
	h, _, _, _ := newHandler(t)
	event := shared.NewBaseDomainEvent("recipe.renamed", recipe.AggregateTypeRecipe, 1)
	assert.Error(t, h.Handle(context.Background(), &event))
}

func TestPDFJobHandler_RecoverPending(t *testing.T) {
	t.Run("submits every pending recipe with its job id", func(t *testing.T) {
		h, sched, repo, _ := newHandler(t)
		a, b := pendingRecipe(1, "http://example.com/a"), pendingRecipe(2, "http://example.com/b")
		repo.On("FindPending", mock.Anything).Return([]recipe.Recipe{*a, *b}, nil)
		sched.On("Submit", mock.MatchedBy(func(job *scheduler.Job) bool { return job.ID == a.PDFJobID })).Return(nil)
		sched.On("Submit", mock.MatchedBy(func(job *scheduler.Job) bool { return job.ID == b.PDFJobID })).Return(nil)

		n, err := h.RecoverPending(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		sched.AssertExpectations(t)
	})

	t.Run("stops when the queue is full", func(t *testing.T) {
		h, sched, repo, _ := newHandler(t)
		repo.On("FindPending", mock.Anything).Return([]recipe.Recipe{
			*pendingRecipe(1, "http://example.com/a"),
			*pendingRecipe(2, "http://example.com/b"),
		}, nil)
		sched.On("Submit", mock.Anything).Return(nil).Once()
		sched.On("Submit", mock.Anything).Return(scheduler.ErrQueueFull).Once()

		n, err := h.RecoverPending(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("repository error", func(t *testing.T) {
		h, _, repo, _ := newHandler(t)
		repo.On("FindPending", mock.Anything).Return(nil, errors.New("db down"))

		_, err := h.RecoverPending(context.Background())
		assert.Error(t, err)
	})
}
