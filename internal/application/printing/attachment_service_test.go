package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cookbook/api/internal/domain/recipe"
	"github.com/cookbook/api/internal/domain/shared"
	"github.com/cookbook/api/internal/infrastructure/cache"
	infra "github.com/cookbook/api/internal/infrastructure/printing"
	"github.com/cookbook/api/internal/infrastructure/scheduler"
	"github.com/cookbook/api/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

var samplePDF = []byte("%PDF-1.4\n%%EOF")

type attachmentFixture struct {
	repo     *MockRecipeRepository
	renderer *MockPDFRenderer
	storage  *MockPDFStorage
	lease    *cache.InMemoryLease
	reader   *metric.ManualReader
	svc      *PDFAttachmentService
}

func newAttachmentFixture(t *testing.T) *attachmentFixture {
	t.Helper()
	f := &attachmentFixture{
		repo:     new(MockRecipeRepository),
		renderer: new(MockPDFRenderer),
		storage:  new(MockPDFStorage),
		lease:    cache.NewInMemoryLease(),
		reader:   metric.NewManualReader(),
	}
	t.Cleanup(func() { _ = f.lease.Close() })

	provider := metric.NewMeterProvider(metric.WithReader(f.reader))
	metrics, err := telemetry.NewPDFMetrics(provider.Meter("test"), nil)
	require.NoError(t, err)

	f.svc = NewPDFAttachmentService(f.repo, f.renderer, f.storage, f.lease, metrics,
		AttachmentConfig{LeaseTTL: time.Minute, LeasePoll: time.Millisecond, Zoom: 1.0},
		zaptest.NewLogger(t))
	return f
}

// jobCount returns how many jobs were recorded with outcome
func (f *attachmentFixture) jobCount(t *testing.T, outcome string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "cookbook.pdf.jobs" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				if v, ok := dp.Attributes.Value(telemetry.AttrOutcome); ok && v.AsString() == outcome {
					return dp.Value
				}
			}
		}
	}
	return 0
}

func pendingRecipe(id uint, url string) *recipe.Recipe {
	r, _ := recipe.NewRecipe("Pho")
	r.ID = id
	_, _ = r.RequestPDF(url)
	r.ReleaseEvents()
	return r
}

func jobFor(r *recipe.Recipe) *scheduler.Job {
	return scheduler.NewJob(r.ID, r.PDFJobID, r.URL)
}

func TestExecute_AttachesRenderedPDF(t *testing.T) {
	f := newAttachmentFixture(t)
	r := pendingRecipe(5, "http://example.com/pho")

	f.repo.On("FindByID", mock.Anything, uint(5)).Return(r, nil)
	f.renderer.On("Render", mock.Anything, &infra.RenderRequest{URL: "http://example.com/pho", Zoom: 1.0}).
		Return(&infra.RenderResult{PDFData: samplePDF, PageCount: 1}, nil)
	f.storage.On("Store", mock.Anything, &infra.StoreRequest{Key: "recipe-5.pdf", PDFData: samplePDF}).
		Return(&infra.StoreResult{Key: "recipe-5.pdf"}, nil)
	f.repo.On("CompletePDFJob", mock.Anything, uint(5), r.PDFJobID, recipe.Succeeded("recipe-5.pdf")).
		Return(true, nil)

	require.NoError(t, f.svc.Execute(context.Background(), jobFor(r)))

	f.repo.AssertExpectations(t)
	f.storage.AssertExpectations(t)
	assert.Equal(t, int64(1), f.jobCount(t, telemetry.OutcomeSucceeded))

	ok, err := f.lease.Acquire(context.Background(), LeaseKey(5), "other", time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "lease is released after the job")
}

func TestExecute_SupersededBeforeRender(t *testing.T) {
	f := newAttachmentFixture(t)
	r := pendingRecipe(5, "http://example.com/a")
	job := jobFor(r)
	_, _ = r.RequestPDF("http://example.com/b")

	f.repo.On("FindByID", mock.Anything, uint(5)).Return(r, nil)

	require.NoError(t, f.svc.Execute(context.Background(), job))
	f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "CompletePDFJob", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, int64(1), f.jobCount(t, telemetry.OutcomeSuperseded))
}

func TestExecute_RecipeDeleted(t *testing.T) {
	f := newAttachmentFixture(t)
	job := scheduler.NewJob(5, uuid.New(), "http://example.com")
	f.repo.On("FindByID", mock.Anything, uint(5)).Return(nil, shared.ErrNotFound)

	require.NoError(t, f.svc.Execute(context.Background(), job))
	f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestExecute_RenderFailureMarksRecipeFailed(t *testing.T) {
	f := newAttachmentFixture(t)
	r := pendingRecipe(5, "http://example.com")
	renderErr := infra.NewRenderError(infra.ErrCodeRenderFailed, "wkhtmltopdf exited with status 1", nil)

	f.repo.On("FindByID", mock.Anything, uint(5)).Return(r, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(nil, renderErr)
	f.repo.On("CompletePDFJob", mock.Anything, uint(5), r.PDFJobID, recipe.Failed(renderErr.Error())).Return(true, nil)

	err := f.svc.Execute(context.Background(), jobFor(r))
	assert.ErrorIs(t, err, renderErr)
	f.repo.AssertExpectations(t)
	f.storage.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
	assert.Equal(t, int64(1), f.jobCount(t, telemetry.OutcomeFailed))
}

func TestExecute_InvalidOutputMarksRecipeFailed(t *testing.T) {
	f := newAttachmentFixture(t)
	r := pendingRecipe(5, "http://example.com")

	f.repo.On("FindByID", mock.Anything, uint(5)).Return(r, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(&infra.RenderResult{PDFData: []byte("<html>")}, nil)
	f.repo.On("CompletePDFJob", mock.Anything, uint(5), r.PDFJobID, mock.MatchedBy(func(o recipe.PDFOutcome) bool {
		return o.Status == recipe.PDFStatusFailed && o.Error != ""
	})).Return(true, nil)

	require.Error(t, f.svc.Execute(context.Background(), jobFor(r)))
	f.repo.AssertExpectations(t)
}

func TestExecute_StorageFailureMarksRecipeFailed(t *testing.T) {
	f := newAttachmentFixture(t)
	r := pendingRecipe(5, "http://example.com")

	f.repo.On("FindByID", mock.Anything, uint(5)).Return(r, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(&infra.RenderResult{PDFData: samplePDF}, nil)
	f.storage.On("Store", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))
	f.repo.On("CompletePDFJob", mock.Anything, uint(5), r.PDFJobID, mock.MatchedBy(func(o recipe.PDFOutcome) bool {
		return o.Status == recipe.PDFStatusFailed
	})).Return(true, nil)

	err := f.svc.Execute(context.Background(), jobFor(r))
	var renderErr *infra.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, infra.ErrCodeStorageFailed, renderErr.Code)
}

func TestExecute_CancelledRenderLeavesRecipePending(t *testing.T) {
	f := newAttachmentFixture(t)
	r := pendingRecipe(5, "http://example.com")
	ctx, cancel := context.WithCancel(context.Background())

	f.repo.On("FindByID", mock.Anything, uint(5)).Return(r, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Run(func(mock.Arguments) { cancel() }).
		Return(nil, infra.NewRenderError(infra.ErrCodeRenderCancelled, "render cancelled", context.Canceled))

	err := f.svc.Execute(ctx, jobFor(r))
	assert.True(t, infra.IsCancelled(err))
	f.repo.AssertNotCalled(t, "CompletePDFJob", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, int64(1), f.jobCount(t, telemetry.OutcomeCancelled))
}

func TestExecute_StaleResultIsDiscarded(t *testing.T) {
	f := newAttachmentFixture(t)
	r := pendingRecipe(5, "http://example.com/a")
	job := jobFor(r)

	newer := pendingRecipe(5, "http://example.com/b")
	f.repo.On("FindByID", mock.Anything, uint(5)).Return(r, nil).Once()
	f.repo.On("FindByID", mock.Anything, uint(5)).Return(newer, nil).Once()
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(&infra.RenderResult{PDFData: samplePDF}, nil)
	f.storage.On("Store", mock.Anything, mock.Anything).Return(&infra.StoreResult{Key: "recipe-5.pdf"}, nil)
	f.repo.On("CompletePDFJob", mock.Anything, uint(5), job.ID, recipe.Succeeded("recipe-5.pdf")).Return(false, nil)
	f.storage.On("Delete", mock.Anything, "recipe-5.pdf").Return(nil)

	require.NoError(t, f.svc.Execute(context.Background(), job))
	f.storage.AssertCalled(t, "Delete", mock.Anything, "recipe-5.pdf")
	assert.Equal(t, int64(1), f.jobCount(t, telemetry.OutcomeSuperseded))
}

func TestExecute_StaleResultKeepsFileOwnedByNewerJob(t *testing.T) {
	f := newAttachmentFixture(t)
	r := pendingRecipe(5, "http://example.com/a")
	job := jobFor(r)

	newer := pendingRecipe(5, "http://example.com/b")
	require.NoError(t, newer.AttachPDF(newer.PDFJobID, "recipe-5.pdf"))
	f.repo.On("FindByID", mock.Anything, uint(5)).Return(r, nil).Once()
	f.repo.On("FindByID", mock.Anything, uint(5)).Return(newer, nil).Once()
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(&infra.RenderResult{PDFData: samplePDF}, nil)
	f.storage.On("Store", mock.Anything, mock.Anything).Return(&infra.StoreResult{Key: "recipe-5.pdf"}, nil)
	f.repo.On("CompletePDFJob", mock.Anything, uint(5), job.ID, mock.Anything).Return(false, nil)

	require.NoError(t, f.svc.Execute(context.Background(), job))
	f.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestExecute_PanicIsRecordedAsFailure(t *testing.T) {
	f := newAttachmentFixture(t)
	r := pendingRecipe(5, "http://example.com")

	f.repo.On("FindByID", mock.Anything, uint(5)).Return(r, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Run(func(mock.Arguments) { panic("boom") })
	f.repo.On("CompletePDFJob", mock.Anything, uint(5), r.PDFJobID, mock.MatchedBy(func(o recipe.PDFOutcome) bool {
		return o.Status == recipe.PDFStatusFailed
	})).Return(true, nil)

	err := f.svc.Execute(context.Background(), jobFor(r))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	f.repo.AssertExpectations(t)
}

func TestExecute_WaitsForLease(t *testing.T) {
	f := newAttachmentFixture(t)
	r := pendingRecipe(5, "http://example.com")

	ok, err := f.lease.Acquire(context.Background(), LeaseKey(5), "another-instance", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	f.repo.On("CompletePDFJob", mock.Anything, uint(5), r.PDFJobID, mock.Anything).Return(true, nil)

	err = f.svc.Execute(ctx, jobFor(r))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	f.repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.repo.AssertCalled(t, "CompletePDFJob", mock.Anything, uint(5), r.PDFJobID, mock.Anything)
}
