package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cookbook/api/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ChromedpConfig configures the headless Chrome renderer
type ChromedpConfig struct {
	DefaultTimeout time.Duration
	// RemoteURL is the DevTools websocket of a running Chrome.
	// Empty launches a local browser.
	RemoteURL string
	// NoSandbox is needed when Chrome runs as root inside a container
	NoSandbox bool
	// Zoom is passed to Chrome as the print scale
	Zoom   float64
	Logger *zap.Logger
}

// ChromedpRenderer prints recipe pages through the Chrome DevTools Protocol.
// Every render opens its own tab on a shared browser allocator.
type ChromedpRenderer struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer prepares the allocator. The browser itself starts
// lazily with the first render.
func NewChromedpRenderer(config *ChromedpConfig) (*ChromedpRenderer, error) {
	cfg := ChromedpConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = defaultTimeout
	}
	if cfg.Zoom <= 0 {
		cfg.Zoom = defaultZoom
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := &ChromedpRenderer{config: &cfg, logger: cfg.Logger.Named("chromedp")}
	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
	} else {
		r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), execOptions(cfg.NoSandbox)...)
	}
	return r, nil
}

func execOptions(noSandbox bool) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for _, flag := range []string{
		"disable-gpu",
		"disable-extensions",
		"disable-dev-shm-usage",
		"disable-background-networking",
		"disable-sync",
	} {
		opts = append(opts, chromedp.Flag(flag, true))
	}
	if noSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// Render loads req.URL in a fresh tab and prints it with backgrounds
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validateRenderRequest(req); err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.config.DefaultTimeout
	}
	scale := req.Zoom
	if scale <= 0 {
		scale = r.config.Zoom
	}

	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	log := logger.FromContext(ctx, r.logger).With(zap.String("url", req.URL))

	pdf, err := r.printTab(ctx, req.URL, scale, log)
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextError(ctx, timeout, err)
		}
		log.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}
	if err := ValidatePDF(pdf); err != nil {
		return nil, err
	}

	result := &RenderResult{
		PDFData:        pdf,
		PageCount:      estimatePageCount(pdf),
		RenderDuration: time.Since(started),
	}
	log.Info("PDF rendered",
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))
	return result, nil
}

// printTab runs the navigation in a tab derived from the allocator. The tab
// does not inherit ctx, so its cancellation is forwarded with AfterFunc.
func (r *ChromedpRenderer) printTab(ctx context.Context, url string, scale float64, log *zap.Logger) ([]byte, error) {
	tab, closeTab := chromedp.NewContext(r.allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...))
	}))
	defer closeTab()
	defer context.AfterFunc(ctx, closeTab)()

	var pdf []byte
	err := chromedp.Run(tab,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) (err error) {
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).WithScale(scale).Do(ctx)
			return err
		}),
	)
	return pdf, err
}

// Close stops the allocator and any browser it started
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
