package printing

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cookbook/api/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	defaultBinaryPath        = "wkhtmltopdf"
	defaultXvfbPath          = "xvfb-run"
	defaultXvfbScreen        = "640x480x16"
	defaultTimeout           = 60 * time.Second
	defaultZoom              = 1.0
	defaultLoadErrorHandling = "ignore"

	// stderrLimit bounds the renderer diagnostics kept in error messages
	stderrLimit = 2048
	// killGrace is how long Wait keeps reading pipes after the process group is killed
	killGrace = 5 * time.Second
)

// WkhtmltopdfConfig contains configuration for the wkhtmltopdf renderer
type WkhtmltopdfConfig struct {
	// BinaryPath is the path to the wkhtmltopdf binary. If empty, PATH is searched.
	BinaryPath string
	// UseXvfb wraps the renderer in xvfb-run so it gets a virtual display
	UseXvfb bool
	// XvfbPath is the path to xvfb-run
	XvfbPath string
	// XvfbScreen is the virtual screen geometry, e.g. 640x480x16
	XvfbScreen string
	// Zoom is passed as --zoom
	Zoom float64
	// LoadErrorHandling is passed as --load-error-handling (abort, ignore, skip)
	LoadErrorHandling string
	// DefaultTimeout bounds every render
	DefaultTimeout time.Duration
	// TempDir for the intermediate output file
	TempDir string
	// Logger for debug output
	Logger *zap.Logger
}

// WkhtmltopdfRenderer renders a URL to PDF with the wkhtmltopdf command-line tool
type WkhtmltopdfRenderer struct {
	config *WkhtmltopdfConfig
	logger *zap.Logger
}

// NewWkhtmltopdfRenderer creates a renderer after checking that its binaries exist
func NewWkhtmltopdfRenderer(config *WkhtmltopdfConfig) (*WkhtmltopdfRenderer, error) {
	config = withWkhtmltopdfDefaults(config)

	binaryPath, err := resolveBinaryPath(config.BinaryPath)
	if err != nil {
		return nil, NewRenderError(ErrCodeBinaryNotFound,
			fmt.Sprintf("wkhtmltopdf binary not found: %s", config.BinaryPath), err)
	}
	config.BinaryPath = binaryPath

	if config.UseXvfb {
		xvfbPath, err := resolveBinaryPath(config.XvfbPath)
		if err != nil {
			return nil, NewRenderError(ErrCodeBinaryNotFound,
				fmt.Sprintf("xvfb-run binary not found: %s", config.XvfbPath), err)
		}
		config.XvfbPath = xvfbPath
	}

	return &WkhtmltopdfRenderer{
		config: config,
		logger: config.Logger,
	}, nil
}

func withWkhtmltopdfDefaults(config *WkhtmltopdfConfig) *WkhtmltopdfConfig {
	if config == nil {
		config = &WkhtmltopdfConfig{}
	}
	if config.BinaryPath == "" {
		config.BinaryPath = defaultBinaryPath
	}
	if config.XvfbPath == "" {
		config.XvfbPath = defaultXvfbPath
	}
	if config.XvfbScreen == "" {
		config.XvfbScreen = defaultXvfbScreen
	}
	if config.Zoom <= 0 {
		config.Zoom = defaultZoom
	}
	if config.LoadErrorHandling == "" {
		config.LoadErrorHandling = defaultLoadErrorHandling
	}
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = defaultTimeout
	}
	if config.TempDir == "" {
		config.TempDir = os.TempDir()
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return config
}

// resolveBinaryPath finds the full path to the binary
func resolveBinaryPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}
	return exec.LookPath(path)
}

// Render runs the renderer against req.URL and reads back its output file.
// The child runs in its own process group, which is killed as a whole on
// timeout or cancellation so xvfb-run leaves no orphans behind.
func (r *WkhtmltopdfRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validateRenderRequest(req); err != nil {
		return nil, err
	}

	startTime := time.Now()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.config.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	log := logger.FromContext(ctx, r.logger)

	outFile, err := os.CreateTemp(r.config.TempDir, "recipe-*.pdf")
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to create temp PDF file", err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	name, args := r.command(req, outPath)

	log.Debug("executing wkhtmltopdf",
		zap.String("binary", name),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, name, args...)
	configureProcessGroup(cmd)
	cmd.WaitDelay = killGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil && ctx.Err() != nil {
		return nil, contextError(ctx, timeout, runErr)
	}

	pdfData, readErr := os.ReadFile(outPath)
	if readErr != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to read generated PDF", readErr)
	}
	invalid := ValidatePDF(pdfData)

	var warning string
	if runErr != nil {
		if invalid != nil {
			log.Error("wkhtmltopdf failed",
				zap.Error(runErr),
				zap.String("stderr", tail(stderr.String(), stderrLimit)),
				zap.String("stdout", tail(stdout.String(), stderrLimit)))
			return nil, NewRenderError(ErrCodeRenderFailed,
				"wkhtmltopdf execution failed: "+tail(strings.TrimSpace(stderr.String()), stderrLimit), runErr)
		}
		// wkhtmltopdf exits non-zero on page load errors it was told to ignore
		warning = fmt.Sprintf("%v: %s", runErr, tail(strings.TrimSpace(stderr.String()), stderrLimit))
		log.Warn("wkhtmltopdf exited with an error but produced a PDF",
			zap.String("url", req.URL),
			zap.String("warning", warning))
	} else if invalid != nil {
		return nil, invalid
	}

	pageCount := estimatePageCount(pdfData)
	renderDuration := time.Since(startTime)

	log.Info("PDF rendered successfully",
		zap.String("url", req.URL),
		zap.Int("bytes", len(pdfData)),
		zap.Int("pages", pageCount),
		zap.Duration("duration", renderDuration))

	return &RenderResult{
		PDFData:        pdfData,
		PageCount:      pageCount,
		RenderDuration: renderDuration,
		Warning:        warning,
	}, nil
}

// command returns the program and argv for one render. No shell is involved,
// so the URL is passed as a single argument whatever it contains.
func (r *WkhtmltopdfRenderer) command(req *RenderRequest, outPath string) (string, []string) {
	zoom := req.Zoom
	if zoom <= 0 {
		zoom = r.config.Zoom
	}

	args := []string{
		"--zoom", strconv.FormatFloat(zoom, 'f', -1, 64),
		"--load-error-handling", r.config.LoadErrorHandling,
		req.URL,
		outPath,
	}
	if !r.config.UseXvfb {
		return r.config.BinaryPath, args
	}

	wrapped := append([]string{
		"-a",
		"-s", "-screen 0 " + r.config.XvfbScreen,
		r.config.BinaryPath,
	}, args...)
	return r.config.XvfbPath, wrapped
}

// Close releases resources held by the renderer
func (r *WkhtmltopdfRenderer) Close() error {
	return nil
}

func validateRenderRequest(req *RenderRequest) error {
	if req == nil {
		return NewRenderError(ErrCodeInvalidURL, "render request is nil", nil)
	}
	u, err := url.ParseRequestURI(strings.TrimSpace(req.URL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return NewRenderError(ErrCodeInvalidURL, "URL must be an absolute http or https address", err)
	}
	return nil
}

// tail keeps the last n bytes of s
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

var _ PDFRenderer = (*WkhtmltopdfRenderer)(nil)
