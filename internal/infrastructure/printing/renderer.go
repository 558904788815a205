package printing

import (
	"bytes"
	"context"
	"errors"
	"time"
)

// RenderRequest describes a page to convert to PDF
type RenderRequest struct {
	// URL is the absolute http(s) address of the page
	URL string
	// Zoom overrides the renderer's configured zoom when non-zero
	Zoom float64
	// Timeout overrides the renderer's default timeout when non-zero
	Timeout time.Duration
}

// RenderResult contains the rendered PDF
type RenderResult struct {
	// PDFData is the raw PDF content
	PDFData []byte
	// PageCount is an estimate of the number of pages
	PageCount int
	// RenderDuration is the time spent rendering
	RenderDuration time.Duration
	// Warning carries diagnostics for output accepted despite a renderer error
	Warning string
}

// PDFRenderer converts a URL to PDF
type PDFRenderer interface {
	// Render fetches the page at req.URL and returns it as PDF.
	// Cancelling ctx aborts the render and kills any child process.
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases resources held by the renderer
	Close() error
}

// RenderError represents an error during PDF rendering or storage
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering and storage
const (
	ErrCodeRenderTimeout   = "RENDER_TIMEOUT"
	ErrCodeRenderCancelled = "RENDER_CANCELLED"
	ErrCodeRenderFailed    = "RENDER_FAILED"
	ErrCodeInvalidURL      = "INVALID_URL"
	ErrCodeInvalidOutput   = "INVALID_OUTPUT"
	ErrCodeBinaryNotFound  = "BINARY_NOT_FOUND"
	ErrCodeStorageFailed   = "STORAGE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsCancelled reports whether err is a render aborted by its caller rather than a failure
func IsCancelled(err error) bool {
	var renderErr *RenderError
	if errors.As(err, &renderErr) && renderErr.Code == ErrCodeRenderCancelled {
		return true
	}
	return errors.Is(err, context.Canceled)
}

var pdfMagic = []byte("%PDF-")

// ValidatePDF checks that data looks like a PDF document
func ValidatePDF(data []byte) error {
	if len(data) == 0 {
		return NewRenderError(ErrCodeInvalidOutput, "renderer produced an empty file", nil)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return NewRenderError(ErrCodeInvalidOutput, "renderer output is not a PDF document", nil)
	}
	return nil
}

// estimatePageCount counts page objects in the PDF body
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page")) - bytes.Count(pdfData, []byte("/Type /Pages"))
	if count < 1 {
		count = bytes.Count(pdfData, []byte("/Type/Page")) - bytes.Count(pdfData, []byte("/Type/Pages"))
	}
	if count < 1 {
		return 1
	}
	return count
}

// contextError translates a finished context into the matching render error
func contextError(ctx context.Context, timeout time.Duration, cause error) *RenderError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewRenderError(ErrCodeRenderTimeout, "PDF rendering timed out after "+timeout.String(), cause)
	}
	return NewRenderError(ErrCodeRenderCancelled, "PDF rendering was cancelled", cause)
}
