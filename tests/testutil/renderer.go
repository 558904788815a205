package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cookbook/api/internal/infrastructure/printing"
)

// MinimalPDF is a tiny document that passes printing.ValidatePDF
var MinimalPDF = []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\ntrailer << /Root 1 0 R >>\n%%EOF\n")

// StubRenderer is a printing.PDFRenderer that renders MinimalPDF without any
// browser. Renders of a URL registered with Block wait until Unblock or until
// their context ends. URLs registered with Fail return an error.
type StubRenderer struct {
	mu      sync.Mutex
	calls   []string
	gates   map[string]chan struct{}
	failing map[string]error
	delay   time.Duration
}

// NewStubRenderer creates a renderer that answers every URL at once.
func NewStubRenderer() *StubRenderer {
	return &StubRenderer{
		gates:   make(map[string]chan struct{}),
		failing: make(map[string]error),
	}
}

// Render records the URL and returns MinimalPDF.
func (r *StubRenderer) Render(ctx context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	r.mu.Lock()
	r.calls = append(r.calls, req.URL)
	gate := r.gates[req.URL]
	failure := r.failing[req.URL]
	delay := r.delay
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failure != nil {
		return nil, failure
	}
	return &printing.RenderResult{PDFData: MinimalPDF, PageCount: 1, RenderDuration: delay}, nil
}

// Close is a no-op.
func (r *StubRenderer) Close() error { return nil }

// Block makes renders of url wait until Unblock.
func (r *StubRenderer) Block(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gates[url] = make(chan struct{})
}

// Unblock releases renders of url waiting on Block.
func (r *StubRenderer) Unblock(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gate, ok := r.gates[url]; ok {
		close(gate)
		delete(r.gates, url)
	}
}

// Fail makes renders of url fail with a page load error.
func (r *StubRenderer) Fail(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing[url] = fmt.Errorf("failed to load %s: connection refused", url)
}

// SetDelay adds a fixed latency to every render.
func (r *StubRenderer) SetDelay(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delay = d
}

// Calls returns the URLs rendered so far, in order.
func (r *StubRenderer) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// CallCount returns how many renders were started for url.
func (r *StubRenderer) CallCount(url string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == url {
			n++
		}
	}
	return n
}

var _ printing.PDFRenderer = (*StubRenderer)(nil)
