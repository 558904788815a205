// Package printing provides the infrastructure of the recipe PDF job:
// renderers that turn a URL into a PDF and the storage attached files live in.
//
// This package contains:
// - PDFRenderer interface for rendering a URL to PDF
// - WkhtmltopdfRenderer running wkhtmltopdf, optionally under xvfb-run
// - ChromedpRenderer printing through the Chrome DevTools Protocol
// - PDFStorage interface and the FileSystemStorage media-root implementation
//
// Example usage:
//
//	renderer, err := NewWkhtmltopdfRenderer(&WkhtmltopdfConfig{
//	    UseXvfb:        true,
//	    DefaultTimeout: time.Minute,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := renderer.Render(ctx, &RenderRequest{URL: "https://example.com/pho"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Generated PDF: %d bytes\n", len(result.PDFData))
package printing
