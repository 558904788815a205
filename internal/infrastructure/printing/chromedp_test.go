package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, defaultTimeout, r.config.DefaultTimeout)
	assert.Equal(t, defaultZoom, r.config.Zoom)
	assert.NotNil(t, r.allocCtx)
}

func TestNewChromedpRenderer_Remote(t *testing.T) {
	r, err := NewChromedpRenderer(&ChromedpConfig{
		RemoteURL:      "ws://127.0.0.1:9222/devtools/browser/test",
		DefaultTimeout: 5 * time.Second,
		Zoom:           0.8,
	})
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 5*time.Second, r.config.DefaultTimeout)
	assert.Equal(t, 0.8, r.config.Zoom)
}

func TestChromedpRenderer_RejectsInvalidURL(t *testing.T) {
	r, err := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Render(context.Background(), &RenderRequest{URL: "javascript:alert(1)"})
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidURL, renderErr.Code)

	_, err = r.Render(context.Background(), nil)
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, ErrCodeInvalidURL, renderErr.Code)
}
