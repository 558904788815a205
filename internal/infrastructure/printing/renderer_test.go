package printing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := NewRenderError(ErrCodeRenderFailed, "wkhtmltopdf execution failed", cause)

	assert.Equal(t, "wkhtmltopdf execution failed: exit status 1", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewRenderError(ErrCodeInvalidOutput, "renderer produced an empty file", nil)
	assert.Equal(t, "renderer produced an empty file", bare.Error())
}

func TestValidatePDF(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"valid header", []byte("%PDF-1.4\n%âãÏÓ\n"), false},
		{"empty", nil, true},
		{"html error page", []byte("<html>502 Bad Gateway</html>"), true},
		{"truncated magic", []byte("%PD"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePDF(tt.data)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var renderErr *RenderError
			assert.True(t, errors.As(err, &renderErr))
			assert.Equal(t, ErrCodeInvalidOutput, renderErr.Code)
		})
	}
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, IsCancelled(NewRenderError(ErrCodeRenderCancelled, "cancelled", nil)))
	assert.True(t, IsCancelled(fmt.Errorf("wrapped: %w", context.Canceled)))
	assert.False(t, IsCancelled(NewRenderError(ErrCodeRenderTimeout, "timed out", nil)))
	assert.False(t, IsCancelled(errors.New("boom")))
}

func TestContextError(t *testing.T) {
	expired, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-expired.Done()
	assert.Equal(t, ErrCodeRenderTimeout, contextError(expired, time.Second, nil).Code)

	cancelled, cancel2 := context.WithCancel(context.Background())
	cancel2()
	assert.Equal(t, ErrCodeRenderCancelled, contextError(cancelled, time.Second, nil).Code)
}

func TestEstimatePageCount(t *testing.T) {
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF-1.4")))
	assert.Equal(t, 2, estimatePageCount([]byte("/Type /Pages /Type /Page /Type /Page")))
	assert.Equal(t, 3, estimatePageCount([]byte("/Type/Pages/Type/Page/Type/Page/Type/Page")))
}
