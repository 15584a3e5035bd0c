package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fyerfyer/treaty-aligner/internal/alignment"
	"github.com/fyerfyer/treaty-aligner/internal/document"
	"github.com/fyerfyer/treaty-aligner/internal/llm"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "unsupported format",
			err:  &document.ExtractionError{Kind: document.ErrUnsupportedFormat, Path: "a.jtd"},
			want: http.StatusUnsupportedMediaType,
		},
		{
			name: "converter timeout",
			err:  &document.ExtractionError{Kind: document.ErrConverterTimeout, Path: "a.jtd"},
			want: http.StatusGatewayTimeout,
		},
		{
			name: "converter failed",
			err:  &document.ExtractionError{Kind: document.ErrConverterFailed, Path: "a.jtd"},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "provider error",
			err:  fmt.Errorf("llm generation failed: %w", llm.NewProviderError(llm.ErrCodeRateLimited, "slow down")),
			want: http.StatusBadGateway,
		},
		{
			name: "provider timeout",
			err:  llm.NewProviderError(llm.ErrCodeTimeout, "deadline"),
			want: http.StatusGatewayTimeout,
		},
		{
			name: "malformed response",
			err:  &alignment.MalformedResponseError{Reason: "not an array"},
			want: http.StatusBadGateway,
		},
		{
			name: "request body too large",
			err:  &http.MaxBytesError{Limit: 10},
			want: http.StatusRequestEntityTooLarge,
		},
		{
			name: "deadline",
			err:  context.DeadlineExceeded,
			want: http.StatusGatewayTimeout,
		},
		{
			name: "unknown",
			err:  fmt.Errorf("boom"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}
