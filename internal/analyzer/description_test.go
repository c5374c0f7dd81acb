package analyzer

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "go-image-reader/internal/errors"
	"go-image-reader/internal/vision"
	"go-image-reader/pkg/models"
)

type fakeVision struct {
	desc  vision.Description
	err   error
	delay time.Duration
	got   vision.Request
}

func (f *fakeVision) Provider() string { return "fake" }
func (f *fakeVision) Model() string    { return "fake-1" }

func (f *fakeVision) Describe(ctx context.Context, req vision.Request) (vision.Description, error) {
	f.got = req
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return vision.Description{}, ctx.Err()
		}
	}
	return f.desc, f.err
}

func TestDescriptionBackend_Run(t *testing.T) {
	client := &fakeVision{desc: vision.Description{Text: "A header and a footer.\n", PromptTokens: 9, CompletionTokens: 6}}
	backend := NewDescriptionBackend(client, DefaultDescribeOptions())
	require.NoError(t, backend.Probe())

	payload, err := backend.Run(context.Background(), writePNG(t, solid(4, 4, color.White)))
	require.NoError(t, err)

	desc, ok := payload.(models.DescriptionPayload)
	require.True(t, ok)
	assert.Equal(t, "A header and a footer.", desc.Description)
	assert.Equal(t, "fake", desc.Provider)
	assert.Equal(t, "fake-1", desc.Model)
	assert.Equal(t, 9, desc.PromptTokens)

	assert.Equal(t, DescriptionPrompt, client.got.Prompt)
	assert.Equal(t, 1000, client.got.MaxTokens)
	assert.Equal(t, "image/png", client.got.MIMEType)
}

func TestDescriptionBackend_NoCredential(t *testing.T) {
	tests := []struct {
		provider string
		wantHint string
	}{
		{"openai", "set OPENAI_API_KEY"},
		{"gemini", "set GEMINI_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			opts := DefaultDescribeOptions()
			opts.Provider = tt.provider
			backend := NewDescriptionBackend(nil, opts)

			err := backend.Probe()
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrorTypeUnavailable, appErr.Type)
			assert.Equal(t, tt.wantHint, appErr.Hint)
		})
	}
}

func TestDescriptionBackend_InitError(t *testing.T) {
	opts := DefaultDescribeOptions()
	opts.Provider = "gemini"
	cause := errors.New("genai: invalid client options")
	backend := NewDescriptionBackend(nil, opts).WithInitError(cause)

	err := backend.Probe()
	assert.ErrorIs(t, err, cause)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeUnavailable, appErr.Type)
	assert.Equal(t, "gemini client could not be created", appErr.Message)
	assert.Equal(t, "check the gemini configuration", appErr.Hint)

	_, err = backend.Run(context.Background(), writePNG(t, solid(2, 2, color.Black)))
	assert.ErrorIs(t, err, cause)
}

func TestDescriptionBackend_Errors(t *testing.T) {
	backend := NewDescriptionBackend(&fakeVision{err: vision.ErrEmptyResponse}, DefaultDescribeOptions())
	_, err := backend.Run(context.Background(), writePNG(t, solid(2, 2, color.Black)))
	assert.ErrorIs(t, err, vision.ErrEmptyResponse)

	_, err = backend.Run(context.Background(), filepath.Join(t.TempDir(), "gone.png"))
	assert.Error(t, err)
}

func TestDescriptionBackend_Timeout(t *testing.T) {
	opts := DefaultDescribeOptions()
	opts.Timeout = 20 * time.Millisecond
	backend := NewDescriptionBackend(&fakeVision{delay: time.Second}, opts)

	_, err := backend.Run(context.Background(), writePNG(t, solid(2, 2, color.Black)))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTimeout))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
