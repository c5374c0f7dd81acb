package analyzer

import (
	"context"
	"fmt"
	"os"
	"strings"

	apperrors "go-image-reader/internal/errors"
	"go-image-reader/internal/vision"
	"go-image-reader/pkg/models"
)

// DescriptionBackend asks a vision model to describe the image
type DescriptionBackend struct {
	client  vision.Client
	opts    DescribeOptions
	initErr error
}

// NewDescriptionBackend wraps client. A nil client means no credential was
// configured and the backend reports itself unavailable.
func NewDescriptionBackend(client vision.Client, opts DescribeOptions) *DescriptionBackend {
	if opts.Prompt == "" {
		opts.Prompt = DescriptionPrompt
	}
	return &DescriptionBackend{client: client, opts: opts}
}

// WithInitError records why the vision client could not be built. The
// backend then reports itself unavailable with err as the cause.
func (b *DescriptionBackend) WithInitError(err error) *DescriptionBackend {
	b.initErr = err
	return b
}

func (b *DescriptionBackend) Name() models.BackendName { return models.BackendDescription }

func (b *DescriptionBackend) Probe() error {
	if b.initErr != nil {
		return apperrors.NewUnavailableError(
			fmt.Sprintf("%s client could not be created", b.opts.Provider),
			fmt.Sprintf("check the %s configuration", b.opts.Provider), b.initErr)
	}
	if b.client != nil {
		return nil
	}
	envVar := "OPENAI_API_KEY"
	if b.opts.Provider == "gemini" {
		envVar = "GEMINI_API_KEY"
	}
	return apperrors.NewUnavailableError(
		fmt.Sprintf("no API key configured for %s", b.opts.Provider),
		"set "+envVar, nil)
}

func (b *DescriptionBackend) Run(ctx context.Context, path string) (models.Payload, error) {
	if err := b.Probe(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}

	desc, err := b.client.Describe(ctx, vision.Request{
		Image:     data,
		MIMEType:  vision.DetectMIME(data),
		Prompt:    b.opts.Prompt,
		MaxTokens: b.opts.MaxTokens,
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewTimeoutError("vision model did not answer in time", err)
		}
		return nil, err
	}

	return models.DescriptionPayload{
		Provider:         b.client.Provider(),
		Model:            b.client.Model(),
		Description:      strings.TrimSpace(desc.Text),
		PromptTokens:     desc.PromptTokens,
		CompletionTokens: desc.CompletionTokens,
	}, nil
}
