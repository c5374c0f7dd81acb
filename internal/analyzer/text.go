package analyzer

import (
	"context"
	"strings"

	"go-image-reader/pkg/models"
	"go-image-reader/pkg/validation"
)

// TextBackend extracts text with an OCR engine
type TextBackend struct {
	recognizer TextRecognizer
	opts       TextOptions
}

func NewTextBackend(recognizer TextRecognizer, opts TextOptions) *TextBackend {
	if opts.Language == "" {
		opts.Language = DefaultTextOptions().Language
	}
	return &TextBackend{recognizer: recognizer, opts: opts}
}

func (b *TextBackend) Name() models.BackendName { return models.BackendText }

func (b *TextBackend) Probe() error {
	return b.recognizer.Available(b.opts.Language)
}

func (b *TextBackend) Run(ctx context.Context, path string) (models.Payload, error) {
	// fail on undecodable input the same way the other backends do
	if _, _, err := decodeConfigFile(path); err != nil {
		return nil, err
	}

	rec, err := b.recognizer.Recognize(ctx, path, b.opts.Language)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(rec.Text)
	words := rec.Words
	if words == 0 {
		words = len(strings.Fields(text))
	}

	payload := models.TextPayload{
		Text:       text,
		Language:   b.opts.Language,
		Confidence: rec.Confidence,
		WordCount:  words,
	}
	if b.opts.ExpectedText != "" {
		payload.Accuracy = validation.TextAccuracy(b.opts.ExpectedText, text)
	}
	return payload, nil
}
