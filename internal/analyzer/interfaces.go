package analyzer

import (
	"context"

	"go-image-reader/pkg/models"
)

// Backend is one independent inspection of an image file
type Backend interface {
	Name() models.BackendName

	// Probe reports whether the backend's dependency is present. A non-nil
	// error is an unavailable AppError carrying an installation hint.
	Probe() error

	// Run inspects the file at path. Each backend opens and closes the file
	// itself.
	Run(ctx context.Context, path string) (models.Payload, error)
}

// TextRecognizer wraps an OCR engine
type TextRecognizer interface {
	Available(language string) error
	Recognize(ctx context.Context, path, language string) (Recognition, error)
}

// Recognition is the raw output of a TextRecognizer
type Recognition struct {
	Text       string
	Confidence float64
	Words      int
}
