//go:build !cgo

package analyzer

import (
	"context"

	apperrors "go-image-reader/internal/errors"
)

// TesseractRecognizer is unavailable in binaries built without cgo
type TesseractRecognizer struct{}

func NewTesseractRecognizer() *TesseractRecognizer {
	return &TesseractRecognizer{}
}

func (r *TesseractRecognizer) Available(string) error {
	return errUnavailableOCR()
}

func (r *TesseractRecognizer) Recognize(context.Context, string, string) (Recognition, error) {
	return Recognition{}, errUnavailableOCR()
}

func errUnavailableOCR() error {
	return apperrors.NewUnavailableError("OCR support was not compiled in",
		"rebuild with CGO_ENABLED=1 and install tesseract-ocr and libtesseract-dev", nil)
}
