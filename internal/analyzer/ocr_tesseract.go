//go:build cgo

package analyzer

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/otiai10/gosseract/v2"

	apperrors "go-image-reader/internal/errors"
)

// TesseractRecognizer runs OCR through libtesseract
type TesseractRecognizer struct{}

func NewTesseractRecognizer() *TesseractRecognizer {
	return &TesseractRecognizer{}
}

// Available checks that traineddata exists for every language in a
// "+"-joined list such as "eng+deu"
func (r *TesseractRecognizer) Available(language string) error {
	installed, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return apperrors.NewUnavailableError("tesseract language data not found",
			"install tesseract-ocr and its language data, or set TESSDATA_PREFIX", err)
	}
	for _, lang := range strings.Split(language, "+") {
		if !slices.Contains(installed, lang) {
			return apperrors.NewUnavailableError(
				fmt.Sprintf("tesseract language %q is not installed", lang),
				"install tesseract language data: "+lang, nil)
		}
	}
	return nil
}

func (r *TesseractRecognizer) Recognize(ctx context.Context, path, language string) (Recognition, error) {
	if err := ctx.Err(); err != nil {
		return Recognition{}, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Split(language, "+")...); err != nil {
		return Recognition{}, fmt.Errorf("set OCR language: %w", err)
	}
	if err := client.SetImage(path); err != nil {
		return Recognition{}, fmt.Errorf("load image for OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Recognition{}, fmt.Errorf("recognize text: %w", err)
	}

	rec := Recognition{Text: text}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return rec, nil
	}
	var total float64
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		total += box.Confidence
		rec.Words++
	}
	if rec.Words > 0 {
		rec.Confidence = total / float64(rec.Words)
	}
	return rec, nil
}
