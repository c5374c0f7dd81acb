package validation

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"

	"go-image-reader/pkg/models"
)

// TextAccuracy scores recognized text against the text the image is known
// to contain. Whitespace runs are collapsed before comparison.
func TextAccuracy(expected, actual string) *models.TextAccuracy {
	refWords := strings.Fields(expected)
	candWords := strings.Fields(actual)

	result := &models.TextAccuracy{
		ExpectedText: expected,
		WER:          wordErrorRate(refWords, candWords),
		CER:          characterErrorRate(strings.Join(refWords, " "), strings.Join(candWords, " ")),
	}
	result.MatchScore = math.Round((1-math.Min(result.CER, 1))*10000) / 100
	return result
}

func wordErrorRate(reference, candidate []string) float64 {
	if len(reference) == 0 {
		if len(candidate) == 0 {
			return 0
		}
		return 1
	}
	rate, _ := wer.WER(reference, candidate)
	return rate
}

// characterErrorRate is the rune edit distance divided by the reference length
func characterErrorRate(reference, candidate string) float64 {
	n := utf8.RuneCountInString(reference)
	if n == 0 {
		if candidate == "" {
			return 0
		}
		return 1
	}
	return float64(levenshtein.Distance(reference, candidate)) / float64(n)
}
