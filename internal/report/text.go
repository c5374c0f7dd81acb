package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"go-image-reader/pkg/models"
)

const (
	// DefaultPreviewLength is the number of OCR characters shown
	DefaultPreviewLength = 500

	title     = "IMAGE ANALYZER"
	ruleWidth = 60
)

var sectionTitles = map[models.BackendName]string{
	models.BackendMetadata:    "BASIC IMAGE INFO",
	models.BackendColor:       "COLOR ANALYSIS",
	models.BackendText:        "TEXT EXTRACTION (OCR)",
	models.BackendDescription: "AI DESCRIPTION",
}

// TextFormatter writes the human-readable console report
type TextFormatter struct {
	PreviewLength int
}

func NewTextFormatter(previewLength int) *TextFormatter {
	if previewLength <= 0 {
		previewLength = DefaultPreviewLength
	}
	return &TextFormatter{PreviewLength: previewLength}
}

func (f *TextFormatter) ContentType() string { return "text/plain; charset=utf-8" }

// Format prints every backend section in report order, whatever its status
func (f *TextFormatter) Format(w io.Writer, report *models.Report) error {
	var b strings.Builder
	heavy := strings.Repeat("=", ruleWidth)

	fmt.Fprintln(&b, heavy)
	fmt.Fprintln(&b, title)
	fmt.Fprintln(&b, heavy)

	shown := report.ImagePath
	if report.Source != "" {
		shown = report.Source
	}
	fmt.Fprintf(&b, "\nAnalyzing: %s\n", shown)
	fmt.Fprintln(&b, strings.Repeat("-", ruleWidth))

	for _, name := range models.BackendOrder {
		fmt.Fprintf(&b, "\n%s:\n", sectionTitles[name])
		res, ok := report.Result(name)
		if !ok {
			fmt.Fprintln(&b, "  [skipped]")
			continue
		}
		f.writeResult(&b, res)
	}

	fmt.Fprintf(&b, "\n%s\n", heavy)
	fmt.Fprintln(&b, "Analysis complete!")
	fmt.Fprintln(&b, heavy)

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TextFormatter) writeResult(b *strings.Builder, res models.Result) {
	switch res.Status {
	case models.StatusUnavailable:
		fmt.Fprintf(b, "  [unavailable] %s\n", res.Message)
		if res.Hint != "" {
			fmt.Fprintf(b, "  Hint: %s\n", res.Hint)
		}
		return
	case models.StatusFailed:
		fmt.Fprintf(b, "  [failed] %s\n", res.Message)
		return
	}

	switch p := res.Payload.(type) {
	case models.MetadataPayload:
		fmt.Fprintf(b, "  Format: %s\n", p.Format)
		fmt.Fprintf(b, "  Mode: %s\n", p.Mode)
		fmt.Fprintf(b, "  Size: %dx%d pixels\n", p.Width, p.Height)
		if p.ContentType != "" {
			fmt.Fprintf(b, "  Content type: %s (%s)\n", p.ContentType, humanize.IBytes(uint64(p.SizeBytes)))
		}
	case models.ColorPayload:
		fmt.Fprintf(b, "  Dimensions: %dx%d\n", p.Width, p.Height)
		fmt.Fprintf(b, "  Channels: %d\n", p.Channels)
		fmt.Fprintln(b, "  Dominant Colors (RGB):")
		for i, c := range p.DominantColors {
			fmt.Fprintf(b, "    %d. RGB(%d, %d, %d)", i+1, c[0], c[1], c[2])
			if i < len(p.ClusterSizes) && p.SampleCount > 0 {
				fmt.Fprintf(b, "  %.1f%%", 100*float64(p.ClusterSizes[i])/float64(p.SampleCount))
			}
			b.WriteByte('\n')
		}
	case models.TextPayload:
		if p.Text == "" {
			fmt.Fprintln(b, "  (no text detected)")
		} else {
			fmt.Fprintln(b, "  Extracted Text:")
			fmt.Fprintln(b, Preview(p.Text, f.PreviewLength))
		}
		if p.Confidence > 0 {
			fmt.Fprintf(b, "  Confidence: %.1f%% over %d words\n", p.Confidence, p.WordCount)
		}
		if p.Accuracy != nil {
			fmt.Fprintf(b, "  Expected: %q\n", p.Accuracy.ExpectedText)
			fmt.Fprintf(b, "  WER: %.3f  CER: %.3f  Match: %.2f%%\n", p.Accuracy.WER, p.Accuracy.CER, p.Accuracy.MatchScore)
		}
	case models.DescriptionPayload:
		fmt.Fprintf(b, "  (%s, %s)\n\n", p.Provider, p.Model)
		fmt.Fprintln(b, p.Description)
	default:
		fmt.Fprintf(b, "  %v\n", res.Payload)
	}
}

// Preview cuts text to limit runes and marks the cut with "..."
func Preview(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}
