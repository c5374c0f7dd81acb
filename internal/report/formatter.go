package report

import (
	"encoding/json"
	"fmt"
	"io"

	"go-image-reader/internal/config"
	"go-image-reader/pkg/models"
)

// Formatter renders a finished report
type Formatter interface {
	Format(w io.Writer, report *models.Report) error
	ContentType() string
}

// NewFormatter returns the formatter for a config output format
func NewFormatter(format string, previewLength int) (Formatter, error) {
	switch format {
	case config.FormatText, "":
		return NewTextFormatter(previewLength), nil
	case config.FormatJSON:
		return &JSONFormatter{Indent: "  "}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}
}

// JSONFormatter writes the report as JSON
type JSONFormatter struct {
	Indent string
}

func (f *JSONFormatter) ContentType() string { return "application/json; charset=utf-8" }

func (f *JSONFormatter) Format(w io.Writer, report *models.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", f.Indent)
	return enc.Encode(report)
}
