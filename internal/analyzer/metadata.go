package analyzer

import (
	"context"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"go-image-reader/pkg/models"
)

// MetadataBackend reports format, color mode and dimensions from the image header
type MetadataBackend struct{}

func NewMetadataBackend() *MetadataBackend {
	return &MetadataBackend{}
}

func (b *MetadataBackend) Name() models.BackendName { return models.BackendMetadata }

// Probe always succeeds: the decoders are compiled in
func (b *MetadataBackend) Probe() error { return nil }

func (b *MetadataBackend) Run(ctx context.Context, path string) (models.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, format, err := decodeConfigFile(path)
	if err != nil {
		return nil, err
	}
	mode, _ := describeModel(cfg.ColorModel)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}

	payload := models.MetadataPayload{
		Format:    formatName(format),
		Mode:      mode,
		Width:     cfg.Width,
		Height:    cfg.Height,
		SizeBytes: info.Size(),
	}
	if mtype, err := mimetype.DetectFile(path); err == nil {
		payload.ContentType = mtype.String()
	}
	return payload, nil
}
