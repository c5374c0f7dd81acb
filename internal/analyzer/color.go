package analyzer

import (
	"context"

	"go-image-reader/pkg/models"
)

// ColorBackend reports the representative colors of an image
type ColorBackend struct {
	opts ColorOptions
	pool *WorkerPool
}

// NewColorBackend creates the color backend. Label assignment runs on pool,
// which the caller owns.
func NewColorBackend(opts ColorOptions, pool *WorkerPool) *ColorBackend {
	return &ColorBackend{opts: opts, pool: pool}
}

func (b *ColorBackend) Name() models.BackendName { return models.BackendColor }

// Probe always succeeds: clustering is pure Go
func (b *ColorBackend) Probe() error { return nil }

func (b *ColorBackend) Run(ctx context.Context, path string) (models.Payload, error) {
	img, _, err := decodeBoundedFile(path, b.opts.MaxPixels)
	if err != nil {
		return nil, err
	}

	samples := samplePixels(img, b.opts.MaxSamples)
	clustering, err := NewKMeans(DominantColorCount, b.opts, b.pool).Fit(ctx, samples)
	if err != nil {
		return nil, err
	}

	_, channels := describeModel(img.ColorModel())
	means, stdDevs := channelStats(samples)

	colors := make([]models.RGB, len(clustering.Centers))
	for i, c := range clustering.Centers {
		colors[i] = models.RGB(toRGB(c))
	}

	bounds := img.Bounds()
	return models.ColorPayload{
		Width:          bounds.Dx(),
		Height:         bounds.Dy(),
		Channels:       channels,
		DominantColors: colors,
		ClusterSizes:   clustering.Sizes,
		Compactness:    clustering.Compactness,
		SampleCount:    len(samples),
		ChannelMeans:   means,
		ChannelStdDevs: stdDevs,
	}, nil
}
