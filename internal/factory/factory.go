package factory

import (
	"context"
	"fmt"
	"strings"

	"go-image-reader/internal/analyzer"
	"go-image-reader/internal/config"
	"go-image-reader/internal/logger"
	"go-image-reader/internal/storage"
	"go-image-reader/internal/vision"

	"github.com/sirupsen/logrus"
)

// StorageFactory creates image sources for remote locations
type StorageFactory interface {
	CreateSource(scheme string) (storage.ImageSource, error)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateSource picks the source that understands scheme
func (f *storageFactory) CreateSource(scheme string) (storage.ImageSource, error) {
	switch strings.ToLower(scheme) {
	case "http", "https":
		return storage.NewHTTPSource(f.cfg.Fetch.Timeout, f.cfg.Fetch.MaxBytes), nil
	case "az":
		az := f.cfg.Azure
		return storage.NewAzureSource(az.AccountName, az.AccountKey, az.ServiceURL, f.cfg.Fetch.MaxBytes)
	case "s3":
		mn := f.cfg.Minio
		return storage.NewMinioSource(mn.Endpoint, mn.Region, mn.AccessKey, mn.SecretKey, mn.UseSSL, f.cfg.Fetch.MaxBytes)
	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", scheme)
	}
}

// BackendFactory builds the four backends in report order
type BackendFactory struct {
	cfg        *config.Config
	pool       *analyzer.WorkerPool
	recognizer analyzer.TextRecognizer
	vision     vision.Client
	visionErr  error
}

// NewBackendFactory creates the long-lived collaborators shared by all
// inspections. The vision client is nil when no API key is configured or
// when it fails to build; the description backend then reports unavailable.
func NewBackendFactory(ctx context.Context, cfg *config.Config, pool *analyzer.WorkerPool) *BackendFactory {
	client, err := NewVisionClient(ctx, cfg.AI)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"provider": cfg.AI.Provider,
			"model":    cfg.AI.Model,
		}).Warn("Vision client unavailable")
	}
	return &BackendFactory{
		cfg:        cfg,
		pool:       pool,
		recognizer: analyzer.NewTesseractRecognizer(),
		vision:     client,
		visionErr:  err,
	}
}

// CreateBackends returns metadata, color, text and description backends.
// expectedText enables OCR accuracy scoring when non-empty.
func (f *BackendFactory) CreateBackends(expectedText string) []analyzer.Backend {
	return []analyzer.Backend{
		analyzer.NewMetadataBackend(),
		analyzer.NewColorBackend(ColorOptions(f.cfg.Color), f.pool),
		analyzer.NewTextBackend(f.recognizer, TextOptions(f.cfg.OCR).WithExpectedText(expectedText)),
		analyzer.NewDescriptionBackend(f.vision, DescribeOptions(f.cfg.AI)).WithInitError(f.visionErr),
	}
}

// NewVisionClient creates the client for the configured provider, or nil
// when the provider has no API key
func NewVisionClient(ctx context.Context, ai config.AIConfig) (vision.Client, error) {
	key := ai.APIKey()
	if key == "" {
		return nil, nil
	}
	switch ai.Provider {
	case config.ProviderOpenAI:
		return vision.NewOpenAIClient(key, ai.OpenAIBaseURL, ai.Model), nil
	case config.ProviderGemini:
		client, err := vision.NewGeminiClient(ctx, key, "", ai.Model)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", ai.Provider)
	}
}

// ColorOptions converts the color section of the config
func ColorOptions(c config.ColorConfig) analyzer.ColorOptions {
	return analyzer.ColorOptions{
		MaxIterations: c.MaxIterations,
		Epsilon:       c.Epsilon,
		Attempts:      c.Attempts,
		MaxSamples:    c.MaxSamples,
		MaxPixels:     c.MaxPixels,
		Seed:          c.Seed,
	}
}

// TextOptions converts the OCR section of the config
func TextOptions(c config.OCRConfig) analyzer.TextOptions {
	return analyzer.TextOptions{Language: c.Language}
}

// DescribeOptions converts the AI section of the config
func DescribeOptions(c config.AIConfig) analyzer.DescribeOptions {
	return analyzer.DescribeOptions{
		Provider:  c.Provider,
		Model:     c.Model,
		Prompt:    analyzer.DescriptionPrompt,
		MaxTokens: c.MaxTokens,
		Timeout:   c.Timeout,
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	StorageFactory StorageFactory
	BackendFactory *BackendFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(ctx context.Context, cfg *config.Config, pool *analyzer.WorkerPool) *ComponentFactory {
	return &ComponentFactory{
		StorageFactory: NewStorageFactory(cfg),
		BackendFactory: NewBackendFactory(ctx, cfg, pool),
	}
}
