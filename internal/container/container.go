package container

import (
	"context"
	"net/http"

	"go-image-reader/internal/analyzer"
	"go-image-reader/internal/config"
	"go-image-reader/internal/factory"
	"go-image-reader/internal/logger"
	"go-image-reader/internal/observer"
	"go-image-reader/internal/report"
	"go-image-reader/internal/repository"
	"go-image-reader/internal/resolver"
	"go-image-reader/internal/service"
	"go-image-reader/internal/transport"
	"go-image-reader/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config               *config.Config
	pool                 *analyzer.WorkerPool
	metrics              *observer.MetricsObserver
	imageRepository      repository.ImageRepository
	imageResolver        *resolver.Resolver
	imageAnalysisService service.ImageAnalysisService
	formatter            report.Formatter
	handler              http.Handler
}

// NewContainer builds the dependency graph for cfg
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	formatter, err := report.NewFormatter(cfg.Format, cfg.OCR.PreviewLength)
	if err != nil {
		return nil, err
	}

	pool := analyzer.NewWorkerPool(0)
	pool.Start()

	components := factory.NewComponentFactory(ctx, cfg, pool)

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	imageRepository := repository.NewRemoteImageRepository(components.StorageFactory, validation.NewURLValidator())
	imageResolver := resolver.New(cfg.DefaultImage, imageRepository)
	imageAnalysisService := service.NewImageAnalysisService(imageResolver, components.BackendFactory, publisher)

	return &Container{
		config:               cfg,
		pool:                 pool,
		metrics:              metrics,
		imageRepository:      imageRepository,
		imageResolver:        imageResolver,
		imageAnalysisService: imageAnalysisService,
		formatter:            formatter,
		handler:              transport.NewHandler(imageAnalysisService, metrics, cfg),
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the inspection service
func (c *Container) Service() service.ImageAnalysisService {
	return c.imageAnalysisService
}

// Formatter returns the report formatter selected by the configuration
func (c *Container) Formatter() report.Formatter {
	return c.formatter
}

// Metrics returns the backend outcome counters
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Close releases the worker pool
func (c *Container) Close() {
	c.pool.Close()
}
