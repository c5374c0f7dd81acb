package service

import (
	"context"
	"time"

	"go-image-reader/internal/analyzer"
	"go-image-reader/internal/observer"
	"go-image-reader/internal/resolver"
	"go-image-reader/pkg/models"
	"go-image-reader/pkg/validation"
)

// BackendProvider builds a fresh backend list for one inspection
type BackendProvider interface {
	CreateBackends(expectedText string) []analyzer.Backend
}

// ImageAnalysisService inspects images end to end
type ImageAnalysisService interface {
	// Analyze resolves args to an image and runs every backend on it. Only
	// resolution errors are returned; backend failures live in the report.
	Analyze(ctx context.Context, args []string, expectedText string) (*models.Report, error)

	// AnalyzeFile runs every backend on a local file. source is recorded in
	// the report when it differs from path.
	AnalyzeFile(ctx context.Context, path, source, expectedText string) *models.Report
}

// imageAnalysisService implements ImageAnalysisService
type imageAnalysisService struct {
	resolver  *resolver.Resolver
	backends  BackendProvider
	runner    *Runner
	publisher observer.Subject
}

// NewImageAnalysisService creates a new image analysis service
func NewImageAnalysisService(
	imageResolver *resolver.Resolver,
	backends BackendProvider,
	publisher observer.Subject,
) ImageAnalysisService {
	return &imageAnalysisService{
		resolver:  imageResolver,
		backends:  backends,
		runner:    NewRunner(publisher),
		publisher: publisher,
	}
}

func (s *imageAnalysisService) Analyze(ctx context.Context, args []string, expectedText string) (*models.Report, error) {
	start := time.Now()
	target, err := s.resolver.Resolve(ctx, args)
	if err != nil {
		if len(args) == 1 && validation.IsRemote(args[0]) {
			s.notify(ctx, observer.BackendEvent{EventType: observer.ImageFetchFailed, ImagePath: args[0], ErrorMessage: err.Error()})
		}
		return nil, err
	}
	defer target.Close()

	if target.Remote() {
		s.notify(ctx, observer.BackendEvent{
			EventType:      observer.ImageFetched,
			ImagePath:      target.Source,
			ProcessingTime: time.Since(start),
		})
	}

	return s.AnalyzeFile(ctx, target.Path, target.Source, expectedText), nil
}

func (s *imageAnalysisService) AnalyzeFile(ctx context.Context, path, source, expectedText string) *models.Report {
	report := s.runner.Run(ctx, path, s.backends.CreateBackends(expectedText))
	if source != "" && source != path {
		report.Source = source
	}
	return report
}

func (s *imageAnalysisService) notify(ctx context.Context, event observer.BackendEvent) {
	if s.publisher != nil {
		s.publisher.NotifyObservers(ctx, event)
	}
}
