package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"go-image-reader/internal/analyzer"
	apperrors "go-image-reader/internal/errors"
	"go-image-reader/internal/observer"
	"go-image-reader/pkg/models"
)

// Runner invokes backends one after another against the same file. A
// backend that is unavailable, fails or panics is recorded and the next one
// still runs.
type Runner struct {
	publisher observer.Subject
}

// NewRunner creates a runner publishing to publisher, which may be nil
func NewRunner(publisher observer.Subject) *Runner {
	return &Runner{publisher: publisher}
}

// Run executes backends in report order and returns one result per backend
func (r *Runner) Run(ctx context.Context, path string, backends []analyzer.Backend) *models.Report {
	report := &models.Report{
		ID:        uuid.NewString(),
		ImagePath: path,
		StartedAt: time.Now(),
		Results:   make([]models.Result, 0, len(backends)),
	}

	ordered := slices.Clone(backends)
	slices.SortStableFunc(ordered, func(a, b analyzer.Backend) int {
		return orderOf(a.Name()) - orderOf(b.Name())
	})

	r.publish(ctx, observer.BackendEvent{EventType: observer.InspectionStarted, ReportID: report.ID, ImagePath: path})
	for _, backend := range ordered {
		report.Results = append(report.Results, r.runOne(ctx, report, backend))
	}
	r.publish(ctx, observer.BackendEvent{
		EventType:      observer.InspectionFinished,
		ReportID:       report.ID,
		ImagePath:      path,
		ProcessingTime: time.Since(report.StartedAt),
	})
	return report
}

func (r *Runner) runOne(ctx context.Context, report *models.Report, backend analyzer.Backend) (result models.Result) {
	name := backend.Name()
	start := time.Now()
	result.Backend = name

	r.publish(ctx, observer.BackendEvent{EventType: observer.BackendStarted, ReportID: report.ID, ImagePath: report.ImagePath, Backend: name})

	defer func() {
		if rec := recover(); rec != nil {
			result.Status = models.StatusFailed
			result.Payload = nil
			result.Message = fmt.Sprintf("backend panicked: %v", rec)
			result.Hint = ""
		}
		elapsed := time.Since(start)
		result.DurationMs = elapsed.Milliseconds()
		r.publish(ctx, observer.BackendEvent{
			EventType:      observer.EventForStatus(result.Status),
			ReportID:       report.ID,
			ImagePath:      report.ImagePath,
			Backend:        name,
			ProcessingTime: elapsed,
			ErrorMessage:   result.Message,
		})
	}()

	if err := backend.Probe(); err != nil {
		return withError(result, err, models.StatusUnavailable)
	}

	payload, err := backend.Run(ctx, report.ImagePath)
	if err != nil {
		return withError(result, err, models.StatusFailed)
	}
	if payload == nil {
		result.Status = models.StatusFailed
		result.Message = "backend returned no data"
		return result
	}

	result.Status = models.StatusSuccess
	result.Payload = payload
	return result
}

// withError records err. An unavailable AppError always yields the
// unavailable status with its hint; anything else gets status.
func withError(result models.Result, err error, status models.Status) models.Result {
	result.Status = status
	result.Message = err.Error()

	appErr, ok := apperrors.As(err)
	if !ok {
		return result
	}
	result.Message = appErr.Message
	if appErr.Cause != nil {
		result.Message += ": " + appErr.Cause.Error()
	}
	if apperrors.IsType(err, apperrors.ErrorTypeUnavailable) {
		result.Status = models.StatusUnavailable
		result.Hint = appErr.Hint
	}
	return result
}

func (r *Runner) publish(ctx context.Context, event observer.BackendEvent) {
	if r.publisher != nil {
		r.publisher.NotifyObservers(ctx, event)
	}
}

func orderOf(name models.BackendName) int {
	if i := slices.Index(models.BackendOrder, name); i >= 0 {
		return i
	}
	return len(models.BackendOrder)
}
