package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-image-reader/internal/logger"
	"go-image-reader/pkg/models"
)

// BackendEvent is published by the runner around every backend invocation
type BackendEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	ReportID       string                 `json:"report_id"`
	ImagePath      string                 `json:"image_path"`
	Backend        models.BackendName     `json:"backend,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of pipeline event
type EventType string

const (
	// InspectionStarted before the first backend runs
	InspectionStarted EventType = "inspection_started"
	// InspectionFinished after the last backend reported
	InspectionFinished EventType = "inspection_finished"
	// BackendStarted before a backend runs
	BackendStarted EventType = "backend_started"
	// BackendSucceeded when a backend produced a payload
	BackendSucceeded EventType = "backend_succeeded"
	// BackendUnavailable when a backend's dependency is missing
	BackendUnavailable EventType = "backend_unavailable"
	// BackendFailed when a backend returned an error or panicked
	BackendFailed EventType = "backend_failed"
	// ImageFetched when a remote image was downloaded
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when a remote image could not be downloaded
	ImageFetchFailed EventType = "image_fetch_failed"
)

// EventForStatus maps a backend outcome to its event type
func EventForStatus(status models.Status) EventType {
	switch status {
	case models.StatusSuccess:
		return BackendSucceeded
	case models.StatusUnavailable:
		return BackendUnavailable
	default:
		return BackendFailed
	}
}

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event BackendEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event BackendEvent)
}

// LoggingObserver logs pipeline events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles pipeline events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event BackendEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"report_id":  event.ReportID,
		"image_path": event.ImagePath,
	}
	if event.Backend != "" {
		fields["backend"] = event.Backend
	}
	if event.ProcessingTime > 0 {
		fields["processing_time"] = event.ProcessingTime
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case InspectionStarted:
		entry.Info("Image inspection started")
	case InspectionFinished:
		entry.Info("Image inspection finished")
	case BackendStarted:
		entry.Debug("Backend started")
	case BackendSucceeded:
		entry.Info("Backend succeeded")
	case BackendUnavailable:
		entry.Warn("Backend unavailable")
	case BackendFailed:
		entry.Error("Backend failed")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	default:
		entry.Info("Pipeline event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// BackendStats are the counters kept for one backend
type BackendStats struct {
	Runs                int64         `json:"runs"`
	Succeeded           int64         `json:"succeeded"`
	Unavailable         int64         `json:"unavailable"`
	Failed              int64         `json:"failed"`
	TotalProcessingTime time.Duration `json:"total_processing_time"`
	AvgProcessingTime   time.Duration `json:"avg_processing_time"`
}

// MetricsObserver counts backend outcomes and keeps timings
type MetricsObserver struct {
	mu          sync.RWMutex
	inspections int64
	backends    map[models.BackendName]*BackendStats
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{backends: make(map[models.BackendName]*BackendStats)}
}

// OnEvent handles pipeline events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event BackendEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if event.EventType == InspectionStarted {
		o.inspections++
		return
	}
	if event.Backend == "" {
		return
	}

	stats, ok := o.backends[event.Backend]
	if !ok {
		stats = &BackendStats{}
		o.backends[event.Backend] = stats
	}

	switch event.EventType {
	case BackendStarted:
		stats.Runs++
	case BackendSucceeded:
		stats.Succeeded++
		stats.TotalProcessingTime += event.ProcessingTime
	case BackendUnavailable:
		stats.Unavailable++
	case BackendFailed:
		stats.Failed++
		stats.TotalProcessingTime += event.ProcessingTime
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Inspections returns how many inspections have started
func (o *MetricsObserver) Inspections() int64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.inspections
}

// Snapshot returns a copy of the per-backend counters
func (o *MetricsObserver) Snapshot() map[models.BackendName]BackendStats {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make(map[models.BackendName]BackendStats, len(o.backends))
	for name, stats := range o.backends {
		s := *stats
		if timed := s.Succeeded + s.Failed; timed > 0 {
			s.AvgProcessingTime = s.TotalProcessingTime / time.Duration(timed)
		}
		out[name] = s
	}
	return out
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers event to every observer in subscription order
// before returning. A panicking observer is logged and skipped.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event BackendEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	for _, observer := range observers {
		notify(ctx, observer, event)
	}
}

func notify(ctx context.Context, obs Observer, event BackendEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{
				"observer":   obs.GetObserverName(),
				"event_type": event.EventType,
				"panic":      r,
			}).Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
