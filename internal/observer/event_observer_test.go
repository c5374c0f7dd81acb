package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-image-reader/internal/logger"
	"go-image-reader/pkg/models"
)

type recordingObserver struct {
	name   string
	events []BackendEvent
}

func (r *recordingObserver) OnEvent(_ context.Context, event BackendEvent) {
	r.events = append(r.events, event)
}

func (r *recordingObserver) GetObserverName() string { return r.name }

type panickingObserver struct{}

func (panickingObserver) OnEvent(context.Context, BackendEvent) { panic("boom") }
func (panickingObserver) GetObserverName() string               { return "panicky" }

func TestEventPublisher_DeliversSynchronouslyInOrder(t *testing.T) {
	pub := NewEventPublisher()
	first := &recordingObserver{name: "first"}
	second := &recordingObserver{name: "second"}
	pub.Subscribe(first)
	pub.Subscribe(panickingObserver{})
	pub.Subscribe(second)

	pub.NotifyObservers(context.Background(), BackendEvent{EventType: BackendStarted, Backend: models.BackendColor})
	pub.NotifyObservers(context.Background(), BackendEvent{EventType: BackendSucceeded, Backend: models.BackendColor})

	// no waiting: delivery has completed when NotifyObservers returns
	require.Len(t, first.events, 2)
	require.Len(t, second.events, 2)
	assert.Equal(t, BackendStarted, first.events[0].EventType)
	assert.Equal(t, BackendSucceeded, second.events[1].EventType)
	assert.False(t, first.events[0].Timestamp.IsZero())
}

func TestEventPublisher_PanicLoggedThroughSharedLogger(t *testing.T) {
	prevLevel, prevOut := logger.Logger.GetLevel(), logger.Logger.Out
	defer func() {
		logger.Logger.SetLevel(prevLevel)
		logger.Logger.SetOutput(prevOut)
	}()

	var buf bytes.Buffer
	logger.Configure("error", &buf)

	pub := NewEventPublisher()
	pub.Subscribe(panickingObserver{})
	pub.NotifyObservers(context.Background(), BackendEvent{EventType: BackendFailed, Backend: models.BackendText})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "expected one JSON log line, got %q", buf.String())
	assert.Equal(t, "Observer panicked while handling event", entry["msg"])
	assert.Equal(t, "panicky", entry["observer"])
	assert.Equal(t, "boom", entry["panic"])
	assert.Equal(t, string(BackendFailed), entry["event_type"])

	// below the configured level nothing is written
	buf.Reset()
	logger.Logger.SetLevel(logrus.FatalLevel)
	pub.NotifyObservers(context.Background(), BackendEvent{EventType: BackendFailed})
	assert.Empty(t, buf.String())
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	pub := NewEventPublisher()
	obs := &recordingObserver{name: "rec"}
	pub.Subscribe(obs)
	pub.Unsubscribe(obs)

	pub.NotifyObservers(context.Background(), BackendEvent{EventType: InspectionStarted})
	assert.Empty(t, obs.events)
}

func TestMetricsObserver(t *testing.T) {
	m := NewMetricsObserver()
	ctx := context.Background()

	m.OnEvent(ctx, BackendEvent{EventType: InspectionStarted})
	m.OnEvent(ctx, BackendEvent{EventType: BackendStarted, Backend: models.BackendColor})
	m.OnEvent(ctx, BackendEvent{EventType: BackendSucceeded, Backend: models.BackendColor, ProcessingTime: 40 * time.Millisecond})
	m.OnEvent(ctx, BackendEvent{EventType: BackendStarted, Backend: models.BackendColor})
	m.OnEvent(ctx, BackendEvent{EventType: BackendFailed, Backend: models.BackendColor, ProcessingTime: 20 * time.Millisecond})
	m.OnEvent(ctx, BackendEvent{EventType: BackendStarted, Backend: models.BackendText})
	m.OnEvent(ctx, BackendEvent{EventType: BackendUnavailable, Backend: models.BackendText})

	assert.Equal(t, int64(1), m.Inspections())

	snap := m.Snapshot()
	color := snap[models.BackendColor]
	assert.Equal(t, int64(2), color.Runs)
	assert.Equal(t, int64(1), color.Succeeded)
	assert.Equal(t, int64(1), color.Failed)
	assert.Equal(t, 30*time.Millisecond, color.AvgProcessingTime)

	text := snap[models.BackendText]
	assert.Equal(t, int64(1), text.Unavailable)
	assert.Zero(t, text.AvgProcessingTime)
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	obs := NewLoggingObserver(logger)
	obs.OnEvent(context.Background(), BackendEvent{
		EventType:    BackendFailed,
		ReportID:     "r-1",
		Backend:      models.BackendDescription,
		ErrorMessage: "empty response from model",
	})
	// debug is below the configured level
	obs.OnEvent(context.Background(), BackendEvent{EventType: BackendStarted, Backend: models.BackendColor})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "Backend failed", entry["msg"])
	assert.Equal(t, "ai-description", entry["backend"])
	assert.Equal(t, "empty response from model", entry["error"])
}

func TestEventForStatus(t *testing.T) {
	assert.Equal(t, BackendSucceeded, EventForStatus(models.StatusSuccess))
	assert.Equal(t, BackendUnavailable, EventForStatus(models.StatusUnavailable))
	assert.Equal(t, BackendFailed, EventForStatus(models.StatusFailed))
}
