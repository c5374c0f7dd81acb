package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{" INFO ", logrus.InfoLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"verbose", logrus.PanicLevel},
		{"", logrus.PanicLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in, logrus.PanicLevel); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigure(t *testing.T) {
	prevLevel, prevOut := Logger.GetLevel(), Logger.Out
	defer func() {
		Logger.SetLevel(prevLevel)
		Logger.SetOutput(prevOut)
	}()

	var buf bytes.Buffer
	Configure("info", &buf)

	WithFields(logrus.Fields{"backend": "color-analysis"}).Debug("hidden")
	WithFields(logrus.Fields{"backend": "color-analysis"}).Info("shown")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "shown" || entry["backend"] != "color-analysis" {
		t.Errorf("unexpected entry: %v", entry)
	}

	// unknown level keeps the current one
	Configure("loud", nil)
	if Logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("level changed to %v", Logger.GetLevel())
	}
}
