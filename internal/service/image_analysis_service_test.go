package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-image-reader/internal/analyzer"
	apperrors "go-image-reader/internal/errors"
	"go-image-reader/internal/observer"
	"go-image-reader/internal/resolver"
	"go-image-reader/pkg/models"
)

type stubProvider struct {
	gotExpected string
}

func (p *stubProvider) CreateBackends(expectedText string) []analyzer.Backend {
	p.gotExpected = expectedText
	return healthyBackends(nil)
}

func TestImageAnalysisService_Analyze(t *testing.T) {
	path := filepath.Join(t.TempDir(), "home page.png")
	require.NoError(t, os.WriteFile(path, []byte("img"), 0o600))

	provider := &stubProvider{}
	svc := NewImageAnalysisService(resolver.New("", nil), provider, nil)

	report, err := svc.Analyze(context.Background(), []string{path}, "TEST")
	require.NoError(t, err)

	assert.Equal(t, path, report.ImagePath)
	assert.Empty(t, report.Source)
	assert.Len(t, report.Results, 4)
	assert.Equal(t, "TEST", provider.gotExpected)
}

func TestImageAnalysisService_ResolveFailureRunsNothing(t *testing.T) {
	provider := &stubProvider{}
	log := &eventLog{}
	pub := observer.NewEventPublisher()
	pub.Subscribe(log)

	svc := NewImageAnalysisService(resolver.New("", nil), provider, pub)

	report, err := svc.Analyze(context.Background(), []string{filepath.Join(t.TempDir(), "missing.png")}, "")
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	assert.Empty(t, provider.gotExpected)
	assert.Empty(t, log.events)
}

func TestImageAnalysisService_AnalyzeFileRecordsSource(t *testing.T) {
	svc := NewImageAnalysisService(resolver.New("", nil), &stubProvider{}, nil)

	report := svc.AnalyzeFile(context.Background(), "/tmp/upload-1.png", "home.png", "")
	assert.Equal(t, "home.png", report.Source)

	report = svc.AnalyzeFile(context.Background(), "/tmp/x.png", "/tmp/x.png", "")
	assert.Empty(t, report.Source)

	for _, res := range report.Results {
		assert.Equal(t, models.StatusSuccess, res.Status)
	}
}
