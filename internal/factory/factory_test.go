package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-image-reader/internal/analyzer"
	"go-image-reader/internal/config"
	apperrors "go-image-reader/internal/errors"
	"go-image-reader/internal/storage"
	"go-image-reader/pkg/models"
)

func TestStorageFactory_CreateSource(t *testing.T) {
	cfg := config.Default()
	cfg.Azure.AccountName = "devstoreaccount1"
	cfg.Minio.Endpoint = "localhost:9000"
	f := NewStorageFactory(cfg)

	src, err := f.CreateSource("https")
	require.NoError(t, err)
	assert.IsType(t, &storage.HTTPSource{}, src)

	src, err = f.CreateSource("HTTP")
	require.NoError(t, err)
	assert.IsType(t, &storage.HTTPSource{}, src)

	src, err = f.CreateSource("az")
	require.NoError(t, err)
	assert.IsType(t, &storage.AzureSource{}, src)

	src, err = f.CreateSource("s3")
	require.NoError(t, err)
	assert.IsType(t, &storage.MinioSource{}, src)

	_, err = f.CreateSource("ftp")
	assert.Error(t, err)
}

func TestStorageFactory_UnconfiguredObjectStores(t *testing.T) {
	f := NewStorageFactory(config.Default())

	_, err := f.CreateSource("az")
	assert.Error(t, err)
	_, err = f.CreateSource("s3")
	assert.Error(t, err)
}

func TestBackendFactory_Order(t *testing.T) {
	cfg := config.Default()
	bf := NewBackendFactory(context.Background(), cfg, nil)

	backends := bf.CreateBackends("")
	require.Len(t, backends, len(models.BackendOrder))
	for i, b := range backends {
		assert.Equal(t, models.BackendOrder[i], b.Name())
	}
}

func TestBackendFactory_NoAPIKeyMeansUnavailable(t *testing.T) {
	cfg := config.Default()
	cfg.AI.OpenAIAPIKey = ""

	bf := NewBackendFactory(context.Background(), cfg, nil)

	description := bf.CreateBackends("")[3]
	assert.Error(t, description.Probe())
}

func TestBackendFactory_VisionClientFailureMeansUnavailable(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Provider = "llama"
	cfg.AI.OpenAIAPIKey = "sk-test"

	bf := NewBackendFactory(context.Background(), cfg, nil)
	backends := bf.CreateBackends("")
	require.Len(t, backends, len(models.BackendOrder))

	err := backends[3].Probe()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	assert.Equal(t, apperrors.ErrorTypeUnavailable, appErr.Type)
	assert.Equal(t, "check the llama configuration", appErr.Hint)
	assert.Contains(t, err.Error(), "unsupported AI provider: llama")

	// the other backends are unaffected
	assert.NoError(t, backends[1].Probe())
}

func TestNewComponentFactory(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Provider = config.ProviderGemini
	cfg.AI.GeminiAPIKey = "g-test"

	components := NewComponentFactory(context.Background(), cfg, nil)
	require.NotNil(t, components.StorageFactory)
	require.NotNil(t, components.BackendFactory)
	assert.NoError(t, components.BackendFactory.CreateBackends("")[3].Probe())
}

func TestNewVisionClient(t *testing.T) {
	client, err := NewVisionClient(context.Background(), config.AIConfig{Provider: config.ProviderOpenAI})
	require.NoError(t, err)
	assert.Nil(t, client)

	client, err = NewVisionClient(context.Background(), config.AIConfig{
		Provider:     config.ProviderOpenAI,
		Model:        "gpt-4o-mini",
		OpenAIAPIKey: "sk-test",
	})
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "openai", client.Provider())
	assert.Equal(t, "gpt-4o-mini", client.Model())

	client, err = NewVisionClient(context.Background(), config.AIConfig{
		Provider:     config.ProviderGemini,
		GeminiAPIKey: "g-test",
	})
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "gemini", client.Provider())
	assert.Equal(t, "gemini-2.5-flash", client.Model())
}

func TestOptionConversions(t *testing.T) {
	cfg := config.Default()
	cfg.Color.Seed = 11
	cfg.OCR.Language = "deu"
	cfg.AI.Model = "gpt-4.1"

	color := ColorOptions(cfg.Color)
	assert.Equal(t, analyzer.DefaultColorOptions().WithSeed(11), color)

	assert.Equal(t, "deu", TextOptions(cfg.OCR).Language)

	describe := DescribeOptions(cfg.AI)
	assert.Equal(t, "gpt-4.1", describe.Model)
	assert.Equal(t, analyzer.DescriptionPrompt, describe.Prompt)
	assert.Equal(t, 1000, describe.MaxTokens)
}
