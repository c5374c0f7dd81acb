package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {
	DefaultImage string `yaml:"default_image"`
	LogLevel     string `yaml:"log_level"`
	Format       string `yaml:"format"`

	Server ServerConfig `yaml:"server"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Azure  AzureConfig  `yaml:"azure"`
	Minio  MinioConfig  `yaml:"minio"`
	Color  ColorConfig  `yaml:"color"`
	OCR    OCRConfig    `yaml:"ocr"`
	AI     AIConfig     `yaml:"ai"`
}

type ServerConfig struct {
	Host               string        `yaml:"host"`
	Port               string        `yaml:"port"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`
}

type FetchConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	MaxBytes int64         `yaml:"max_bytes"`
}

type AzureConfig struct {
	AccountName string `yaml:"account_name"`
	AccountKey  string `yaml:"account_key"`
	// ServiceURL overrides https://<account>.blob.core.windows.net
	ServiceURL string `yaml:"service_url"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type ColorConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Epsilon       float64 `yaml:"epsilon"`
	Attempts      int     `yaml:"attempts"`
	MaxSamples    int     `yaml:"max_samples"`
	MaxPixels     int64   `yaml:"max_pixels"`
	Seed          int64   `yaml:"seed"`
}

type OCRConfig struct {
	Language      string `yaml:"language"`
	PreviewLength int    `yaml:"preview_length"`
}

type AIConfig struct {
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	MaxTokens     int           `yaml:"max_tokens"`
	Timeout       time.Duration `yaml:"timeout"`
	OpenAIAPIKey  string        `yaml:"openai_api_key"`
	OpenAIBaseURL string        `yaml:"openai_base_url"`
	GeminiAPIKey  string        `yaml:"gemini_api_key"`
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Server.Host)
	port := strings.TrimSpace(c.Server.Port)
	return net.JoinHostPort(host, port)
}

// APIKey returns the credential for the selected AI provider
func (c *AIConfig) APIKey() string {
	if c.Provider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		LogLevel: "warn",
		Format:   FormatText,
		Server: ServerConfig{
			Host:               "127.0.0.1",
			Port:               "8080",
			RequestTimeout:     3 * time.Minute,
			MaxRequestBodySize: 20 * 1024 * 1024, // 20MB
		},
		Fetch: FetchConfig{
			Timeout:  30 * time.Second,
			MaxBytes: 50 * 1024 * 1024,
		},
		Minio: MinioConfig{
			UseSSL: true,
		},
		Color: ColorConfig{
			MaxIterations: 10,
			Epsilon:       1.0,
			Attempts:      10,
			MaxSamples:    250000,
			MaxPixels:     178956970,
		},
		OCR: OCRConfig{
			Language:      "eng",
			PreviewLength: 500,
		},
		AI: AIConfig{
			Provider:  ProviderOpenAI,
			MaxTokens: 1000,
			Timeout:   2 * time.Minute,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path and the environment, in that order of precedence (last wins).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv is Load without a config file
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func (c *Config) applyEnv() {
	c.DefaultImage = getEnvOrDefault("IMAGE_READER_DEFAULT_IMAGE", c.DefaultImage)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.Format = getEnvOrDefault("IMAGE_READER_FORMAT", c.Format)

	c.Server.Host = getEnvOrDefault("HOST", c.Server.Host)
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Server.RequestTimeout = parseDurationOrDefault("REQUEST_TIMEOUT", c.Server.RequestTimeout)
	c.Server.MaxRequestBodySize = parseIntOrDefault("MAX_REQUEST_BODY_SIZE", c.Server.MaxRequestBodySize)

	c.Fetch.Timeout = parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", c.Fetch.Timeout)
	c.Fetch.MaxBytes = parseIntOrDefault("IMAGE_FETCH_MAX_BYTES", c.Fetch.MaxBytes)

	c.Azure.AccountName = getEnvOrDefault("AZURE_STORAGE_ACCOUNT", c.Azure.AccountName)
	c.Azure.AccountKey = getEnvOrDefault("AZURE_STORAGE_KEY", c.Azure.AccountKey)
	c.Azure.ServiceURL = getEnvOrDefault("AZURE_STORAGE_SERVICE_URL", c.Azure.ServiceURL)

	c.Minio.Endpoint = getEnvOrDefault("MINIO_ENDPOINT", c.Minio.Endpoint)
	c.Minio.AccessKey = getEnvOrDefault("MINIO_ACCESS_KEY", c.Minio.AccessKey)
	c.Minio.SecretKey = getEnvOrDefault("MINIO_SECRET_KEY", c.Minio.SecretKey)
	c.Minio.Region = getEnvOrDefault("MINIO_REGION", c.Minio.Region)
	c.Minio.UseSSL = parseBoolOrDefault("MINIO_USE_SSL", c.Minio.UseSSL)

	c.Color.MaxIterations = int(parseIntOrDefault("COLOR_MAX_ITERATIONS", int64(c.Color.MaxIterations)))
	c.Color.Epsilon = parseFloatOrDefault("COLOR_EPSILON", c.Color.Epsilon)
	c.Color.Attempts = int(parseIntOrDefault("COLOR_ATTEMPTS", int64(c.Color.Attempts)))
	c.Color.MaxSamples = int(parseIntOrDefault("COLOR_MAX_SAMPLES", int64(c.Color.MaxSamples)))
	c.Color.MaxPixels = parseIntOrDefault("COLOR_MAX_PIXELS", c.Color.MaxPixels)
	c.Color.Seed = parseIntOrDefault("COLOR_SEED", c.Color.Seed)

	c.OCR.Language = getEnvOrDefault("OCR_LANGUAGE", c.OCR.Language)
	c.OCR.PreviewLength = int(parseIntOrDefault("OCR_PREVIEW_LENGTH", int64(c.OCR.PreviewLength)))

	c.AI.Provider = strings.ToLower(getEnvOrDefault("AI_PROVIDER", c.AI.Provider))
	c.AI.Model = getEnvOrDefault("AI_MODEL", c.AI.Model)
	c.AI.MaxTokens = int(parseIntOrDefault("AI_MAX_TOKENS", int64(c.AI.MaxTokens)))
	c.AI.Timeout = parseDurationOrDefault("AI_TIMEOUT", c.AI.Timeout)
	c.AI.OpenAIAPIKey = getEnvOrDefault("OPENAI_API_KEY", c.AI.OpenAIAPIKey)
	c.AI.OpenAIBaseURL = getEnvOrDefault("OPENAI_BASE_URL", c.AI.OpenAIBaseURL)
	c.AI.GeminiAPIKey = getEnvOrDefault("GEMINI_API_KEY", getEnvOrDefault("GOOGLE_API_KEY", c.AI.GeminiAPIKey))
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Server.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Server.Port)
	}
	if c.Server.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.Server.MaxRequestBodySize)
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("IMAGE_FETCH_MAX_BYTES must be > 0 (got %d)", c.Fetch.MaxBytes)
	}
	if c.Server.RequestTimeout <= 0 || c.Fetch.Timeout <= 0 || c.AI.Timeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, ai=%s)",
			c.Server.RequestTimeout, c.Fetch.Timeout, c.AI.Timeout)
	}
	if c.Color.MaxIterations <= 0 || c.Color.Attempts <= 0 || c.Color.MaxSamples <= 0 {
		return fmt.Errorf("color iterations, attempts and max samples must be > 0")
	}
	if c.Color.MaxPixels <= 0 {
		return fmt.Errorf("COLOR_MAX_PIXELS must be > 0 (got %d)", c.Color.MaxPixels)
	}
	if c.Color.Epsilon < 0 {
		return fmt.Errorf("COLOR_EPSILON must be >= 0 (got %g)", c.Color.Epsilon)
	}
	if c.OCR.PreviewLength <= 0 {
		return fmt.Errorf("OCR_PREVIEW_LENGTH must be > 0 (got %d)", c.OCR.PreviewLength)
	}
	if c.AI.MaxTokens <= 0 {
		return fmt.Errorf("AI_MAX_TOKENS must be > 0 (got %d)", c.AI.MaxTokens)
	}
	switch c.AI.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unsupported AI provider: %q", c.AI.Provider)
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unsupported output format: %q", c.Format)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
