package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spend-insights/internal/analysis"
	"github.com/dvloznov/spend-insights/internal/logger"
	"github.com/dvloznov/spend-insights/internal/narrative"
	"github.com/dvloznov/spend-insights/internal/pipeline"
	"github.com/dvloznov/spend-insights/internal/spreadsheet"
	"github.com/dvloznov/spend-insights/internal/storage"
)

type Config struct {
	// HTTP Server
	Port             string
	MaxUploadMB      int
	HTTPWriteTimeout time.Duration

	// Async jobs
	JobWorkers   int
	JobQueueSize int

	// Storage
	UploadDir              string
	ReportBucket           string
	ReportPrefix           string
	StorageCredentialsFile string

	// Model
	GoogleCloudProject  string
	GoogleCloudLocation string
	GeminiAPIKey        string
	ModelID             string
	ModelMaxTokens      int
	ModelTemperature    float64
	ModelTopP           float64

	// Analysis
	CategoriesFile string
	InputSheet     string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "5000"),
		MaxUploadMB:      getEnvInt("MAX_UPLOAD_MB", 32),
		HTTPWriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 5*time.Minute),

		JobWorkers:   getEnvInt("JOB_WORKERS", 2),
		JobQueueSize: getEnvInt("JOB_QUEUE_SIZE", 100),

		UploadDir:              getEnv("UPLOAD_DIR", storage.DefaultUploadDir),
		ReportBucket:           getEnv("REPORT_BUCKET", ""),
		ReportPrefix:           getEnv("REPORT_PREFIX", "reports"),
		StorageCredentialsFile: getEnv("STORAGE_CREDENTIALS_FILE", ""),

		GoogleCloudProject:  getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation: getEnv("GOOGLE_CLOUD_LOCATION", narrative.DefaultLocation),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		ModelID:             getEnv("MODEL_ID", narrative.DefaultModelName),
		ModelMaxTokens:      getEnvInt("MODEL_MAX_TOKENS", narrative.DefaultMaxTokens),
		ModelTemperature:    getEnvFloat("MODEL_TEMPERATURE", narrative.DefaultTemperature),
		ModelTopP:           getEnvFloat("MODEL_TOP_P", narrative.DefaultTopP),

		CategoriesFile: getEnv("CATEGORIES_FILE", ""),
		InputSheet:     getEnv("INPUT_SHEET", spreadsheet.DefaultSheet),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", string(logger.FormatConsole)),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.MaxUploadMB < 1 || c.MaxUploadMB > 1024 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %dMB: must be between 1 and 1024", c.MaxUploadMB))
	}
	if c.HTTPWriteTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid HTTP write timeout %v: must be at least 1 second", c.HTTPWriteTimeout))
	}

	if c.JobWorkers < 1 || c.JobWorkers > 64 {
		errors = append(errors, fmt.Sprintf("invalid job workers %d: must be between 1 and 64", c.JobWorkers))
	}
	if c.JobQueueSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid job queue size %d: must be positive", c.JobQueueSize))
	}

	if c.UploadDir == "" {
		errors = append(errors, "upload directory cannot be empty")
	}
	if c.ReportBucket == "" && c.StorageCredentialsFile != "" {
		errors = append(errors, "STORAGE_CREDENTIALS_FILE is set but REPORT_BUCKET is empty")
	}
	if c.StorageCredentialsFile != "" {
		if _, err := os.Stat(c.StorageCredentialsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("storage credentials file does not exist: %s", c.StorageCredentialsFile))
		}
	}

	if c.ModelID == "" {
		errors = append(errors, "model id cannot be empty")
	}
	if c.ModelMaxTokens < 1 || c.ModelMaxTokens > 65536 {
		errors = append(errors, fmt.Sprintf("invalid model max tokens %d: must be between 1 and 65536", c.ModelMaxTokens))
	}
	if c.ModelTemperature < 0 || c.ModelTemperature > 2 {
		errors = append(errors, fmt.Sprintf("invalid model temperature %v: must be between 0 and 2", c.ModelTemperature))
	}
	if c.ModelTopP < 0 || c.ModelTopP > 1 {
		errors = append(errors, fmt.Sprintf("invalid model top_p %v: must be between 0 and 1", c.ModelTopP))
	}

	if c.CategoriesFile != "" {
		if _, err := os.Stat(c.CategoriesFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("categories file does not exist: %s", c.CategoriesFile))
		}
	}
	if c.InputSheet == "" {
		errors = append(errors, "input sheet name cannot be empty")
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	if c.LogFormat != string(logger.FormatConsole) && c.LogFormat != string(logger.FormatJSON) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be console or json", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Logger builds the process logger from the logging settings.
func (c *Config) Logger() zerolog.Logger {
	return logger.NewWithLevel(logger.ParseLevel(c.LogLevel), logger.Format(c.LogFormat))
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Gemini returns the narrative model settings.
func (c *Config) Gemini() narrative.GeminiConfig {
	return narrative.GeminiConfig{
		Project:     c.GoogleCloudProject,
		Location:    c.GoogleCloudLocation,
		APIKey:      c.GeminiAPIKey,
		Model:       c.ModelID,
		MaxTokens:   int32(c.ModelMaxTokens),
		Temperature: float32(c.ModelTemperature),
		TopP:        float32(c.ModelTopP),
	}
}

// ModelClient returns the Gemini client, or nil when neither a project nor
// an API key is configured. A nil client skips the narrative.
func (c *Config) ModelClient() narrative.ModelClient {
	if c.GoogleCloudProject == "" && c.GeminiAPIKey == "" {
		return nil
	}
	return narrative.NewGeminiClient(c.Gemini())
}

// Catalog returns the category catalog, read from CategoriesFile when set.
func (c *Config) Catalog() (analysis.Catalog, error) {
	if c.CategoriesFile == "" {
		return analysis.DefaultCatalog(), nil
	}
	return analysis.LoadCatalog(c.CategoriesFile)
}

// ReportStore returns the bucket store when a bucket is configured and the
// local upload directory otherwise.
func (c *Config) ReportStore() (storage.ReportStore, error) {
	if c.ReportBucket == "" {
		return storage.NewLocalStore(c.UploadDir), nil
	}
	store, err := storage.NewGCSStore(c.ReportBucket, c.ReportPrefix, c.StorageCredentialsFile)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// AnalyzerOptions assembles the pipeline dependencies from the settings.
func (c *Config) AnalyzerOptions() (pipeline.Options, error) {
	catalog, err := c.Catalog()
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("load catalog: %w", err)
	}
	store, err := c.ReportStore()
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("create report store: %w", err)
	}
	return pipeline.Options{
		Sheet:   c.InputSheet,
		Catalog: &catalog,
		Model:   c.ModelClient(),
		Store:   store,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
