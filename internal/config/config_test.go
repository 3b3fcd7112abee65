package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/spend-insights/internal/analysis"
	"github.com/dvloznov/spend-insights/internal/storage"
)

func validConfig() Config {
	return Config{
		Port:                "5000",
		MaxUploadMB:         32,
		HTTPWriteTimeout:    time.Minute,
		JobWorkers:          2,
		JobQueueSize:        100,
		UploadDir:           "uploads",
		GoogleCloudLocation: "us-central1",
		ModelID:             "gemini-2.5-flash",
		ModelMaxTokens:      2048,
		ModelTemperature:    0.3,
		ModelTopP:           0.9,
		InputSheet:          "Customer Data Template",
		LogLevel:            "info",
		LogFormat:           "console",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{"valid", func(*Config) {}, ""},
		{"non-numeric port", func(c *Config) { c.Port = "abc" }, "invalid port 'abc': must be a number"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port 70000: must be between 1 and 65535"},
		{"upload too large", func(c *Config) { c.MaxUploadMB = 4096 }, "invalid max upload size 4096MB"},
		{"short write timeout", func(c *Config) { c.HTTPWriteTimeout = time.Millisecond }, "invalid HTTP write timeout"},
		{"no job workers", func(c *Config) { c.JobWorkers = 0 }, "invalid job workers 0"},
		{"job queue size", func(c *Config) { c.JobQueueSize = -1 }, "invalid job queue size -1"},
		{"empty upload dir", func(c *Config) { c.UploadDir = "" }, "upload directory cannot be empty"},
		{"credentials without bucket", func(c *Config) { c.StorageCredentialsFile = "creds.json" }, "REPORT_BUCKET is empty"},
		{"temperature", func(c *Config) { c.ModelTemperature = 3 }, "invalid model temperature 3"},
		{"top p", func(c *Config) { c.ModelTopP = 1.5 }, "invalid model top_p 1.5"},
		{"max tokens", func(c *Config) { c.ModelMaxTokens = 0 }, "invalid model max tokens 0"},
		{"missing categories file", func(c *Config) { c.CategoriesFile = "/nonexistent/categories.yaml" }, "categories file does not exist"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log level 'loud'"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "invalid log format 'xml'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "x"
	cfg.ModelID = ""
	cfg.InputSheet = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
	assert.Contains(t, err.Error(), "model id cannot be empty")
	assert.Contains(t, err.Error(), "input sheet name cannot be empty")
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_UPLOAD_MB", "8")
	t.Setenv("MODEL_TEMPERATURE", "0.5")
	t.Setenv("HTTP_WRITE_TIMEOUT", "90s")
	t.Setenv("MODEL_MAX_TOKENS", "not-a-number")
	t.Setenv("REPORT_BUCKET", "")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 8, cfg.MaxUploadMB)
	assert.Equal(t, int64(8<<20), cfg.MaxUploadBytes())
	assert.InDelta(t, 0.5, cfg.ModelTemperature, 1e-9)
	assert.Equal(t, 90*time.Second, cfg.HTTPWriteTimeout)
	assert.Equal(t, 2048, cfg.ModelMaxTokens)
	assert.Equal(t, "Customer Data Template", cfg.InputSheet)
	assert.Equal(t, "gemini-2.5-flash", cfg.ModelID)
	assert.Equal(t, 2, cfg.JobWorkers)
}

func TestConfig_Gemini(t *testing.T) {
	cfg := validConfig()
	cfg.GoogleCloudProject = "proj"

	g := cfg.Gemini()
	assert.Equal(t, "proj", g.Project)
	assert.Equal(t, "us-central1", g.Location)
	assert.EqualValues(t, 2048, g.MaxTokens)
	assert.InDelta(t, 0.3, g.Temperature, 1e-6)
}

func TestConfig_ReportStore(t *testing.T) {
	cfg := validConfig()
	cfg.UploadDir = t.TempDir()

	store, err := cfg.ReportStore()
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStore{}, store)

	cfg.ReportBucket = "reports"
	store, err = cfg.ReportStore()
	require.NoError(t, err)
	assert.IsType(t, &storage.GCSStore{}, store)
}

func TestConfig_Catalog(t *testing.T) {
	cfg := validConfig()
	c, err := cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, analysis.DefaultCatalog().Len(), c.Len())

	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - id: all_spend\n    name: All Spend\n"), 0o600))
	cfg.CategoriesFile = path

	c, err = cfg.Catalog()
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestConfig_ModelClient(t *testing.T) {
	cfg := validConfig()
	assert.Nil(t, cfg.ModelClient())

	cfg.GeminiAPIKey = "key"
	assert.NotNil(t, cfg.ModelClient())
}

func TestConfig_AnalyzerOptions(t *testing.T) {
	cfg := validConfig()
	cfg.UploadDir = t.TempDir()

	opts, err := cfg.AnalyzerOptions()
	require.NoError(t, err)
	assert.Equal(t, "Customer Data Template", opts.Sheet)
	require.NotNil(t, opts.Catalog)
	assert.Equal(t, analysis.DefaultCatalog().Len(), opts.Catalog.Len())
	assert.Nil(t, opts.Model)
	assert.IsType(t, &storage.LocalStore{}, opts.Store)

	cfg.CategoriesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.AnalyzerOptions()
	assert.Error(t, err)
}
