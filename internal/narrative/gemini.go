package narrative

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// Model defaults.
const (
	DefaultModelName   = "gemini-2.5-flash"
	DefaultLocation    = "us-central1"
	DefaultMaxTokens   = 2048
	DefaultTemperature = 0.3
	DefaultTopP        = 0.9
)

// GeminiConfig selects the model and sampling parameters.
// With APIKey set the Gemini API backend is used; otherwise Vertex AI with
// Application Default Credentials in Project and Location.
type GeminiConfig struct {
	Project     string
	Location    string
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
	TopP        float32

	// BaseURL overrides the service endpoint.
	BaseURL string
}

// DefaultGeminiConfig returns the Vertex AI configuration for project.
func DefaultGeminiConfig(project string) GeminiConfig {
	return GeminiConfig{
		Project:     project,
		Location:    DefaultLocation,
		Model:       DefaultModelName,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
	}
}

// GeminiClient implements ModelClient with google.golang.org/genai.
type GeminiClient struct {
	cfg GeminiConfig
}

// NewGeminiClient returns a client for cfg. No connection is made until
// Generate is called.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	if cfg.Model == "" {
		cfg.Model = DefaultModelName
	}
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &GeminiClient{cfg: cfg}
}

// Model returns the configured model id.
func (c *GeminiClient) Model() string { return c.cfg.Model }

func (c *GeminiClient) clientConfig() *genai.ClientConfig {
	cc := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1", BaseURL: c.cfg.BaseURL},
	}
	if c.cfg.APIKey != "" {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = c.cfg.APIKey
		return cc
	}
	cc.Backend = genai.BackendVertexAI
	cc.Project = c.cfg.Project
	cc.Location = c.cfg.Location
	return cc
}

// Generate sends prompt as a single user message.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, c.clientConfig())
	if err != nil {
		return "", fmt.Errorf("%w: create genai client: %v", ErrAuth, err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.cfg.Temperature),
		TopP:            genai.Ptr(c.cfg.TopP),
		MaxOutputTokens: c.cfg.MaxTokens,
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, contents, config)
	if err != nil {
		return "", classify(err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrMalformedResponse
	}
	return text, nil
}

// classify maps a genai error onto ErrAuth or ErrNetwork and keeps its
// message.
func classify(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	}

	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
