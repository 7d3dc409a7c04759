package main

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	defaultRegion = "europe-west1"
	defaultModel  = "gemini-2.5-flash"
)

// GeminiClient wraps the Google GenAI client used to read grid screenshots.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates a client. With an API key it talks to the Gemini API;
// otherwise it uses VertexAI with Application Default Credentials
// (GOOGLE_APPLICATION_CREDENTIALS points at the service account key file).
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	cc := &genai.ClientConfig{
		Project:  cfg.GCPProjectID,
		Location: cfg.GCPRegion,
		Backend:  genai.BackendVertexAI,
	}
	if cc.Location == "" {
		cc.Location = defaultRegion
	}
	if cfg.GeminiAPIKey != "" {
		cc = &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := cfg.GeminiModel
	if model == "" {
		model = defaultModel
	}
	return &GeminiClient{
		client:    client,
		modelName: model,
	}, nil
}

// Close releases resources held by the client.
func (g *GeminiClient) Close() error {
	return nil
}
