package assistant

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"

	"github.com/armory-market/armory-backend/pkg/config"
)

// ModelClient abstracts the language-model round trip so turn handling
// can be exercised with a fake in tests.
type ModelClient interface {
	Generate(ctx context.Context, system string, messages []*ai.Message, tools []ai.ToolRef, maxTurns int) (string, error)
}

// GenkitClient drives an OpenAI-compatible model through Genkit. The
// tool-call loop (request, execute, feed results back, repeat) lives
// inside genkit.Generate; maxTurns bounds it.
type GenkitClient struct {
	g         *genkit.Genkit
	modelName string
	timeout   time.Duration
}

// NewGenkitClient initializes the Genkit runtime with the OpenAI plugin.
// The plugin reads OPENAI_API_KEY from the environment, so the configured
// key is exported before init.
func NewGenkitClient(ctx context.Context, cfg config.OpenAIConfig) (*GenkitClient, error) {
	if cfg.APIKey != "" {
		if err := os.Setenv("OPENAI_API_KEY", cfg.APIKey); err != nil {
			return nil, fmt.Errorf("exporting model api key: %w", err)
		}
	}
	g := genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
	if g == nil {
		return nil, fmt.Errorf("initializing genkit with openai provider")
	}
	return &GenkitClient{
		g:         g,
		modelName: cfg.Model,
		timeout:   cfg.RequestTimeout,
	}, nil
}

// Genkit exposes the runtime for tool registration.
func (c *GenkitClient) Genkit() *genkit.Genkit {
	return c.g
}

func (c *GenkitClient) Generate(ctx context.Context, system string, messages []*ai.Message, tools []ai.ToolRef, maxTurns int) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	response, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.modelName),
		ai.WithSystem(system),
		ai.WithMessages(messages...),
		ai.WithTools(tools...),
		ai.WithMaxTurns(maxTurns),
	)
	if err != nil {
		return "", err
	}
	return response.Text(), nil
}
