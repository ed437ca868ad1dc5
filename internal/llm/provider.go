package llm

import (
	"context"
	"fmt"

	"dietmind/internal/config"
)

// NewTextGenerator returns the generator selected by cfg.LLMProvider.
// Callers should close it when it also implements Closer.
func NewTextGenerator(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}
