package embedding

import (
	"context"
	"fmt"

	"docchat-be/pkg/llm/openai"

	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider embeds text through any OpenAI-compatible /embeddings endpoint.
type OpenAIProvider struct {
	client *goopenai.Client
	Model  string
}

func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = string(goopenai.SmallEmbedding3)
	}
	return &OpenAIProvider{
		client: goopenai.NewClientWithConfig(cfg),
		Model:  model,
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	resp, err := p.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input: []string{text},
		Model: goopenai.EmbeddingModel(p.Model),
	})
	if err != nil {
		return nil, openai.MapError(err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embedding response has no data")
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: resp.Data[0].Embedding},
	}, nil
}
