package factory

import (
	"fmt"

	"docchat-be/pkg/llm"
	"docchat-be/pkg/llm/gemini"
	"docchat-be/pkg/llm/ollama"
	"docchat-be/pkg/llm/openai"
)

type Settings struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	StaticReply string
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case "gemini", "":
		if s.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(s.APIKey, s.Model), nil
	case "ollama":
		return ollama.NewOllamaProvider(s.BaseURL, s.Model), nil
	case "openai":
		return openai.NewOpenAIProvider(s.APIKey, s.BaseURL, s.Model), nil
	case "static":
		reply := s.StaticReply
		if reply == "" {
			reply = "X"
		}
		return llm.NewStaticProvider(reply), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
