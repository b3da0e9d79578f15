package embedding

import "fmt"

type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

func NewEmbeddingProvider(s Settings) (EmbeddingProvider, error) {
	switch s.Provider {
	case "gemini", "":
		if s.APIKey == "" {
			return nil, fmt.Errorf("gemini embedding provider requires an API key")
		}
		return NewGeminiProvider(s.APIKey, s.Model), nil
	case "ollama":
		return NewOllamaProvider(s.BaseURL, s.Model), nil
	case "openai":
		return NewOpenAIProvider(s.APIKey, s.BaseURL, s.Model), nil
	case "hashing":
		return NewHashingProvider(HashingDefaultDimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", s.Provider)
	}
}
