package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Persona holds the fixed presentation and prompt text shared by every session.
type Persona struct {
	PageTitle        string `yaml:"page_title"`
	PageIcon         string `yaml:"page_icon"`
	InputPlaceholder string `yaml:"input_placeholder"`
	IndexingNotice   string `yaml:"indexing_notice"`
	ThinkingNotice   string `yaml:"thinking_notice"`
	Greeting         string `yaml:"greeting"`
	SystemPrompt     string `yaml:"system_prompt"`
}

func DefaultPersona() Persona {
	return Persona{
		PageTitle:        "Chat with the docs, powered by LlamaIndex",
		PageIcon:         "🦙",
		InputPlaceholder: "Your question",
		IndexingNotice:   "Loading and indexing the docs – hang tight! This should take 1-2 minutes.",
		ThinkingNotice:   "Thinking...",
		Greeting:         "สวัสดีครับ กอช.ยินดีให้บริการครับ",
		SystemPrompt: "You are กอช. Admin and you need to answer the specific question with your context " +
			"and explain the answer to be concise however, you need to answer in Thai language only (ภาษาไทยเท่านั้น)",
	}
}

// LoadPersona reads a YAML persona file. Fields missing from the file keep the
// values from base.
func LoadPersona(path string, base Persona) (*Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona file: %w", err)
	}

	persona := base
	if err := yaml.Unmarshal(data, &persona); err != nil {
		return nil, fmt.Errorf("failed to parse persona file: %w", err)
	}
	if persona.SystemPrompt == "" {
		return nil, fmt.Errorf("persona file %s has an empty system_prompt", path)
	}

	return &persona, nil
}
