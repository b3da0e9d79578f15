package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Keys: APIKeys{GoogleGemini: "key"},
		Ai:   AIConfig{EmbeddingProvider: "gemini", LLMProvider: "gemini"},
		Rag: RagConfig{
			DataDir:          "./data",
			VectorStore:      "memory",
			ChunkSize:        1024,
			ChunkOverlap:     200,
			SimilarityTopK:   2,
			MemoryTokenLimit: 15000,
		},
		Persona: DefaultPersona(),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "missing gemini key",
			mutate:  func(c *Config) { c.Keys.GoogleGemini = "" },
			wantErr: "GOOGLE_API_KEY",
		},
		{
			name: "ollama needs no key",
			mutate: func(c *Config) {
				c.Keys.GoogleGemini = ""
				c.Ai.EmbeddingProvider = "ollama"
				c.Ai.LLMProvider = "ollama"
			},
		},
		{
			name:    "openai without key",
			mutate:  func(c *Config) { c.Ai.LLMProvider = "openai" },
			wantErr: "OPENAI_API_KEY",
		},
		{
			name:    "pgvector without dsn",
			mutate:  func(c *Config) { c.Rag.VectorStore = "pgvector" },
			wantErr: "DB_CONNECTION_STRING",
		},
		{
			name:    "overlap larger than chunk",
			mutate:  func(c *Config) { c.Rag.ChunkOverlap = 2048 },
			wantErr: "invalid chunking",
		},
		{
			name:    "zero token limit",
			mutate:  func(c *Config) { c.Rag.MemoryTokenLimit = 0 },
			wantErr: "MEMORY_TOKEN_LIMIT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/docs")
	t.Setenv("MEMORY_TOKEN_LIMIT", "4000")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SIMILARITY_TOP_K", "not-a-number")

	cfg := Load()

	assert.Equal(t, "/srv/docs", cfg.Rag.DataDir)
	assert.Equal(t, 4000, cfg.Rag.MemoryTokenLimit)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 2, cfg.Rag.SimilarityTopK)
	assert.Equal(t, DefaultPersona().Greeting, cfg.Persona.Greeting)
}

func TestLoadPersonaOverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.yaml")
	require.NoError(t, os.WriteFile(path, []byte("greeting: Hello there\nsystem_prompt: Answer in English.\n"), 0o644))

	persona, err := LoadPersona(path, DefaultPersona())
	require.NoError(t, err)

	assert.Equal(t, "Hello there", persona.Greeting)
	assert.Equal(t, "Answer in English.", persona.SystemPrompt)
	assert.Equal(t, DefaultPersona().PageTitle, persona.PageTitle)
}

func TestLoadPersonaRejectsEmptyPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.yaml")
	require.NoError(t, os.WriteFile(path, []byte("system_prompt: \"\"\n"), 0o644))

	_, err := LoadPersona(path, DefaultPersona())
	assert.Error(t, err)
}

func TestValidateReportsUnusablePersonaFile(t *testing.T) {
	broken := filepath.Join(t.TempDir(), "persona.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("greeting: [unterminated\n"), 0o644))

	tests := []struct {
		name string
		path string
	}{
		{"malformed yaml", broken},
		{"missing file", filepath.Join(t.TempDir(), "nope.yaml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GOOGLE_API_KEY", "key")
			t.Setenv("PERSONA_FILE", tt.path)

			cfg := Load()
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorContains(t, err, "PERSONA_FILE")
		})
	}
}

func TestValidateAcceptsPersonaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.yaml")
	require.NoError(t, os.WriteFile(path, []byte("system_prompt: Answer in English.\n"), 0o644))
	t.Setenv("GOOGLE_API_KEY", "key")
	t.Setenv("PERSONA_FILE", path)

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Answer in English.", cfg.Persona.SystemPrompt)
}
