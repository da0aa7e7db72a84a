package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.Model)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.Host)
	assert.Equal(t, "embeddinggemma", cfg.Ollama.Model)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, ProviderOpenAI, cfg.Provider)
		assert.Equal(t, "text-embedding-3-small", cfg.OpenAI.Model)
	})

	t.Run("with provider", func(t *testing.T) {
		cfg := NewConfig(WithProvider(ProviderOllama))

		assert.Equal(t, ProviderOllama, cfg.Provider)
	})

	t.Run("with openai settings", func(t *testing.T) {
		cfg := NewConfig(
			WithOpenAIBaseURL("http://localhost:8080/v1"),
			WithOpenAIKey("sk-test"),
			WithOpenAIModel("text-embedding-3-large"),
		)

		assert.Equal(t, "http://localhost:8080/v1", cfg.OpenAI.BaseURL)
		assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
		assert.Equal(t, "text-embedding-3-large", cfg.OpenAI.Model)
	})

	t.Run("with ollama settings", func(t *testing.T) {
		cfg := NewConfig(
			WithProvider(ProviderOllama),
			WithOllamaHost("http://ollama:11434"),
			WithOllamaModel("nomic-embed-text"),
		)

		assert.Equal(t, "http://ollama:11434", cfg.Ollama.Host)
		assert.Equal(t, "nomic-embed-text", cfg.Ollama.Model)
	})
}

func TestConfigModel(t *testing.T) {
	t.Run("openai", func(t *testing.T) {
		cfg := NewConfig(WithOpenAIModel("text-embedding-3-small"))
		assert.Equal(t, "text-embedding-3-small", cfg.Model())
	})

	t.Run("ollama", func(t *testing.T) {
		cfg := NewConfig(WithProvider(ProviderOllama), WithOllamaModel("embeddinggemma"))
		assert.Equal(t, "embeddinggemma", cfg.Model())
	})

	t.Run("mock has no model", func(t *testing.T) {
		cfg := NewConfig(WithProvider(ProviderMock))
		assert.Equal(t, "", cfg.Model())
	})
}

func TestConfigNormalize(t *testing.T) {
	t.Run("adds v1 suffix to base url", func(t *testing.T) {
		cfg := NewConfig(WithOpenAIBaseURL("http://localhost:11434"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.OpenAI.BaseURL)
	})

	t.Run("strips trailing slash before suffix", func(t *testing.T) {
		cfg := NewConfig(WithOpenAIBaseURL("http://localhost:11434/"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.OpenAI.BaseURL)
	})

	t.Run("leaves empty base url alone", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Normalize()
		assert.Equal(t, "", cfg.OpenAI.BaseURL)
	})

	t.Run("preserves existing v1 suffix", func(t *testing.T) {
		cfg := NewConfig(WithOpenAIBaseURL("http://localhost:11434/v1"))
		cfg.Normalize()
		assert.Equal(t, "http://localhost:11434/v1", cfg.OpenAI.BaseURL)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid openai", func(t *testing.T) {
		cfg := NewConfig()
		require.NoError(t, cfg.Validate())
	})

	t.Run("openai missing model", func(t *testing.T) {
		cfg := NewConfig(WithOpenAIModel(""))
		require.Error(t, cfg.Validate())
	})

	t.Run("valid ollama", func(t *testing.T) {
		cfg := NewConfig(WithProvider(ProviderOllama))
		require.NoError(t, cfg.Validate())
	})

	t.Run("ollama missing host", func(t *testing.T) {
		cfg := NewConfig(WithProvider(ProviderOllama), WithOllamaHost(""))
		require.Error(t, cfg.Validate())
	})

	t.Run("mock needs nothing", func(t *testing.T) {
		cfg := NewConfig(WithProvider(ProviderMock))
		require.NoError(t, cfg.Validate())
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := NewConfig(WithProvider(Provider("cohere")))
		require.Error(t, cfg.Validate())
	})
}
