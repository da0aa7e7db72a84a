// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Provider identifies an embedding-generation backend.
type Provider string

const (
	// ProviderOpenAI selects the OpenAI (or OpenAI-compatible) embedding API.
	ProviderOpenAI Provider = "openai"
	// ProviderOllama selects a local Ollama runtime.
	ProviderOllama Provider = "ollama"
	// ProviderMock selects the deterministic test double.
	ProviderMock Provider = "mock"
)

// OpenAIConfig holds settings for the OpenAI provider.
type OpenAIConfig struct {
	// BaseURL is the API base URL. Empty selects the hosted OpenAI API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server.
	BaseURL string

	// APIKey authenticates against the API. Local OpenAI-compatible servers
	// generally accept any value.
	APIKey string

	// Model is the embedding model identifier.
	// Example: "text-embedding-3-small"
	Model string
}

// OllamaConfig holds settings for the Ollama provider.
type OllamaConfig struct {
	// Host is the Ollama server base URL.
	// Example: "http://localhost:11434"
	Host string

	// Model is the embedding model identifier.
	// Example: "embeddinggemma"
	Model string
}

// Config holds the embedding provider configuration. Exactly one provider is
// active, selected by the Provider field; the matching sub-config supplies
// its settings.
type Config struct {
	Provider Provider
	OpenAI   OpenAIConfig
	Ollama   OllamaConfig
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider selects the active embedding provider.
func WithProvider(p Provider) ConfigOption {
	return func(c *Config) {
		c.Provider = p
	}
}

// WithOpenAIBaseURL sets the OpenAI API base URL.
func WithOpenAIBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.OpenAI.BaseURL = url
	}
}

// WithOpenAIKey sets the OpenAI API key.
func WithOpenAIKey(key string) ConfigOption {
	return func(c *Config) {
		c.OpenAI.APIKey = key
	}
}

// WithOpenAIModel sets the OpenAI embedding model.
func WithOpenAIModel(model string) ConfigOption {
	return func(c *Config) {
		c.OpenAI.Model = model
	}
}

// WithOllamaHost sets the Ollama server URL.
func WithOllamaHost(host string) ConfigOption {
	return func(c *Config) {
		c.Ollama.Host = host
	}
}

// WithOllamaModel sets the Ollama embedding model.
func WithOllamaModel(model string) ConfigOption {
	return func(c *Config) {
		c.Ollama.Model = model
	}
}

// DefaultConfig returns a Config selecting the hosted OpenAI API with its
// small embedding model.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		OpenAI: OpenAIConfig{
			Model: "text-embedding-3-small",
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "embeddinggemma",
		},
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithProvider(ai.ProviderOllama),
//	    ai.WithOllamaModel("embeddinggemma"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Model returns the model identifier of the active provider, or the empty
// string if the provider carries none.
func (c *Config) Model() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderOllama:
		return c.Ollama.Model
	default:
		return ""
	}
}

// Normalize ensures the configuration is in a canonical form. A non-empty
// OpenAI base URL gains the /v1 suffix required by OpenAI-compatible APIs
// (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.OpenAI.BaseURL != "" && !strings.HasSuffix(c.OpenAI.BaseURL, "/v1") {
		c.OpenAI.BaseURL = strings.TrimSuffix(c.OpenAI.BaseURL, "/")
		c.OpenAI.BaseURL = c.OpenAI.BaseURL + "/v1"
	}
	c.Ollama.Host = strings.TrimSuffix(c.Ollama.Host, "/")
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.Model == "" {
			return errors.New("ai config: OpenAI.Model is required")
		}
	case ProviderOllama:
		if c.Ollama.Host == "" {
			return errors.New("ai config: Ollama.Host is required")
		}
		if c.Ollama.Model == "" {
			return errors.New("ai config: Ollama.Model is required")
		}
	case ProviderMock:
		// No settings.
	default:
		return fmt.Errorf("ai config: unknown provider %q", c.Provider)
	}
	return nil
}
