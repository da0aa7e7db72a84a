// Package openai implements ai.Embedder against OpenAI-compatible
// embedding APIs, including the hosted OpenAI service and local servers
// that speak the same protocol (Ollama, LocalAI, vLLM).
package openai
