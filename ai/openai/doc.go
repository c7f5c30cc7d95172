// Package openai provides an ai.Embedder backed by OpenAI-compatible
// embedding APIs via langchaingo. It works against any server speaking the
// OpenAI embeddings protocol, including Ollama and LocalAI.
package openai
