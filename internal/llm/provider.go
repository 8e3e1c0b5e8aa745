package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured text from a language model.
type Provider interface {
	// Generate sends a prompt and returns the model output. When
	// req.Schema is set the output is JSON validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Named is implemented by providers that know their vendor name.
type Named interface {
	ProviderName() string
}

// Request describes what to send to the model.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Explanations are single-turn, so this
	// is normally one user message.
	Messages []Message

	// Schema, when set, asks the provider for JSON conforming to it using
	// the vendor's native structured-output mechanism.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the vendor default.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is the JSON structure expected back.
type Schema struct {
	// Name identifies this schema for caching and vendor APIs.
	// Kebab-case, e.g. "survey-explanation".
	Name string

	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any
}

// Response is the model output.
type Response struct {
	// Content is validated JSON when a Schema was given, raw text otherwise.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, prompt string, schema *Schema, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		Schema:    schema,
		MaxTokens: maxTokens,
	}
}
