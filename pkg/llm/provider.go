package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system", "tool"
	Content string

	// ToolCalls is set on assistant messages that requested tool execution.
	ToolCalls []ToolCall

	// ToolName is set on "tool" role messages carrying a tool result.
	ToolName string
}

// ToolCall is a model-requested invocation of a declared tool.
type ToolCall struct {
	Name      string
	Arguments map[string]interface{}
}

// ToolDefinition declares a callable tool to the model. Parameters is a
// JSON schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ChatResult is the outcome of a tool-enabled chat turn. Either Content
// is a final answer or ToolCalls is non-empty, never both meaningfully.
type ChatResult struct {
	Content   string
	ToolCalls []ToolCall
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatWithTools sends a chat history plus tool declarations and returns
	// either a final answer or the tool calls the model wants executed
	ChatWithTools(ctx context.Context, history []Message, tools []ToolDefinition, options ...Option) (*ChatResult, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
