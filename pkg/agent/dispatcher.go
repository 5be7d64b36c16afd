package agent

import (
	"context"
	"fmt"

	"ai-supportdesk-be/internal/constant"
	"ai-supportdesk-be/internal/pkg/logger"
	"ai-supportdesk-be/pkg/llm"
	"ai-supportdesk-be/pkg/threadlog"
)

const (
	defaultMaxToolSteps = 5
	historyLimit        = 40

	fallbackReply = "Sorry, something went wrong on our side. A human operator will follow up shortly."
)

// Dispatcher routes a visitor prompt through the support agent. An
// unresolved conversation gets a model turn with tools bound; an escalated
// one is operator territory, so the prompt is recorded and nothing is
// generated.
type Dispatcher struct {
	provider   llm.LLMProvider
	transcript Transcript
	controls   ConversationControls
	searcher   KnowledgeSearcher
	logger     logger.ILogger
	maxSteps   int
}

func NewDispatcher(
	provider llm.LLMProvider,
	transcript Transcript,
	controls ConversationControls,
	searcher KnowledgeSearcher,
	log logger.ILogger,
	maxSteps int,
) *Dispatcher {
	if maxSteps <= 0 {
		maxSteps = defaultMaxToolSteps
	}
	return &Dispatcher{
		provider:   provider,
		transcript: transcript,
		controls:   controls,
		searcher:   searcher,
		logger:     log,
		maxSteps:   maxSteps,
	}
}

// Dispatch records the visitor prompt and, when the agent still owns the
// conversation, produces a reply. Returns the assistant reply, or "" when
// the conversation is escalated and no model turn happens. Callers must
// reject resolved conversations before dispatching.
func (d *Dispatcher) Dispatch(ctx context.Context, conv Conversation, prompt string) (string, error) {
	switch conv.Status {
	case constant.ConversationStatusResolved:
		return "", fmt.Errorf("conversation %s is resolved", conv.Id)

	case constant.ConversationStatusEscalated:
		if err := d.transcript.Append(ctx, conv.ThreadId, constant.MessageRoleUser, prompt, ""); err != nil {
			return "", err
		}
		return "", nil
	}

	if err := d.transcript.Append(ctx, conv.ThreadId, constant.MessageRoleUser, prompt, ""); err != nil {
		return "", err
	}

	// Escalate first. If the model call dies the conversation is already
	// in the operator queue instead of silently stuck.
	if err := d.controls.MarkEscalated(ctx, conv.ThreadId); err != nil {
		return "", err
	}

	reply := d.runToolLoop(ctx, conv)

	if err := d.transcript.Append(ctx, conv.ThreadId, constant.MessageRoleAssistant, reply, ""); err != nil {
		return "", err
	}
	return reply, nil
}

func (d *Dispatcher) runToolLoop(ctx context.Context, conv Conversation) string {
	tools := d.buildTools(conv)

	definitions := make([]llm.ToolDefinition, len(tools))
	handlers := make(map[string]func(context.Context, map[string]interface{}) string, len(tools))
	for i, tool := range tools {
		definitions[i] = tool.Definition
		handlers[tool.Definition.Name] = tool.Handler
	}

	messages, err := d.buildHistory(ctx, conv)
	if err != nil {
		d.logger.Error("agent", "failed to load thread history", map[string]interface{}{
			"thread_id": conv.ThreadId.String(),
			"error":     err.Error(),
		})
		return fallbackReply
	}

	for step := 0; step < d.maxSteps; step++ {
		result, err := d.provider.ChatWithTools(ctx, messages, definitions)
		if err != nil {
			d.logger.Error("agent", "model call failed", map[string]interface{}{
				"thread_id": conv.ThreadId.String(),
				"step":      step,
				"error":     err.Error(),
			})
			return fallbackReply
		}

		if len(result.ToolCalls) == 0 {
			if result.Content == "" {
				return fallbackReply
			}
			return result.Content
		}

		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   result.Content,
			ToolCalls: result.ToolCalls,
		})

		for _, call := range result.ToolCalls {
			handler, ok := handlers[call.Name]
			var output string
			if !ok {
				output = fmt.Sprintf("unknown tool: %s", call.Name)
			} else {
				output = handler(ctx, call.Arguments)
			}
			messages = append(messages, llm.Message{
				Role:     "tool",
				ToolName: call.Name,
				Content:  output,
			})
		}
	}

	d.logger.Warn("agent", "tool loop hit step bound", map[string]interface{}{
		"thread_id": conv.ThreadId.String(),
		"max_steps": d.maxSteps,
	})
	return fallbackReply
}

func (d *Dispatcher) buildHistory(ctx context.Context, conv Conversation) ([]llm.Message, error) {
	history, err := d.transcript.History(ctx, conv.ThreadId, historyLimit)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: constant.SupportAgentInstructions,
	})
	for _, entry := range history {
		if entry.Role == constant.MessageRoleTool {
			continue
		}
		messages = append(messages, historyMessage(entry))
	}
	return messages, nil
}

// historyMessage maps a transcript entry to a model message. Operator turns
// read as assistant turns so the model treats them as its own side of the
// conversation; tool turns are dropped, the loop replays its own.
func historyMessage(entry threadlog.Message) llm.Message {
	switch entry.Role {
	case constant.MessageRoleUser:
		return llm.Message{Role: "user", Content: entry.Content}
	case constant.MessageRoleOperator:
		return llm.Message{Role: "assistant", Content: entry.Content}
	default:
		return llm.Message{Role: "assistant", Content: entry.Content}
	}
}

// EnhanceResponse rewrites a draft operator reply into a polished one.
func (d *Dispatcher) EnhanceResponse(ctx context.Context, draft string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nOperator's message:\n%s", constant.OperatorMessageEnhancementPrompt, draft)
	enhanced, err := d.provider.Generate(ctx, prompt, llm.WithTemperature(0.4))
	if err != nil {
		return "", fmt.Errorf("enhance response: %w", err)
	}
	return enhanced, nil
}
