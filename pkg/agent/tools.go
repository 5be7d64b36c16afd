package agent

import (
	"context"
	"fmt"
	"strings"

	"ai-supportdesk-be/internal/constant"
	"ai-supportdesk-be/pkg/llm"

	"github.com/google/uuid"
)

// Tool binds a model-visible declaration to its handler. Handlers report
// failures as diagnostic strings so a broken tool never aborts the loop;
// the model sees the diagnostic and can route around it.
type Tool struct {
	Definition llm.ToolDefinition
	Handler    func(ctx context.Context, args map[string]interface{}) string
}

const (
	toolNameSearch   = "search"
	toolNameEscalate = "escalateConversation"
	toolNameResolve  = "resolveConversation"

	knowledgeSearchLimit = 5
)

func (d *Dispatcher) buildTools(conv Conversation) []Tool {
	return []Tool{
		{
			Definition: llm.ToolDefinition{
				Name:        toolNameSearch,
				Description: "Search the organization's knowledge base for information relevant to the user's question.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"query": map[string]interface{}{
							"type":        "string",
							"description": "The search query, phrased as the information need.",
						},
					},
					"required": []string{"query"},
				},
			},
			Handler: func(ctx context.Context, args map[string]interface{}) string {
				return d.handleSearch(ctx, conv, args)
			},
		},
		{
			Definition: llm.ToolDefinition{
				Name:        toolNameEscalate,
				Description: "Escalate this conversation to a human operator. Use when the user asks for a human or the issue cannot be solved here.",
				Parameters: map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{},
				},
			},
			Handler: func(ctx context.Context, args map[string]interface{}) string {
				return d.handleEscalate(ctx, conv)
			},
		},
		{
			Definition: llm.ToolDefinition{
				Name:        toolNameResolve,
				Description: "Mark this conversation as resolved. Use only when the user confirms their issue is solved.",
				Parameters: map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{},
				},
			},
			Handler: func(ctx context.Context, args map[string]interface{}) string {
				return d.handleResolve(ctx, conv)
			},
		},
	}
}

func (d *Dispatcher) handleSearch(ctx context.Context, conv Conversation, args map[string]interface{}) string {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return "search failed: empty query"
	}

	hits, err := d.searcher.Search(ctx, conv.OrganizationId, query, knowledgeSearchLimit)
	if err != nil {
		d.logger.Error("agent", "knowledge search failed", map[string]interface{}{"error": err.Error()})
		return fmt.Sprintf("search failed: %v", err)
	}
	if len(hits) == 0 {
		return "No relevant results found in the knowledge base."
	}

	var results strings.Builder
	for i, hit := range hits {
		fmt.Fprintf(&results, "[%d] %s\n%s\n\n", i+1, hit.Title, hit.Content)
	}

	// The interpreter pass condenses raw chunks into something the main
	// loop can use directly.
	prompt := fmt.Sprintf("%s\n\nQuestion: %s\n\nSearch results:\n%s",
		constant.SearchInterpreterPrompt, query, results.String())
	summary, err := d.provider.Generate(ctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		d.logger.Error("agent", "search interpretation failed", map[string]interface{}{"error": err.Error()})
		return fmt.Sprintf("search interpretation failed: %v", err)
	}

	if appendErr := d.transcript.Append(ctx, conv.ThreadId, "assistant", summary, ""); appendErr != nil {
		d.logger.Error("agent", "failed to persist search summary", map[string]interface{}{"error": appendErr.Error()})
	}
	return summary
}

func (d *Dispatcher) handleEscalate(ctx context.Context, conv Conversation) string {
	if conv.ThreadId == uuid.Nil {
		return "missing thread id"
	}
	if err := d.controls.Escalate(ctx, conv.ThreadId); err != nil {
		d.logger.Error("agent", "escalate tool failed", map[string]interface{}{"error": err.Error()})
		return fmt.Sprintf("escalation failed: %v", err)
	}
	return constant.EscalatedAnnouncement
}

func (d *Dispatcher) handleResolve(ctx context.Context, conv Conversation) string {
	if conv.ThreadId == uuid.Nil {
		return "missing thread id"
	}
	if err := d.controls.Resolve(ctx, conv.ThreadId); err != nil {
		d.logger.Error("agent", "resolve tool failed", map[string]interface{}{"error": err.Error()})
		return fmt.Sprintf("resolution failed: %v", err)
	}
	return constant.ResolvedAnnouncement
}
