// Package llm asks the Anthropic API for conflict resolution advice.
// It is strictly advisory: suggestions are rendered for the operator
// and never applied automatically.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/daisuke19891023/goapgit/internal/models"
)

// Suggestion is one per-path resolution recommendation.
type Suggestion struct {
	Path       string  `json:"path"`
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// Client wraps the Anthropic API for conflict suggestions.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// buildPrompt constructs the system and user prompts for conflict suggestions.
func buildPrompt(conflicts []models.ConflictDetail, branch, goal string) (system string, user string) {
	system = `You advise on resolving git merge conflicts. Return ONLY a JSON array of objects with these fields:
- "path": the conflicted file path, copied exactly from the input
- "strategy": one of "ours", "theirs", "manual", "merge_driver"
- "confidence": a number between 0 and 1
- "rationale": one or two sentences explaining the recommendation

Rules:
- Recommend "ours" or "theirs" only when one side clearly supersedes the other for that file type
- Recommend "merge_driver" for structured files (JSON, YAML, lockfiles) where a three-way structural merge is likely to succeed
- Recommend "manual" whenever source code semantics could change
- Lockfiles regenerated by a package manager are usually safe to take wholesale and regenerate
- Return valid JSON only, no markdown fencing or explanation`

	var sb strings.Builder
	sb.WriteString("Branch: ")
	sb.WriteString(branch)
	sb.WriteString("\nGoal: ")
	sb.WriteString(goal)
	sb.WriteString("\n\nConflicted files:\n")
	for _, c := range conflicts {
		fmt.Fprintf(&sb, "- %s (type=%s, hunks=%d)\n", c.Path, c.Type, c.HunkCount)
	}
	user = sb.String()
	return
}

// SuggestResolutions sends the conflict list to the LLM and returns
// structured per-path suggestions.
func (c *Client) SuggestResolutions(ctx context.Context, conflicts []models.ConflictDetail, branch, goal string) ([]Suggestion, error) {
	if len(conflicts) == 0 {
		return nil, nil
	}
	systemPrompt, userPrompt := buildPrompt(conflicts, branch, goal)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 2048,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	// Extract text from response
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return ParseSuggestions(text)
}

// ParseSuggestions decodes the model's JSON reply, tolerating markdown
// fencing around the payload.
func ParseSuggestions(text string) ([]Suggestion, error) {
	text = stripFencing(text)

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(text), &suggestions); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}
	return suggestions, nil
}

// stripFencing removes a surrounding markdown code fence if present.
func stripFencing(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.SplitN(text, "\n", 2)
	if len(lines) > 1 {
		text = lines[1]
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
