// Package gemini implements completion, embedding and token counting with
// Google Gemini.
package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/docqa"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used for completions.
const DefaultModel = "gemini-2.5-flash"

// defaultSystemInstruction applies when a request carries no system message.
const defaultSystemInstruction = "You are a helpful assistant answering questions about software documentation. Answer based only on the documentation provided. If the answer is not in the documentation, say so."

var _ docqa.Completer = (*Completer)(nil)

// Completer implements docqa.Completer using Google Gemini.
type Completer struct {
	client *genai.Client
	model  string
}

// NewCompleter creates a new Completer. An empty model selects DefaultModel.
func NewCompleter(client *genai.Client, model string) *Completer {
	if model == "" {
		model = DefaultModel
	}
	return &Completer{client: client, model: model}
}

// Complete sends the conversation in req to Gemini and returns the reply text.
func (c *Completer) Complete(ctx context.Context, req docqa.CompletionRequest) (string, error) {
	system, contents := BuildContents(req.Messages)
	if len(contents) == 0 {
		return "", docqa.Errorf(docqa.EINVALID, "at least one user message required")
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, BuildConfig(system, req.MaxTokens))
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", docqa.Errorf(docqa.EINTERNAL, "gemini returned nil result")
	}

	return strings.TrimSpace(result.Text()), nil
}

// BuildConfig returns the GenerateContentConfig for a completion.
// A blank system instruction selects the default documentation assistant.
func BuildConfig(system string, maxTokens int) *genai.GenerateContentConfig {
	if strings.TrimSpace(system) == "" {
		system = defaultSystemInstruction
	}
	temp := float32(0.4)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temp,
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	return config
}

// BuildContents splits messages into the system instruction and the
// conversation turns. Assistant turns map to the Gemini "model" role.
func BuildContents(messages []docqa.Message) (string, []*genai.Content) {
	var system []string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
		case "assistant", "model":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}
