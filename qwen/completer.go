// Package qwen implements docqa.Completer against a Qwen text-generation
// endpoint speaking the DashScope request format.
package qwen

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/docqa"
)

// Defaults for the Qwen endpoint.
const (
	DefaultURL       = "http://localhost:8010/api/v1/services/aigc/text-generation/generation"
	DefaultModel     = "qwen-max"
	DefaultMaxTokens = 1000
	DefaultTimeout   = 60 * time.Second
)

// Sampling parameters sent with every request.
const (
	temperature = 0.7
	topP        = 0.8
)

var _ docqa.Completer = (*Completer)(nil)

// Completer calls a Qwen generation endpoint.
type Completer struct {
	URL    string
	APIKey string
	Model  string

	client *http.Client
}

// NewCompleter returns a Completer for url authenticated with apiKey.
// An empty url selects DefaultURL.
func NewCompleter(url, apiKey string) *Completer {
	if url == "" {
		url = DefaultURL
	}
	return &Completer{
		URL:    url,
		APIKey: apiKey,
		Model:  DefaultModel,
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

type request struct {
	Model      string     `json:"model"`
	Input      input      `json:"input"`
	Parameters parameters `json:"parameters"`
}

type input struct {
	Messages []docqa.Message `json:"messages"`
}

type parameters struct {
	ResultFormat string  `json:"result_format"`
	MaxTokens    int     `json:"max_tokens"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
}

type response struct {
	Output struct {
		Text string `json:"text"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Complete posts req and returns output.text of the response.
func (c *Completer) Complete(ctx context.Context, req docqa.CompletionRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", docqa.Errorf(docqa.EINVALID, "at least one message required")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	body, err := json.Marshal(request{
		Model: c.Model,
		Input: input{Messages: req.Messages},
		Parameters: parameters{
			ResultFormat: "text",
			MaxTokens:    maxTokens,
			Temperature:  temperature,
			TopP:         topP,
		},
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", docqa.Errorf(docqa.EINVALID, "invalid Qwen URL %q: %v", c.URL, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out response
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(out.Message)
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", docqa.Errorf(docqa.EINTERNAL, "qwen: HTTP %d: %s", resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return "", docqa.Errorf(docqa.EINTERNAL, "qwen: decode response: %v", decodeErr)
	}

	return strings.TrimSpace(out.Output.Text), nil
}
