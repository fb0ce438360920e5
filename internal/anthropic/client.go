// Package anthropic is a minimal client for the Messages API, covering the
// two request shapes the pipeline uses: a plain text prompt, and a base64
// PDF document attachment with instructions.
package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const apiVersion = "2023-06-01"

// MessagesURL is the Messages API endpoint. Package-level var for test
// substitution.
var MessagesURL = "https://api.anthropic.com/v1/messages"

// errBodyPreview caps how much of an error response body is surfaced.
const errBodyPreview = 500

// Client calls the Messages API. Calls are single-shot: a failed call fails
// the item and the batch moves on; there is no automatic retry.
type Client struct {
	APIKey     string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type apiRequest struct {
	Model        string        `json:"model"`
	MaxTokens    int           `json:"max_tokens"`
	Messages     []apiMessage  `json:"messages"`
	OutputConfig *outputConfig `json:"output_config,omitempty"`
}

type outputConfig struct {
	Format outputFormat `json:"format"`
}

type outputFormat struct {
	Type   string          `json:"type"`
	Schema json.RawMessage `json:"schema"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string, or []contentBlock for attachments
}

type contentBlock struct {
	Type   string          `json:"type"`
	Text   string          `json:"text,omitempty"`
	Source *documentSource `json:"source,omitempty"`
}

type documentSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends a single user message containing prompt and returns the
// first text block of the response.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.send(ctx, apiMessage{Role: "user", Content: prompt}, nil)
}

// CompleteJSON is Complete with structured output: the response is constrained
// to the given JSON schema, so the returned text is a single JSON document.
func (c *Client) CompleteJSON(ctx context.Context, prompt string, schema json.RawMessage) (string, error) {
	cfg := &outputConfig{Format: outputFormat{Type: "json_schema", Schema: schema}}
	return c.send(ctx, apiMessage{Role: "user", Content: prompt}, cfg)
}

// CompleteWithDocument attaches pdfData as a base64 document block followed
// by prompt as a text block, and returns the first text block of the response.
func (c *Client) CompleteWithDocument(ctx context.Context, pdfData []byte, prompt string) (string, error) {
	blocks := []contentBlock{
		{
			Type: "document",
			Source: &documentSource{
				Type:      "base64",
				MediaType: "application/pdf",
				Data:      base64.StdEncoding.EncodeToString(pdfData),
			},
		},
		{Type: "text", Text: prompt},
	}
	return c.send(ctx, apiMessage{Role: "user", Content: blocks}, nil)
}

func (c *Client) send(ctx context.Context, msg apiMessage, output *outputConfig) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("no API key configured: set ANTHROPIC_API_KEY in .env.local or .secrets/anthropic-api-key")
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 180 * time.Second}
	}

	body, err := json.Marshal(apiRequest{
		Model:        c.Model,
		MaxTokens:    c.MaxTokens,
		Messages:     []apiMessage{msg},
		OutputConfig: output,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, MessagesURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	reqID := uuid.New().String()
	start := time.Now()
	logger.Info("messages.request", "req_id", reqID, "model", c.Model, "bytes", len(body))

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("messages.send_error", "req_id", reqID, "error", err)
		return "", fmt.Errorf("calling Messages API: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	logger.Info("messages.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("API %d: %s", resp.StatusCode, preview(raw))
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in response")
}

func preview(body []byte) string {
	// Pretty-print JSON error bodies when possible; either way cap the length.
	var m map[string]any
	s := string(body)
	if err := json.Unmarshal(body, &m); err == nil {
		if pretty, err := json.MarshalIndent(m, "", "  "); err == nil {
			s = string(pretty)
		}
	}
	if len(s) > errBodyPreview {
		return s[:errBodyPreview]
	}
	return s
}
