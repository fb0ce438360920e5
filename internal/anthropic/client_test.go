package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	orig := MessagesURL
	MessagesURL = ts.URL
	t.Cleanup(func() { MessagesURL = orig })
	return &Client{
		APIKey:     "test-key",
		Model:      "test-model",
		MaxTokens:  1024,
		HTTPClient: ts.Client(),
	}
}

func textResponse(text string) []byte {
	body, _ := json.Marshal(map[string]any{
		"content": []map[string]any{{"type": "text", "text": text}},
	})
	return body
}

func TestCompleteSendsExpectedRequestShape(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var headers http.Header

	c := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write(textResponse("hello"))
	})

	text, err := c.Complete(context.Background(), "extract the votes")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 1024, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "extract the votes", got.Messages[0].Content)

	assert.Equal(t, "test-key", headers.Get("x-api-key"))
	assert.Equal(t, apiVersion, headers.Get("anthropic-version"))
}

func TestCompleteWithDocumentAttachesBase64PDF(t *testing.T) {
	var got struct {
		Messages []struct {
			Content []struct {
				Type   string `json:"type"`
				Text   string `json:"text"`
				Source *struct {
					Type      string `json:"type"`
					MediaType string `json:"media_type"`
					Data      string `json:"data"`
				} `json:"source"`
			} `json:"content"`
		} `json:"messages"`
	}

	c := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write(textResponse("{}"))
	})

	_, err := c.CompleteWithDocument(context.Background(), []byte("%PDF-1.4 fake"), "extract everything")
	require.NoError(t, err)

	require.Len(t, got.Messages, 1)
	blocks := got.Messages[0].Content
	require.Len(t, blocks, 2)
	assert.Equal(t, "document", blocks[0].Type)
	require.NotNil(t, blocks[0].Source)
	assert.Equal(t, "base64", blocks[0].Source.Type)
	assert.Equal(t, "application/pdf", blocks[0].Source.MediaType)
	assert.Equal(t, "JVBERi0xLjQgZmFrZQ==", blocks[0].Source.Data)
	assert.Equal(t, "text", blocks[1].Type)
	assert.Equal(t, "extract everything", blocks[1].Text)
}

func TestCompleteJSONSetsOutputConfig(t *testing.T) {
	var got struct {
		OutputConfig *struct {
			Format struct {
				Type   string          `json:"type"`
				Schema json.RawMessage `json:"schema"`
			} `json:"format"`
		} `json:"output_config"`
	}

	c := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write(textResponse(`{"votes": []}`))
	})

	schema := json.RawMessage(`{"type": "object"}`)
	text, err := c.CompleteJSON(context.Background(), "analyze", schema)
	require.NoError(t, err)
	assert.Equal(t, `{"votes": []}`, text)

	require.NotNil(t, got.OutputConfig)
	assert.Equal(t, "json_schema", got.OutputConfig.Format.Type)
	assert.JSONEq(t, `{"type": "object"}`, string(got.OutputConfig.Format.Schema))
}

func TestCompleteOmitsOutputConfig(t *testing.T) {
	var raw map[string]any
	c := withServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write(textResponse("ok"))
	})

	_, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.NotContains(t, raw, "output_config")
}

func TestCompleteMissingAPIKey(t *testing.T) {
	c := &Client{Model: "test-model"}
	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestCompleteNon2xxIncludesTruncatedBody(t *testing.T) {
	c := withServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad model"}}`))
	})

	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API 400")
	assert.Contains(t, err.Error(), "bad model")
}

func TestCompleteSkipsNonTextBlocks(t *testing.T) {
	c := withServer(t, func(w http.ResponseWriter, _ *http.Request) {
		body, _ := json.Marshal(map[string]any{
			"content": []map[string]any{
				{"type": "thinking", "text": ""},
				{"type": "text", "text": "the answer"},
			},
		})
		w.Write(body)
	})

	text, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "the answer", text)
}

func TestCompleteEmptyContent(t *testing.T) {
	c := withServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	})
	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"rows": []}`, `{"rows": []}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"json language tag", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"leading whitespace", "  ```json\n{}\n```  ", "{}"},
		{"unterminated fence", "```json\n{\"a\": 1}", `{"a": 1}`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFence(tt.in))
		})
	}
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"prose around object", "Here you go:\n{\"a\": 1}\nHope that helps!", `{"a": 1}`},
		{"nested braces kept", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"no braces unchanged", "no json here", "no json here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractObject(tt.in))
		})
	}
}

func TestDecodeRows(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		rows, err := DecodeRows(`[{"date": "2025-01-02"}]`)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "2025-01-02", rows[0]["date"])
	})

	t.Run("rows object", func(t *testing.T) {
		rows, err := DecodeRows(`{"rows": [{"date": "2025-01-02"}, {"date": "2025-02-03"}]}`)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("fenced rows object", func(t *testing.T) {
		rows, err := DecodeRows("```json\n{\"rows\": [{\"mover\": \"Trustee DuBuque\"}]}\n```")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Trustee DuBuque", rows[0]["mover"])
	})

	t.Run("non-object entries dropped", func(t *testing.T) {
		rows, err := DecodeRows(`["stray string", {"date": "2025-01-02"}, 42]`)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "2025-01-02", rows[0]["date"])
	})

	t.Run("object without rows key yields nothing", func(t *testing.T) {
		rows, err := DecodeRows(`{"unexpected": true}`)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("malformed is an error", func(t *testing.T) {
		_, err := DecodeRows("not json at all")
		require.Error(t, err)
	})

	t.Run("empty yields no rows", func(t *testing.T) {
		rows, err := DecodeRows("")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestMergeShallow(t *testing.T) {
	first := map[string]any{"meeting_metadata": map[string]any{"date": "2025-01-02"}, "votes": []any{}}
	second := map[string]any{"votes": []any{map[string]any{"motion": "adjourn"}}, "public_comments": []any{}}

	merged := MergeShallow(first, second)

	assert.Contains(t, merged, "meeting_metadata")
	assert.Contains(t, merged, "public_comments")
	// Second pass wins on conflicting keys.
	votes, ok := merged["votes"].([]any)
	require.True(t, ok)
	assert.Len(t, votes, 1)
}
