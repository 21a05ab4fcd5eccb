package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroqClient(url string) *groqClient {
	return &groqClient{
		apiKey:     "test-key",
		apiURL:     url,
		model:      "llama-test",
		httpClient: http.DefaultClient,
	}
}

func TestGroqGenerateJSON(t *testing.T) {
	arraySchema := &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}

	t.Run("UnwrapsArrayEnvelope", func(t *testing.T) {
		var captured map[string]any
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.Write([]byte(`{
				"choices": [{"message": {"role": "assistant", "content": "{\"items\": [\"a\", \"b\"]}"}}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
			}`))
		}))
		defer ts.Close()

		resp, err := newTestGroqClient(ts.URL).GenerateJSON(context.Background(), "list things", arraySchema)
		require.NoError(t, err)
		assert.JSONEq(t, `["a", "b"]`, resp.Content)
		assert.Equal(t, 12, resp.Usage.PromptTokens)
		assert.Equal(t, 5, resp.Usage.CompletionTokens)
		assert.Equal(t, "llama-test", resp.Usage.Model)

		format := captured["response_format"].(map[string]any)
		assert.Equal(t, "json_schema", format["type"])
		root := format["json_schema"].(map[string]any)["schema"].(map[string]any)
		assert.Equal(t, "object", root["type"])
		items := root["properties"].(map[string]any)["items"].(map[string]any)
		assert.Equal(t, "array", items["type"])
	})

	t.Run("ObjectSchemaNotWrapped", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": [{"message": {"content": "{\"items\": 1}"}}]}`))
		}))
		defer ts.Close()

		resp, err := newTestGroqClient(ts.URL).GenerateJSON(context.Background(), "p", &genai.Schema{Type: genai.TypeObject})
		require.NoError(t, err)
		assert.Equal(t, `{"items": 1}`, resp.Content)
	})

	t.Run("ErrorStatus", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`invalid api key`))
		}))
		defer ts.Close()

		_, err := newTestGroqClient(ts.URL).GenerateJSON(context.Background(), "p", arraySchema)
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "groq api error: status=401"), err.Error())
	})

	t.Run("NoChoices", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		}))
		defer ts.Close()

		_, err := newTestGroqClient(ts.URL).GenerateJSON(context.Background(), "p", arraySchema)
		assert.EqualError(t, err, "no content generated")
	})
}

func TestSchemaToJSON(t *testing.T) {
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"difficulty": {Type: genai.TypeString, Enum: []string{"Easy", "Hard"}},
			"calories":   {Type: genai.TypeNumber, Description: "kcal"},
			"steps":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"isVeg":      {Type: genai.TypeBoolean},
		},
		Required: []string{"difficulty", "isVeg"},
	}

	got := SchemaToJSON(schema)
	raw, err := json.Marshal(got)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "object",
		"properties": {
			"difficulty": {"type": "string", "enum": ["Easy", "Hard"]},
			"calories": {"type": "number", "description": "kcal"},
			"steps": {"type": "array", "items": {"type": "string"}},
			"isVeg": {"type": "boolean"}
		},
		"required": ["difficulty", "isVeg"]
	}`, string(raw))

	assert.Empty(t, SchemaToJSON(nil))
}
