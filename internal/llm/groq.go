package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"todays-meal/internal/config"
	"todays-meal/internal/shared"

	"github.com/google/generative-ai-go/genai"
)

// groqClient is a client for the Groq API.
type groqClient struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
}

const defaultGroqAPIURL = "https://api.groq.com/openai/v1/chat/completions"

// NewGroqClient creates a new Groq API client. cfg.GroqAPIURL may point at
// any OpenAI-compatible endpoint. No timeout is set on the transport;
// callers bound requests through ctx.
func NewGroqClient(cfg *config.Config) Client {
	apiURL := cfg.GroqAPIURL
	if apiURL == "" {
		apiURL = defaultGroqAPIURL
	}
	return &groqClient{
		apiKey:     cfg.GroqAPIKey,
		apiURL:     apiURL,
		model:      cfg.GroqModel,
		httpClient: &http.Client{},
	}
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateJSON sends a prompt to the Groq model with a json_schema response
// format. Groq only accepts object roots, so array schemas travel wrapped in
// {"items": ...} and are unwrapped before returning.
func (c *groqClient) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (ContentResponse, error) {
	root := SchemaToJSON(schema)
	wrapped := schema != nil && schema.Type == genai.TypeArray
	if wrapped {
		root = map[string]any{
			"type":                 "object",
			"properties":           map[string]any{"items": root},
			"required":             []string{"items"},
			"additionalProperties": false,
		}
	}

	reqBody := map[string]any{
		"model": c.model,
		"messages": []groqMessage{
			{Role: "system", Content: "Respond only with JSON that matches the provided schema."},
			{Role: "user", Content: prompt},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "response",
				"schema": root,
			},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, fmt.Errorf("groq api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var groqResp groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&groqResp); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	out := ContentResponse{
		Usage: shared.TokenUsage{
			PromptTokens:     groqResp.Usage.PromptTokens,
			CompletionTokens: groqResp.Usage.CompletionTokens,
			TotalTokens:      groqResp.Usage.TotalTokens,
			Model:            c.model,
		},
	}
	if len(groqResp.Choices) == 0 {
		return out, fmt.Errorf("no content generated")
	}

	out.Content = groqResp.Choices[0].Message.Content
	if wrapped {
		var envelope struct {
			Items json.RawMessage `json:"items"`
		}
		// Anything that is not the envelope is handed back untouched so the
		// caller reports it as a malformed payload.
		if err := json.Unmarshal([]byte(out.Content), &envelope); err == nil && len(envelope.Items) > 0 {
			out.Content = string(envelope.Items)
		}
	}
	return out, nil
}

// Close is a no-op; the HTTP client holds no resources worth releasing.
func (c *groqClient) Close() error {
	return nil
}
