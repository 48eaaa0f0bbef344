// Package groq is a minimal client for Groq's OpenAI-compatible chat
// completion API. Only the non-streaming completion path is implemented.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultModel is the completion model used when none is configured.
const DefaultModel = "llama-3.3-70b-versatile"

// Sampling fixes the generation parameters for one call site. They are not
// user-configurable; each call site in the engine picks its own values.
type Sampling struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// Client talks to a Groq-compatible /chat/completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// New creates a Client. baseURL defaults to the Groq cloud endpoint and
// model to DefaultModel when empty.
func New(baseURL, apiKey, model string) *Client {
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionReq struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
	Stream      bool      `json:"stream"`
}

type completionResp struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends prompt as a single user message and returns the model's
// reply, trimmed. Transport failures and malformed payloads are returned as
// errors; the client never retries.
func (c *Client) Complete(ctx context.Context, prompt string, s Sampling) (string, error) {
	body, _ := json.Marshal(completionReq{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		TopP:        s.TopP,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq complete: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("groq complete: read body: %w", err)
	}

	var result completionResp
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("groq complete: decode: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("groq complete: %s (%s)", result.Error.Message, result.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq complete: status %d", resp.StatusCode)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("groq complete: no choices in response")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
