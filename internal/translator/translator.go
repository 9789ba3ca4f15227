package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Translator turns guest text into the admin's reference language. Callers
// must treat any error as "use the original text": translation is best
// effort and never blocks a relay.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// ErrDisabled is returned when no translation credentials are configured.
var ErrDisabled = errors.New("translator is disabled")

// Disabled is the adapter used when no API key is configured.
type Disabled struct{}

func (Disabled) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	return "", ErrDisabled
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// New returns a translating client, or Disabled when apiKey is empty.
func New(apiKey, baseURL, model string) Translator {
	if apiKey == "" {
		return Disabled{}
	}
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Translate renders text in targetLanguage (a display name such as
// "Chinese"). On any failure the caller falls back to the original text.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role: "system",
				Content: fmt.Sprintf(
					"You are a translation engine. Translate the user's message into %s. Reply with the translation only.",
					targetLanguage,
				),
			},
			{Role: "user", Content: text},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation service returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("translation response has no choices")
	}

	translated := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if translated == "" {
		return "", fmt.Errorf("translation response is empty")
	}

	return translated, nil
}
