package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("gemini returned an empty response")

// Client generates text with a Gemini model.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient connects with an API key.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: client, model: client.GenerativeModel(model)}, nil
}

// GenerateContent returns the text of the first candidate.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", ErrEmptyResponse
	}
	return answer, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}
