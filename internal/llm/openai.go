package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Fixed decoding parameters. Temperature is the only tunable; the message
// should be reproducible for a given day's context, so it defaults to 0.
const (
	topP      = 1.0
	maxTokens = 1000
)

// OpenAI is a Client for any OpenAI-compatible chat completion endpoint.
// With the GitHub Models base URL it authenticates with a GitHub token.
type OpenAI struct {
	client      openai.Client
	model       string
	temperature float64
}

// NewOpenAI creates a completion client against the given base URL.
func NewOpenAI(baseURL, apiKey, model string, temperature float64) *OpenAI {
	return &OpenAI{
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(apiKey),
		),
		model:       model,
		temperature: temperature,
	}
}

// Complete implements Client. The call is single-turn with no tools; the
// first choice's text is the result. Failures are not retried here;
// the caller decides what a failed generation means.
func (c *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
		TopP:        openai.Float(topP),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
