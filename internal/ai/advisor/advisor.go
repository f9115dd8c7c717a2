package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultModel = "gpt-4o"

// Advisor generates scored career advice from extracted resume data
type Advisor struct {
	client *openai.Client
	model  string
}

// NewAdvisor creates an Advisor; an empty model selects the default
func NewAdvisor(apiKey, model string) *Advisor {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)
	if model == "" {
		model = defaultModel
	}

	return &Advisor{
		client: &client,
		model:  model,
	}
}

// Model returns the chat model advice is generated with
func (a *Advisor) Model() string {
	return a.model
}

// GenerateAdvice runs the evaluation prompt over serialized resume data
// and returns the markdown advice text.
func (a *Advisor) GenerateAdvice(ctx context.Context, resumeData string) (string, error) {
	if resumeData == "" {
		return "", errors.New("no resume data provided for analysis")
	}

	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildPrompt(resumeData)),
		},
		Model:       openai.ChatModel(a.model),
		Temperature: openai.Float(0.5),
		MaxTokens:   openai.Int(1200),
		TopP:        openai.Float(0.8),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat api error: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("no response from openai")
	}

	return completion.Choices[0].Message.Content, nil
}
