package oracle

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic implements Client on top of the official SDK.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates an Anthropic client.
func NewAnthropic(model, apiKey string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, &PermanentError{Message: "anthropic API key is empty"}
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Anthropic{client: client, model: model}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Review(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 8192
	}

	var resp Response
	err := retryWithBackoff(ctx, func() error {
		message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(a.model),
			MaxTokens: int64(maxTokens),
			System: []anthropic.TextBlockParam{
				{Text: req.Instruction},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(req.Content)),
			},
		})
		if err != nil {
			return classifyAnthropic(err)
		}

		var content string
		for _, block := range message.Content {
			if block.Type == "text" {
				content += block.Text
			}
		}
		resp = Response{
			Content:    content,
			TokensUsed: int(message.Usage.InputTokens + message.Usage.OutputTokens),
		}
		return nil
	})

	return resp, err
}

func classifyAnthropic(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return classifyStatus(apierr.StatusCode, apierr.Error())
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	// Anything else is a transport failure or a truncated/malformed
	// reply. Both warrant a retry; neither justifies aborting the
	// remaining chunks.
	return &TransientError{Message: err.Error()}
}
