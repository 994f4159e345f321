package oracle

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI implements Client using the go-openai SDK.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI client.
func NewOpenAI(model, apiKey string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, &PermanentError{Message: "openai API key is empty"}
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Review(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 8192
	}

	var resp Response
	err := retryWithBackoff(ctx, func() error {
		completion, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       o.model,
			MaxTokens:   maxTokens,
			Temperature: float32(req.Temperature),
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: req.Instruction},
				{Role: openai.ChatMessageRoleUser, Content: req.Content},
			},
		})
		if err != nil {
			return classifyOpenAI(err)
		}
		if len(completion.Choices) == 0 {
			return &TransientError{Message: "empty response from service"}
		}
		resp = Response{
			Content:    completion.Choices[0].Message.Content,
			TokensUsed: completion.Usage.TotalTokens,
		}
		return nil
	})

	return resp, err
}

func classifyOpenAI(err error) error {
	var apierr *openai.APIError
	if errors.As(err, &apierr) {
		return classifyStatus(apierr.HTTPStatusCode, apierr.Message)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	// Transport failures and truncated or malformed replies are both
	// retried; they must not abort the remaining chunks.
	return &TransientError{Message: err.Error()}
}
