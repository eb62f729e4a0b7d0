package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
)

var _ Completer = (*OpenAIClient)(nil)

// OpenAIClient отправляет контекст диалога в OpenAI Chat Completions.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(client *openai.Client, model string) *OpenAIClient {
	return &OpenAIClient{client: client, model: model}
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, p Params) ([]string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, c.buildParams(messages, p))
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion: пустой ответ без вариантов")
	}

	answers := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		answers = append(answers, choice.Message.Content)
	}
	return answers, nil
}

// buildParams собирает запрос Chat Completions. Температура отправляется
// всегда: 0 — валидное детерминированное значение, а не «не задано».
func (c *OpenAIClient) buildParams(messages []Message, p Params) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
		Temperature: openai.Float(p.Temperature),
	}
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}
	if p.MaxAnswerTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.MaxAnswerTokens))
	}
	if p.CandidateCount > 0 {
		params.N = openai.Int(int64(p.CandidateCount))
	}
	return params
}
