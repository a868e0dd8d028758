package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/stripscan/internal/domain/ai"
	"github.com/bryanwahyu/stripscan/internal/domain/diagnosis"
	"github.com/bryanwahyu/stripscan/internal/infra/ai/prompt"
	"github.com/bryanwahyu/stripscan/internal/infra/imaging"
)

const (
	DefaultModel     = "gpt-4o"
	DefaultMaxTokens = 300
)

// ChatCompleter is the part of *openai.Client the advisor needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client implements diagnosis.Advisor on top of the chat completions API.
type Client struct {
	api       ChatCompleter
	Model     string
	MaxTokens int
}

// NewClient builds a client for apiKey. baseURL overrides the API endpoint
// when not empty.
func NewClient(apiKey, baseURL, model string, maxTokens int) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewWithAPI(openai.NewClientWithConfig(cfg), model, maxTokens)
}

// NewWithAPI wraps an existing completer, e.g. a test double.
func NewWithAPI(api ChatCompleter, model string, maxTokens int) *Client {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Client{api: api, Model: model, MaxTokens: maxTokens}
}

// Diagnose sends one request and returns the trimmed text of the first choice.
func (c *Client) Diagnose(ctx context.Context, in diagnosis.Input) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.Model,
		Messages: BuildMessages(in),
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(c.Model) {
		req.MaxCompletionTokens = c.MaxTokens
	} else {
		req.MaxTokens = c.MaxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %s", domai.ErrQuotaExceeded, apiErr.Message)
		}
		return "", diagnosis.E(diagnosis.KindRemoteModel, "", err)
	}
	if len(resp.Choices) == 0 {
		return "", diagnosis.E(diagnosis.KindRemoteModel, "", domai.ErrEmptyResponse)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// BuildMessages lays out the conversation: system policy, optional chart
// turn, then the subject image.
func BuildMessages(in diagnosis.Input) []openai.ChatCompletionMessage {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.SystemPrompt(in.WithGuide)},
	}
	if in.ReferenceImageB64 != "" {
		msgs = append(msgs, imageTurn(prompt.ReferenceTurn, in.ReferenceImageB64))
	}
	return append(msgs, imageTurn(prompt.SubjectTurn, in.UserImageB64))
}

func imageTurn(text, b64 string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: text},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    imaging.DataURL(b64),
					Detail: openai.ImageURLDetailAuto,
				},
			},
		},
	}
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}
