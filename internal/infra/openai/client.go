package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/shared"

	"github.com/JDRienow/brokerchat-sub001/internal/core/chat"
)

// DefaultModel はデフォルトで使用するチャットモデル
const DefaultModel = "gpt-4o-mini"

// Client は OpenAI Chat Completions を使用した回答生成クライアント
type Client struct {
	client openai.Client
	model  string
}

type clientOptions struct {
	model   string
	baseURL string
}

// ClientOption は Client のオプション設定
type ClientOption func(*clientOptions)

// WithModel はチャットモデルを上書きする
func WithModel(model string) ClientOption {
	return func(o *clientOptions) {
		o.model = model
	}
}

// WithBaseURL はAPIのベースURLを上書きする
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// NewClient は新しい Client を作成する
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	options := clientOptions{model: DefaultModel}
	for _, opt := range opts {
		opt(&options)
	}

	return &Client{
		client: newSDKClient(apiKey, options.baseURL),
		model:  options.model,
	}, nil
}

// ModelName はモデル名を返す
func (c *Client) ModelName() string {
	return c.model
}

// Complete はシステムプロンプトと質問から回答を生成する
func (c *Client) Complete(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.Question),
		},
		Temperature: openai.Float(req.Temperature),
	}

	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	choice := completion.Choices[0]
	return &chat.Completion{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Model:        completion.Model,
		Usage: chat.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}, nil
}

// インターフェース実装の確認
var _ chat.Completer = (*Client)(nil)
