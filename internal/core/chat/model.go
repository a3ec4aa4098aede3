package chat

import (
	"github.com/google/uuid"

	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
)

// AskParams は質問応答のパラメータを表す
type AskParams struct {
	DocumentID uuid.UUID // 対象ドキュメント
	Question   string    // ユーザーの質問文
}

// AskResult は質問応答の結果を表す
type AskResult struct {
	Answer       string                  // LLMによる回答
	Sources      []*document.ScoredChunk // コンテキストに採用したチャンク（検索順）
	FinishReason string
	Usage        Usage
	Persisted    bool // 履歴保存に成功したか
}

// CompletionRequest は回答生成の入力
type CompletionRequest struct {
	SystemPrompt string
	Question     string
	MaxTokens    int
	Temperature  float64
}

// Completion は回答生成の出力
type Completion struct {
	Content      string
	FinishReason string
	Model        string
	Usage        Usage
}

// Usage はトークン使用量
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
