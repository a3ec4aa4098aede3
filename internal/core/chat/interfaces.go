package chat

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
)

// DocumentReader はドキュメントのメタデータ取得インターフェース
type DocumentReader interface {
	GetDocument(ctx context.Context, id uuid.UUID) (mo.Option[*document.Document], error)
}

// Embedder はテキストのEmbedding生成インターフェース
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearcher はドキュメント内のベクトル近傍検索インターフェース
// 結果は距離の近い順で、指定ドキュメントのチャンクのみを返すこと
type ChunkSearcher interface {
	SearchChunksByDocument(ctx context.Context, documentID uuid.UUID, queryVector []float32, limit int) ([]*document.ScoredChunk, error)
}

// Completer はLLMによる回答生成インターフェース
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// MessageStore はチャット履歴の追記インターフェース
// messages は与えられた順に、すべて保存されるか1件も保存されないかのどちらかとなる
type MessageStore interface {
	AppendMessages(ctx context.Context, documentID uuid.UUID, messages []document.ChatMessage) error
}

// TokenCounter はトークン数をカウントする
type TokenCounter interface {
	CountTokens(text string) int
}
