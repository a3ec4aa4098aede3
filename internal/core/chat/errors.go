package chat

import "errors"

// パイプラインの失敗種別。段階別のエラーは上流のエラーも %w で保持する
var (
	// ErrInvalidInput はリクエストの欠落・不正（400）
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound は対象ドキュメントが存在しない（404）
	ErrNotFound = errors.New("document not found")

	// ErrEmbeddingFailure は質問のEmbedding生成に失敗した（500）
	ErrEmbeddingFailure = errors.New("embedding failed")

	// ErrSearchFailure は類似度検索に失敗した（500）
	ErrSearchFailure = errors.New("similarity search failed")

	// ErrCompletionFailure は回答生成に失敗した（500）
	ErrCompletionFailure = errors.New("completion failed")

	// ErrPersistenceFailure はチャット履歴の保存に失敗した。ログのみで呼び出し元へは返さない
	ErrPersistenceFailure = errors.New("chat history persistence failed")
)
