package document

import (
	"time"

	"github.com/google/uuid"
)

// Document はブローカーがアップロードしたドキュメントのメタデータを表す
type Document struct {
	ID          uuid.UUID `json:"id"`
	BrokerID    uuid.UUID `json:"brokerId"`
	Title       string    `json:"title"`
	SourceURL   *string   `json:"sourceUrl,omitempty"`
	ContentType string    `json:"contentType"`
	ChunkCount  int       `json:"chunkCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewDocument はドキュメント作成時の入力
type NewDocument struct {
	BrokerID    uuid.UUID
	Title       string
	SourceURL   *string
	ContentType string
}

// NewChunk は取り込み時に保存するチャンク
type NewChunk struct {
	Ordinal    int
	Content    string
	TokenCount int
	Embedding  []float32
}

// ScoredChunk は類似度検索でヒットしたチャンク
type ScoredChunk struct {
	ChunkID    uuid.UUID `json:"chunkId"`
	DocumentID uuid.UUID `json:"documentId"`
	Ordinal    int       `json:"ordinal"`
	Content    string    `json:"content"`
	Score      float64   `json:"score"` // 1 - cosine distance
}

// Role はチャットメッセージの発話者
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid は定義済みのロールかどうかを返す
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ChatMessage はドキュメントに紐づくチャット履歴の1件
type ChatMessage struct {
	ID         int64     `json:"id"`
	DocumentID uuid.UUID `json:"documentId"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MetadataUpdate はメタデータ編集の入力。nil のフィールドは変更しない
// SourceURL に空文字を指定するとURLを削除する
type MetadataUpdate struct {
	Title     *string
	SourceURL *string
}
