package ingestion

import (
	"github.com/google/uuid"

	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
)

// Params はドキュメント取り込みのパラメータ
// Content が空の場合は SourceURL から本文を取得する
type Params struct {
	BrokerID    uuid.UUID
	Title       string  // 空の場合はHTMLの<title>またはファイル名を使う
	SourceURL   *string // 表示用のリンク、かつ Content が空のときの取得元
	Content     []byte
	ContentType string // 宣言されたContent-Type（任意）
	Filename    string // 種別判定のヒント（任意）
}

// Result は取り込み結果
type Result struct {
	Document    *document.Document
	ChunkCount  int
	TotalTokens int
}

// TextChunk はチャンク分割の結果
type TextChunk struct {
	Ordinal int
	Content string
	Tokens  int
}

// Extracted は本文抽出の結果
type Extracted struct {
	Text        string
	Title       string // HTMLの<title>（なければ空）
	ContentType string
}
