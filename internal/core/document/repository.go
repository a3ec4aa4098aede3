package document

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// Reader はドキュメントの読み取りアクセスを提供する
type Reader interface {
	// GetDocument はIDでドキュメントを取得する。存在しない場合は mo.None を返す
	GetDocument(ctx context.Context, id uuid.UUID) (mo.Option[*Document], error)

	// ListDocumentsByBroker はブローカーが所有するドキュメントを新しい順に返す
	ListDocumentsByBroker(ctx context.Context, brokerID uuid.UUID) ([]*Document, error)

	// CountChunks はドキュメントのチャンク数を返す
	CountChunks(ctx context.Context, documentID uuid.UUID) (int, error)
}

// Writer はドキュメントの書き込みアクセスを提供する
type Writer interface {
	CreateDocument(ctx context.Context, doc NewDocument) (*Document, error)
	AddChunks(ctx context.Context, documentID uuid.UUID, chunks []NewChunk) error
	UpdateMetadata(ctx context.Context, id uuid.UUID, title string, sourceURL *string) (*Document, error)
	// DeleteDocument はドキュメントを削除し、チャンクとチャット履歴もカスケード削除される
	DeleteDocument(ctx context.Context, id uuid.UUID) (bool, error)
}

// Repository はドキュメント集約への読み書きを統合する
type Repository interface {
	Reader
	Writer
}

// MessageReader はチャット履歴の読み取りを提供する
type MessageReader interface {
	ListMessages(ctx context.Context, documentID uuid.UUID) ([]*ChatMessage, error)
}
