package container

import (
	"context"

	"github.com/google/uuid"

	"github.com/JDRienow/brokerchat-sub001/internal/core/chat"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	"github.com/JDRienow/brokerchat-sub001/internal/core/ingestion"
	"github.com/JDRienow/brokerchat-sub001/internal/platform/database"
)

// historyStore は質問と回答のペアを1トランザクションで保存する chat.MessageStore。
// 同じドキュメントへの同時書き込みはアドバイザリロックで直列化し、ペアが連続したIDになる。
type historyStore struct {
	tp *database.TransactionProvider
}

var _ chat.MessageStore = (*historyStore)(nil)

func (s *historyStore) AppendMessages(ctx context.Context, documentID uuid.UUID, messages []document.ChatMessage) error {
	_, err := database.Transact(ctx, s.tp, func(a *database.Adapter) (struct{}, error) {
		if err := a.Lock(ctx, "chat_messages", documentID.String()); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, a.Messages.AppendMessages(ctx, documentID, messages)
	})
	return err
}

// documentStore はドキュメントとチャンクを1トランザクションで保存する ingestion.DocumentStore。
type documentStore struct {
	tp *database.TransactionProvider
}

var _ ingestion.DocumentStore = (*documentStore)(nil)

func (s *documentStore) CreateWithChunks(ctx context.Context, doc document.NewDocument, chunks []document.NewChunk) (*document.Document, error) {
	return database.Transact(ctx, s.tp, func(a *database.Adapter) (*document.Document, error) {
		created, err := a.Documents.CreateDocument(ctx, doc)
		if err != nil {
			return nil, err
		}
		if err := a.Documents.AddChunks(ctx, created.ID, chunks); err != nil {
			return nil, err
		}
		return created, nil
	})
}
