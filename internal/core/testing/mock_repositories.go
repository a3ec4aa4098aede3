package testing

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/JDRienow/brokerchat-sub001/internal/core/broker"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
)

// MockDocumentRepository はテスト用のモックdocument.Repositoryです
type MockDocumentRepository struct {
	GetDocumentFunc           func(ctx context.Context, id uuid.UUID) (mo.Option[*document.Document], error)
	ListDocumentsByBrokerFunc func(ctx context.Context, brokerID uuid.UUID) ([]*document.Document, error)
	CountChunksFunc           func(ctx context.Context, documentID uuid.UUID) (int, error)
	CreateDocumentFunc        func(ctx context.Context, doc document.NewDocument) (*document.Document, error)
	AddChunksFunc             func(ctx context.Context, documentID uuid.UUID, chunks []document.NewChunk) error
	UpdateMetadataFunc        func(ctx context.Context, id uuid.UUID, title string, sourceURL *string) (*document.Document, error)
	DeleteDocumentFunc        func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (m *MockDocumentRepository) GetDocument(ctx context.Context, id uuid.UUID) (mo.Option[*document.Document], error) {
	if m.GetDocumentFunc != nil {
		return m.GetDocumentFunc(ctx, id)
	}
	return mo.None[*document.Document](), nil
}

func (m *MockDocumentRepository) ListDocumentsByBroker(ctx context.Context, brokerID uuid.UUID) ([]*document.Document, error) {
	if m.ListDocumentsByBrokerFunc != nil {
		return m.ListDocumentsByBrokerFunc(ctx, brokerID)
	}
	return nil, nil
}

func (m *MockDocumentRepository) CountChunks(ctx context.Context, documentID uuid.UUID) (int, error) {
	if m.CountChunksFunc != nil {
		return m.CountChunksFunc(ctx, documentID)
	}
	return 0, nil
}

func (m *MockDocumentRepository) CreateDocument(ctx context.Context, doc document.NewDocument) (*document.Document, error) {
	if m.CreateDocumentFunc != nil {
		return m.CreateDocumentFunc(ctx, doc)
	}
	return nil, nil
}

func (m *MockDocumentRepository) AddChunks(ctx context.Context, documentID uuid.UUID, chunks []document.NewChunk) error {
	if m.AddChunksFunc != nil {
		return m.AddChunksFunc(ctx, documentID, chunks)
	}
	return nil
}

func (m *MockDocumentRepository) UpdateMetadata(ctx context.Context, id uuid.UUID, title string, sourceURL *string) (*document.Document, error) {
	if m.UpdateMetadataFunc != nil {
		return m.UpdateMetadataFunc(ctx, id, title, sourceURL)
	}
	return nil, nil
}

func (m *MockDocumentRepository) DeleteDocument(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.DeleteDocumentFunc != nil {
		return m.DeleteDocumentFunc(ctx, id)
	}
	return false, nil
}

// MockMessageRepository はテスト用のモックチャット履歴リポジトリです
// document.MessageReader と chat.MessageStore の両方を満たします
type MockMessageRepository struct {
	ListMessagesFunc   func(ctx context.Context, documentID uuid.UUID) ([]*document.ChatMessage, error)
	AppendMessagesFunc func(ctx context.Context, documentID uuid.UUID, messages []document.ChatMessage) error
}

func (m *MockMessageRepository) ListMessages(ctx context.Context, documentID uuid.UUID) ([]*document.ChatMessage, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, documentID)
	}
	return nil, nil
}

func (m *MockMessageRepository) AppendMessages(ctx context.Context, documentID uuid.UUID, messages []document.ChatMessage) error {
	if m.AppendMessagesFunc != nil {
		return m.AppendMessagesFunc(ctx, documentID, messages)
	}
	return nil
}

// MockBrokerRepository はテスト用のモックbroker.Repositoryです
type MockBrokerRepository struct {
	CreateBrokerFunc          func(ctx context.Context, email, name, apiKeyHash string) (*broker.Broker, error)
	GetBrokerByAPIKeyHashFunc func(ctx context.Context, apiKeyHash string) (mo.Option[*broker.Broker], error)
	GetBrokerByEmailFunc      func(ctx context.Context, email string) (mo.Option[*broker.Broker], error)
}

func (m *MockBrokerRepository) CreateBroker(ctx context.Context, email, name, apiKeyHash string) (*broker.Broker, error) {
	if m.CreateBrokerFunc != nil {
		return m.CreateBrokerFunc(ctx, email, name, apiKeyHash)
	}
	return nil, nil
}

func (m *MockBrokerRepository) GetBrokerByAPIKeyHash(ctx context.Context, apiKeyHash string) (mo.Option[*broker.Broker], error) {
	if m.GetBrokerByAPIKeyHashFunc != nil {
		return m.GetBrokerByAPIKeyHashFunc(ctx, apiKeyHash)
	}
	return mo.None[*broker.Broker](), nil
}

func (m *MockBrokerRepository) GetBrokerByEmail(ctx context.Context, email string) (mo.Option[*broker.Broker], error) {
	if m.GetBrokerByEmailFunc != nil {
		return m.GetBrokerByEmailFunc(ctx, email)
	}
	return mo.None[*broker.Broker](), nil
}
