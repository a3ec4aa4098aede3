package testing

import (
	"context"

	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	"github.com/JDRienow/brokerchat-sub001/internal/core/ingestion"
)

// MockDocumentStore はテスト用のモックingestion.DocumentStoreです
type MockDocumentStore struct {
	CreateWithChunksFunc func(ctx context.Context, doc document.NewDocument, chunks []document.NewChunk) (*document.Document, error)
}

func (m *MockDocumentStore) CreateWithChunks(ctx context.Context, doc document.NewDocument, chunks []document.NewChunk) (*document.Document, error) {
	if m.CreateWithChunksFunc != nil {
		return m.CreateWithChunksFunc(ctx, doc, chunks)
	}
	d := TestDocument(doc.BrokerID, doc.Title)
	d.SourceURL = doc.SourceURL
	d.ContentType = doc.ContentType
	return d, nil
}

// MockFetcher はテスト用のモックingestion.Fetcherです
type MockFetcher struct {
	FetchFunc func(ctx context.Context, rawURL string) (*ingestion.Fetched, error)
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (*ingestion.Fetched, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, rawURL)
	}
	return nil, ingestion.ErrFetchFailed
}
