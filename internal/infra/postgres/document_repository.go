package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/samber/mo"

	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	"github.com/JDRienow/brokerchat-sub001/internal/infra/postgres/sqlc"
)

// DocumentRepository は document.Repository を実装する PostgreSQL リポジトリです
type DocumentRepository struct {
	q sqlc.Querier
}

// NewDocumentRepository は新しい DocumentRepository を作成します
func NewDocumentRepository(q sqlc.Querier) *DocumentRepository {
	return &DocumentRepository{q: q}
}

// コンパイル時の型チェック
var _ document.Repository = (*DocumentRepository)(nil)

// === Reader ===

func (r *DocumentRepository) GetDocument(ctx context.Context, id uuid.UUID) (mo.Option[*document.Document], error) {
	row, err := r.q.GetDocument(ctx, UUIDToPgtype(id))
	if err != nil {
		if IsNoRows(err) {
			return mo.None[*document.Document](), nil
		}
		return mo.None[*document.Document](), fmt.Errorf("failed to get document: %w", err)
	}
	return mo.Some(toDocument(row)), nil
}

func (r *DocumentRepository) ListDocumentsByBroker(ctx context.Context, brokerID uuid.UUID) ([]*document.Document, error) {
	rows, err := r.q.ListDocumentsByBroker(ctx, UUIDToPgtype(brokerID))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	docs := make([]*document.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, &document.Document{
			ID:          PgtypeToUUID(row.ID),
			BrokerID:    PgtypeToUUID(row.BrokerID),
			Title:       row.Title,
			SourceURL:   PgtextToStringPtr(row.SourceUrl),
			ContentType: row.ContentType,
			ChunkCount:  int(row.ChunkCount),
			CreatedAt:   PgtimestamptzToTime(row.CreatedAt),
			UpdatedAt:   PgtimestamptzToTime(row.UpdatedAt),
		})
	}
	return docs, nil
}

func (r *DocumentRepository) CountChunks(ctx context.Context, documentID uuid.UUID) (int, error) {
	n, err := r.q.CountChunksByDocument(ctx, UUIDToPgtype(documentID))
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return int(n), nil
}

// === Writer ===

func (r *DocumentRepository) CreateDocument(ctx context.Context, doc document.NewDocument) (*document.Document, error) {
	row, err := r.q.CreateDocument(ctx, sqlc.CreateDocumentParams{
		BrokerID:    UUIDToPgtype(doc.BrokerID),
		Title:       doc.Title,
		SourceUrl:   StringPtrToPgtext(doc.SourceURL),
		ContentType: doc.ContentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return toDocument(row), nil
}

func (r *DocumentRepository) AddChunks(ctx context.Context, documentID uuid.UUID, chunks []document.NewChunk) error {
	for _, c := range chunks {
		err := r.q.CreateChunk(ctx, sqlc.CreateChunkParams{
			DocumentID: UUIDToPgtype(documentID),
			Ordinal:    int32(c.Ordinal),
			Content:    c.Content,
			TokenCount: int32(c.TokenCount),
			Embedding:  pgvector.NewVector(c.Embedding),
		})
		if err != nil {
			return fmt.Errorf("failed to create chunk %d: %w", c.Ordinal, err)
		}
	}
	return nil
}

func (r *DocumentRepository) UpdateMetadata(ctx context.Context, id uuid.UUID, title string, sourceURL *string) (*document.Document, error) {
	row, err := r.q.UpdateDocumentMetadata(ctx, sqlc.UpdateDocumentMetadataParams{
		ID:        UUIDToPgtype(id),
		Title:     title,
		SourceUrl: StringPtrToPgtext(sourceURL),
	})
	if err != nil {
		if IsNoRows(err) {
			return nil, document.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return toDocument(row), nil
}

func (r *DocumentRepository) DeleteDocument(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.q.DeleteDocument(ctx, UUIDToPgtype(id))
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	return n > 0, nil
}

func toDocument(row sqlc.Document) *document.Document {
	return &document.Document{
		ID:          PgtypeToUUID(row.ID),
		BrokerID:    PgtypeToUUID(row.BrokerID),
		Title:       row.Title,
		SourceURL:   PgtextToStringPtr(row.SourceUrl),
		ContentType: row.ContentType,
		CreatedAt:   PgtimestamptzToTime(row.CreatedAt),
		UpdatedAt:   PgtimestamptzToTime(row.UpdatedAt),
	}
}
