package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/JDRienow/brokerchat-sub001/internal/core/chat"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	"github.com/JDRienow/brokerchat-sub001/internal/infra/postgres/sqlc"
)

// SearchRepository は chat.ChunkSearcher を実装する PostgreSQL リポジトリ。
type SearchRepository struct {
	q sqlc.Querier
}

// NewSearchRepository は新しい SearchRepository を返す。
func NewSearchRepository(q sqlc.Querier) *SearchRepository {
	return &SearchRepository{q: q}
}

var _ chat.ChunkSearcher = (*SearchRepository)(nil)

// SearchChunksByDocument はドキュメント内のチャンクをコサイン距離の近い順に返す
func (r *SearchRepository) SearchChunksByDocument(ctx context.Context, documentID uuid.UUID, queryVector []float32, limit int) ([]*document.ScoredChunk, error) {
	rows, err := r.q.SearchChunksByDocument(ctx, sqlc.SearchChunksByDocumentParams{
		DocumentID:  UUIDToPgtype(documentID),
		QueryVector: pgvector.NewVector(queryVector),
		RowLimit:    int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks by document: %w", err)
	}

	results := make([]*document.ScoredChunk, 0, len(rows))
	for _, row := range rows {
		results = append(results, &document.ScoredChunk{
			ChunkID:    PgtypeToUUID(row.ChunkID),
			DocumentID: PgtypeToUUID(row.DocumentID),
			Ordinal:    int(row.Ordinal),
			Content:    row.Content,
			Score:      row.Score,
		})
	}
	return results, nil
}
