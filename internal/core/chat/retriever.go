package chat

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
)

// DefaultTopK は検索で取得するチャンク数のデフォルト値
const DefaultTopK = 5

// Retriever はドキュメント内の類似チャンクを検索する
type Retriever struct {
	searcher ChunkSearcher
	topK     int
	logger   *slog.Logger
}

// NewRetriever は新しいRetrieverを作成する
func NewRetriever(searcher ChunkSearcher, topK int, logger *slog.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		searcher: searcher,
		topK:     topK,
		logger:   logger,
	}
}

// TopK は取得件数を返す
func (r *Retriever) TopK() int {
	return r.topK
}

// Retrieve は質問ベクトルに近いチャンクを最大TopK件、スコアの高い順に返す
// 対象ドキュメント以外のチャンクは結果に含めない
func (r *Retriever) Retrieve(ctx context.Context, documentID uuid.UUID, queryVector []float32) ([]*document.ScoredChunk, error) {
	rows, err := r.searcher.SearchChunksByDocument(ctx, documentID, queryVector, r.topK)
	if err != nil {
		return nil, err
	}

	chunks := make([]*document.ScoredChunk, 0, len(rows))
	for _, c := range rows {
		if c == nil {
			continue
		}
		if c.DocumentID != documentID {
			r.logger.Warn("dropping chunk from another document",
				"documentID", documentID.String(),
				"chunkDocumentID", c.DocumentID.String(),
				"chunkID", c.ChunkID.String(),
			)
			continue
		}
		chunks = append(chunks, c)
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})

	if len(chunks) > r.topK {
		chunks = chunks[:r.topK]
	}
	return chunks, nil
}
