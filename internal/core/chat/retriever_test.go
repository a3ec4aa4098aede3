package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDRienow/brokerchat-sub001/internal/core/chat"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	testutil "github.com/JDRienow/brokerchat-sub001/internal/core/testing"
)

func TestRetriever_Retrieve_OrdersAndFilters(t *testing.T) {
	// Setup
	docID := uuid.New()
	searcher := &testutil.MockChunkSearcher{
		SearchChunksByDocumentFunc: func(ctx context.Context, documentID uuid.UUID, queryVector []float32, limit int) ([]*document.ScoredChunk, error) {
			assert.Equal(t, docID, documentID)
			assert.Equal(t, 2, limit)
			return []*document.ScoredChunk{
				testutil.TestScoredChunk(docID, 4, "low", 0.2),
				testutil.TestScoredChunk(uuid.New(), 0, "foreign", 0.99),
				testutil.TestScoredChunk(docID, 1, "high", 0.8),
				nil,
				testutil.TestScoredChunk(docID, 2, "tie", 0.8),
			}, nil
		},
	}
	r := chat.NewRetriever(searcher, 2, discardLogger())

	// Execute
	chunks, err := r.Retrieve(context.Background(), docID, []float32{1, 0})

	// Assert
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "high", chunks[0].Content)
	assert.Equal(t, "tie", chunks[1].Content)
	for _, c := range chunks {
		assert.Equal(t, docID, c.DocumentID)
	}
}

func TestRetriever_Retrieve_Error(t *testing.T) {
	boom := errors.New("pool closed")
	searcher := &testutil.MockChunkSearcher{
		SearchChunksByDocumentFunc: func(ctx context.Context, documentID uuid.UUID, queryVector []float32, limit int) ([]*document.ScoredChunk, error) {
			return nil, boom
		},
	}

	_, err := chat.NewRetriever(searcher, 5, discardLogger()).Retrieve(context.Background(), uuid.New(), []float32{1})
	require.ErrorIs(t, err, boom)
}

func TestNewRetriever_DefaultTopK(t *testing.T) {
	r := chat.NewRetriever(&testutil.MockChunkSearcher{}, 0, nil)
	assert.Equal(t, chat.DefaultTopK, r.TopK())
}
