package testing

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/JDRienow/brokerchat-sub001/internal/core/chat"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
)

// MockEmbedder はテスト用のモックEmbedderです
type MockEmbedder struct {
	EmbedFunc      func(ctx context.Context, text string) ([]float32, error)
	BatchEmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.BatchEmbedFunc != nil {
		return m.BatchEmbedFunc(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

// MockChunkSearcher はテスト用のモックChunkSearcherです
type MockChunkSearcher struct {
	SearchChunksByDocumentFunc func(ctx context.Context, documentID uuid.UUID, queryVector []float32, limit int) ([]*document.ScoredChunk, error)
}

func (m *MockChunkSearcher) SearchChunksByDocument(ctx context.Context, documentID uuid.UUID, queryVector []float32, limit int) ([]*document.ScoredChunk, error) {
	if m.SearchChunksByDocumentFunc != nil {
		return m.SearchChunksByDocumentFunc(ctx, documentID, queryVector, limit)
	}
	return nil, nil
}

// MockCompleter はテスト用のモックCompleterです
type MockCompleter struct {
	CompleteFunc func(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error)
}

func (m *MockCompleter) Complete(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &chat.Completion{Content: "mock answer", FinishReason: "stop"}, nil
}

// RuneCounter は1文字を1トークンとして数えるTokenCounterです
type RuneCounter struct{}

func (RuneCounter) CountTokens(text string) int {
	return utf8.RuneCountInString(text)
}

// WordCounter は空白区切りの単語数をトークン数とするTokenCounterです
type WordCounter struct{}

func (WordCounter) CountTokens(text string) int {
	return len(strings.Fields(text))
}
