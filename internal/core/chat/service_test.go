package chat_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDRienow/brokerchat-sub001/internal/core/chat"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	testutil "github.com/JDRienow/brokerchat-sub001/internal/core/testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fixture は各依存のモックと呼び出し記録をまとめたもの
type fixture struct {
	doc       *document.Document
	docs      *testutil.MockDocumentRepository
	embedder  *testutil.MockEmbedder
	searcher  *testutil.MockChunkSearcher
	completer *testutil.MockCompleter
	messages  *testutil.MockMessageRepository

	embedCalls    int
	searchCalls   int
	completeCalls int
	stored        []document.ChatMessage
	lastRequest   chat.CompletionRequest
	lastLimit     int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{doc: testutil.TestDocument(uuid.New(), "Oakwood Lease Terms")}

	f.docs = &testutil.MockDocumentRepository{
		GetDocumentFunc: func(ctx context.Context, id uuid.UUID) (mo.Option[*document.Document], error) {
			if id == f.doc.ID {
				return mo.Some(f.doc), nil
			}
			return mo.None[*document.Document](), nil
		},
	}
	f.embedder = &testutil.MockEmbedder{
		EmbedFunc: func(ctx context.Context, text string) ([]float32, error) {
			f.embedCalls++
			return []float32{0.1, 0.2, 0.3}, nil
		},
	}
	f.searcher = &testutil.MockChunkSearcher{
		SearchChunksByDocumentFunc: func(ctx context.Context, documentID uuid.UUID, queryVector []float32, limit int) ([]*document.ScoredChunk, error) {
			f.searchCalls++
			f.lastLimit = limit
			return []*document.ScoredChunk{
				testutil.TestScoredChunk(documentID, 3, "Rent increases 3% annually on the lease anniversary.", 0.91),
				testutil.TestScoredChunk(documentID, 7, "The security deposit equals two months of rent.", 0.55),
			}, nil
		},
	}
	f.completer = &testutil.MockCompleter{
		CompleteFunc: func(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
			f.completeCalls++
			f.lastRequest = req
			return &chat.Completion{
				Content:      "Rent increases by 3% each year.",
				FinishReason: "stop",
				Usage:        chat.Usage{PromptTokens: 120, CompletionTokens: 9, TotalTokens: 129},
			}, nil
		},
	}
	f.messages = &testutil.MockMessageRepository{
		AppendMessagesFunc: func(ctx context.Context, documentID uuid.UUID, messages []document.ChatMessage) error {
			f.stored = append(f.stored, messages...)
			return nil
		},
	}
	return f
}

func (f *fixture) service(opts ...chat.ServiceOption) *chat.Service {
	opts = append([]chat.ServiceOption{chat.WithLogger(discardLogger())}, opts...)
	return chat.NewService(f.docs, f.embedder, f.searcher, f.completer, f.messages, opts...)
}

func TestService_Ask_Success(t *testing.T) {
	// Setup
	f := newFixture(t)
	asked := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ticks := []time.Time{asked, asked.Add(2 * time.Second)}
	clock := func() time.Time {
		now := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return now
	}
	svc := f.service(chat.WithClock(clock))

	// Execute
	result, err := svc.Ask(context.Background(), chat.AskParams{
		DocumentID: f.doc.ID,
		Question:   "  How much does rent go up each year?  ",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Rent increases by 3% each year.", result.Answer)
	assert.True(t, result.Persisted)
	assert.Equal(t, "stop", result.FinishReason)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, 3, result.Sources[0].Ordinal)

	assert.Equal(t, 5, f.lastLimit)
	assert.Equal(t, "How much does rent go up each year?", f.lastRequest.Question)
	assert.Equal(t, 0.7, f.lastRequest.Temperature)
	assert.Equal(t, chat.DefaultMaxTokens, f.lastRequest.MaxTokens)
	assert.Contains(t, f.lastRequest.SystemPrompt, "Oakwood Lease Terms")
	assert.Contains(t, f.lastRequest.SystemPrompt, "Rent increases 3% annually on the lease anniversary."+chat.ContextSeparator+"The security deposit")

	require.Len(t, f.stored, 2)
	assert.Equal(t, document.RoleUser, f.stored[0].Role)
	assert.Equal(t, "How much does rent go up each year?", f.stored[0].Content)
	assert.Equal(t, asked, f.stored[0].CreatedAt)
	assert.Equal(t, document.RoleAssistant, f.stored[1].Role)
	assert.Equal(t, "Rent increases by 3% each year.", f.stored[1].Content)
	assert.True(t, f.stored[1].CreatedAt.After(f.stored[0].CreatedAt))
}

func TestService_Ask_InvalidQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
	}{
		{name: "空文字", question: ""},
		{name: "空白のみ", question: " \n\t "},
		{name: "長すぎる", question: strings.Repeat("a", chat.MaxQuestionLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.service().Ask(context.Background(), chat.AskParams{DocumentID: f.doc.ID, Question: tt.question})

			require.ErrorIs(t, err, chat.ErrInvalidInput)
			assert.Zero(t, f.embedCalls)
			assert.Empty(t, f.stored)
		})
	}
}

func TestService_Ask_DocumentNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service().Ask(context.Background(), chat.AskParams{DocumentID: uuid.New(), Question: "Is parking included?"})
	require.ErrorIs(t, err, chat.ErrNotFound)

	_, err = f.service().Ask(context.Background(), chat.AskParams{DocumentID: uuid.Nil, Question: "Is parking included?"})
	require.ErrorIs(t, err, chat.ErrNotFound)

	assert.Zero(t, f.embedCalls)
	assert.Zero(t, f.completeCalls)
	assert.Empty(t, f.stored)
}

func TestService_Ask_StageFailures(t *testing.T) {
	upstream := errors.New("upstream unavailable")

	tests := []struct {
		name         string
		breakFixture func(f *fixture)
		expected     error
		wantSearch   int
		wantComplete int
		wantMessage  string
	}{
		{
			name: "embedding失敗",
			breakFixture: func(f *fixture) {
				f.embedder.EmbedFunc = func(ctx context.Context, text string) ([]float32, error) {
					return nil, upstream
				}
			},
			expected:    chat.ErrEmbeddingFailure,
			wantMessage: "embedding failed: upstream unavailable",
		},
		{
			name: "空のembedding",
			breakFixture: func(f *fixture) {
				f.embedder.EmbedFunc = func(ctx context.Context, text string) ([]float32, error) {
					return nil, nil
				}
			},
			expected:    chat.ErrEmbeddingFailure,
			wantMessage: "embedding failed: empty embedding",
		},
		{
			name: "検索失敗",
			breakFixture: func(f *fixture) {
				f.searcher.SearchChunksByDocumentFunc = func(ctx context.Context, documentID uuid.UUID, queryVector []float32, limit int) ([]*document.ScoredChunk, error) {
					f.searchCalls++
					return nil, upstream
				}
			},
			expected:    chat.ErrSearchFailure,
			wantSearch:  1,
			wantMessage: "similarity search failed: upstream unavailable",
		},
		{
			name: "回答生成失敗",
			breakFixture: func(f *fixture) {
				f.completer.CompleteFunc = func(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
					f.completeCalls++
					return nil, upstream
				}
			},
			expected:     chat.ErrCompletionFailure,
			wantSearch:   1,
			wantComplete: 1,
			wantMessage:  "completion failed: upstream unavailable",
		},
		{
			name: "空の回答",
			breakFixture: func(f *fixture) {
				f.completer.CompleteFunc = func(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
					f.completeCalls++
					return &chat.Completion{Content: "   "}, nil
				}
			},
			expected:     chat.ErrCompletionFailure,
			wantSearch:   1,
			wantComplete: 1,
			wantMessage:  "completion failed: empty answer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			f := newFixture(t)
			tt.breakFixture(f)

			// Execute
			result, err := f.service().Ask(context.Background(), chat.AskParams{DocumentID: f.doc.ID, Question: "What is the deposit?"})

			// Assert
			require.ErrorIs(t, err, tt.expected)
			assert.Nil(t, result)
			assert.Equal(t, tt.wantMessage, err.Error())
			assert.Equal(t, tt.wantSearch, f.searchCalls)
			assert.Equal(t, tt.wantComplete, f.completeCalls)
			assert.Empty(t, f.stored, "failed requests must not be persisted")
		})
	}
}

func TestService_Ask_PersistenceFailureStillAnswers(t *testing.T) {
	// Setup
	f := newFixture(t)
	f.messages.AppendMessagesFunc = func(ctx context.Context, documentID uuid.UUID, messages []document.ChatMessage) error {
		return errors.New("connection reset")
	}

	// Execute
	result, err := f.service().Ask(context.Background(), chat.AskParams{DocumentID: f.doc.ID, Question: "What is the deposit?"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Rent increases by 3% each year.", result.Answer)
	assert.False(t, result.Persisted)
}

func TestService_Ask_PersistsAfterCallerCancellation(t *testing.T) {
	// Setup
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.completer.CompleteFunc = func(c context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
		cancel()
		return &chat.Completion{Content: "Two months of rent."}, nil
	}
	var persistErr error
	f.messages.AppendMessagesFunc = func(c context.Context, documentID uuid.UUID, messages []document.ChatMessage) error {
		persistErr = c.Err()
		f.stored = append(f.stored, messages...)
		return nil
	}

	// Execute
	result, err := f.service(chat.WithPersistTimeout(time.Second)).Ask(ctx, chat.AskParams{DocumentID: f.doc.ID, Question: "What is the deposit?"})

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Persisted)
	assert.NoError(t, persistErr)
	assert.Len(t, f.stored, 2)
}

func TestService_Ask_ExcludesForeignChunks(t *testing.T) {
	// Setup
	f := newFixture(t)
	f.searcher.SearchChunksByDocumentFunc = func(ctx context.Context, documentID uuid.UUID, queryVector []float32, limit int) ([]*document.ScoredChunk, error) {
		return []*document.ScoredChunk{
			testutil.TestScoredChunk(uuid.New(), 0, "Another broker's confidential terms.", 0.99),
			testutil.TestScoredChunk(documentID, 1, "Pets are allowed with a deposit.", 0.42),
		}, nil
	}

	// Execute
	result, err := f.service().Ask(context.Background(), chat.AskParams{DocumentID: f.doc.ID, Question: "Are pets allowed?"})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, f.doc.ID, result.Sources[0].DocumentID)
	assert.NotContains(t, f.lastRequest.SystemPrompt, "confidential")
}

func TestService_Ask_NoChunksStillCompletes(t *testing.T) {
	// Setup
	f := newFixture(t)
	f.searcher.SearchChunksByDocumentFunc = func(ctx context.Context, documentID uuid.UUID, queryVector []float32, limit int) ([]*document.ScoredChunk, error) {
		return nil, nil
	}

	// Execute
	result, err := f.service().Ask(context.Background(), chat.AskParams{DocumentID: f.doc.ID, Question: "Who is the landlord?"})

	// Assert
	require.NoError(t, err)
	assert.Empty(t, result.Sources)
	assert.Contains(t, f.lastRequest.SystemPrompt, "No relevant passages")
	assert.Len(t, f.stored, 2)
}

func TestService_Ask_ContextBudget(t *testing.T) {
	// Setup
	f := newFixture(t)
	svc := f.service(
		chat.WithTopK(3),
		chat.WithContextBudget(testutil.RuneCounter{}, 60),
		chat.WithGeneration(256, 0.2),
	)

	// Execute
	result, err := svc.Ask(context.Background(), chat.AskParams{DocumentID: f.doc.ID, Question: "How much does rent go up?"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, f.lastLimit)
	require.Len(t, result.Sources, 1, "second chunk exceeds the budget")
	assert.NotContains(t, f.lastRequest.SystemPrompt, "security deposit")
	assert.Equal(t, 256, f.lastRequest.MaxTokens)
	assert.Equal(t, 0.2, f.lastRequest.Temperature)
}
