package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxQuestionLength は質問文の最大文字数
	MaxQuestionLength = 4000

	// DefaultMaxTokens は回答の最大トークン数のデフォルト値
	DefaultMaxTokens = 1000

	// DefaultTemperature は回答生成のデフォルト温度
	DefaultTemperature = 0.7
)

// Service はドキュメントに対するRAGチャットのパイプラインを提供する
type Service struct {
	documents DocumentReader
	embedder  Embedder
	completer Completer
	retriever *Retriever
	assembler *ContextAssembler
	history   *HistoryRecorder

	topK             int
	tokenCounter     TokenCounter
	maxContextTokens int
	maxTokens        int
	temperature      float64
	persistTimeout   time.Duration

	logger *slog.Logger
	now    func() time.Time
}

type ServiceOption func(*Service)

// WithLogger は Service にロガーを設定する
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTopK は検索するチャンク数を設定する
func WithTopK(k int) ServiceOption {
	return func(s *Service) {
		s.topK = k
	}
}

// WithContextBudget はコンテキストのトークン上限を設定する
func WithContextBudget(counter TokenCounter, maxTokens int) ServiceOption {
	return func(s *Service) {
		s.tokenCounter = counter
		s.maxContextTokens = maxTokens
	}
}

// WithGeneration は回答生成の最大トークン数と温度を設定する
func WithGeneration(maxTokens int, temperature float64) ServiceOption {
	return func(s *Service) {
		s.maxTokens = maxTokens
		s.temperature = temperature
	}
}

// WithPersistTimeout は履歴保存のタイムアウトを設定する
func WithPersistTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.persistTimeout = d
	}
}

// WithClock はテスト用に時刻の取得関数を差し替える
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService は新しいServiceを作成する
func NewService(
	documents DocumentReader,
	embedder Embedder,
	searcher ChunkSearcher,
	completer Completer,
	store MessageStore,
	opts ...ServiceOption,
) *Service {
	svc := &Service{
		documents:      documents,
		embedder:       embedder,
		completer:      completer,
		topK:           DefaultTopK,
		maxTokens:      DefaultMaxTokens,
		temperature:    DefaultTemperature,
		persistTimeout: DefaultPersistTimeout,
		logger:         slog.Default(),
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.now == nil {
		svc.now = time.Now
	}

	svc.retriever = NewRetriever(searcher, svc.topK, svc.logger)
	svc.assembler = NewContextAssembler(svc.tokenCounter, svc.maxContextTokens)
	svc.history = NewHistoryRecorder(store, svc.persistTimeout)

	return svc
}

// Ask はドキュメントの内容に基づいて質問に回答する
// 履歴保存の失敗はログに残すのみで、回答は返す
func (s *Service) Ask(ctx context.Context, params AskParams) (*AskResult, error) {
	// 1. バリデーション
	question, err := ValidateQuestion(params.Question)
	if err != nil {
		return nil, err
	}
	if params.DocumentID == uuid.Nil {
		return nil, ErrNotFound
	}
	askedAt := s.now()

	// 2. ドキュメント取得
	found, err := s.documents.GetDocument(ctx, params.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	doc, ok := found.Get()
	if !ok {
		return nil, ErrNotFound
	}

	logger := s.logger.With("documentID", doc.ID.String())

	// 3. 質問のEmbedding
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailure, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrEmbeddingFailure)
	}

	// 4. 類似チャンク検索
	chunks, err := s.retriever.Retrieve(ctx, doc.ID, vector)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailure, err)
	}

	// 5. コンテキスト組み立て
	assembled := s.assembler.Assemble(chunks)
	if assembled.Dropped > 0 {
		logger.Warn("context budget exceeded, dropping chunks",
			"dropped", assembled.Dropped,
			"kept", len(assembled.Chunks),
			"maxContextTokens", s.maxContextTokens,
		)
	}
	logger.Debug("context assembled",
		"chunks", len(assembled.Chunks),
		"tokens", assembled.Tokens,
	)

	// 6. 回答生成
	completion, err := s.completer.Complete(ctx, CompletionRequest{
		SystemPrompt: BuildSystemPrompt(doc.Title, assembled.Text),
		Question:     question,
		MaxTokens:    s.maxTokens,
		Temperature:  s.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompletionFailure, err)
	}
	if completion == nil || strings.TrimSpace(completion.Content) == "" {
		return nil, fmt.Errorf("%w: empty answer", ErrCompletionFailure)
	}
	answeredAt := s.now()

	// 7. 履歴保存（失敗しても回答は返す）
	persisted := true
	if err := s.history.Record(ctx, Exchange{
		DocumentID: doc.ID,
		Question:   question,
		AskedAt:    askedAt,
		Answer:     completion.Content,
		AnsweredAt: answeredAt,
	}); err != nil {
		persisted = false
		logger.Error("failed to persist chat history", "error", err)
	}

	logger.Info("chat answered",
		"sources", len(assembled.Chunks),
		"finishReason", completion.FinishReason,
		"promptTokens", completion.Usage.PromptTokens,
		"completionTokens", completion.Usage.CompletionTokens,
		"persisted", persisted,
	)

	return &AskResult{
		Answer:       completion.Content,
		Sources:      assembled.Chunks,
		FinishReason: completion.FinishReason,
		Usage:        completion.Usage,
		Persisted:    persisted,
	}, nil
}

// ValidateQuestion は質問文を前後の空白を除いて検証する
func ValidateQuestion(question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(question) > MaxQuestionLength {
		return "", fmt.Errorf("%w: question must be at most %d characters", ErrInvalidInput, MaxQuestionLength)
	}
	return question, nil
}
