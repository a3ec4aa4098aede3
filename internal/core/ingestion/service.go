package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
)

// DefaultBatchSize は1回のEmbedding API呼び出しに含める最大件数
const DefaultBatchSize = 100

// DefaultMaxBytes は取り込む内容の最大バイト数
const DefaultMaxBytes int64 = 10 << 20

// BatchEmbedder は複数テキストのEmbeddingを生成する
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
}

// Fetcher はソースURLから本文を取得する
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Fetched, error)
}

// DocumentStore はドキュメントとチャンクを1つのトランザクションで保存する
type DocumentStore interface {
	CreateWithChunks(ctx context.Context, doc document.NewDocument, chunks []document.NewChunk) (*document.Document, error)
}

// Service はドキュメントの取り込みを提供する
type Service struct {
	store     DocumentStore
	embedder  BatchEmbedder
	fetcher   Fetcher
	chunker   *Chunker
	detector  *ContentTypeDetector
	maxBytes  int64
	batchSize int
	logger    *slog.Logger
}

type ServiceOption func(*Service)

// WithLogger は Service にロガーを設定する
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMaxBytes は取り込む内容の最大バイト数を設定する
func WithMaxBytes(n int64) ServiceOption {
	return func(s *Service) {
		s.maxBytes = n
	}
}

// WithBatchSize はEmbeddingのバッチサイズを設定する
func WithBatchSize(n int) ServiceOption {
	return func(s *Service) {
		s.batchSize = n
	}
}

// NewService は新しいServiceを作成する
func NewService(store DocumentStore, embedder BatchEmbedder, fetcher Fetcher, chunker *Chunker, opts ...ServiceOption) *Service {
	svc := &Service{
		store:     store,
		embedder:  embedder,
		fetcher:   fetcher,
		chunker:   chunker,
		detector:  NewContentTypeDetector(),
		maxBytes:  DefaultMaxBytes,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.batchSize <= 0 || svc.batchSize > DefaultBatchSize {
		svc.batchSize = DefaultBatchSize
	}
	return svc
}

// Ingest は本文を取得・抽出・チャンク化・Embeddingし、ドキュメントとして保存する
func (s *Service) Ingest(ctx context.Context, params Params) (*Result, error) {
	startTime := time.Now()

	// 1. バリデーション
	if params.BrokerID == uuid.Nil {
		return nil, fmt.Errorf("%w: broker ID is required", ErrInvalidInput)
	}
	sourceURL, err := document.NormalizeSourceURL(derefString(params.SourceURL))
	if err != nil {
		return nil, err
	}

	// 2. 本文の取得
	content, declared := params.Content, params.ContentType
	if len(content) == 0 {
		if sourceURL == nil {
			return nil, fmt.Errorf("%w: content or source URL is required", ErrInvalidInput)
		}
		fetched, err := s.fetcher.Fetch(ctx, *sourceURL)
		if err != nil {
			return nil, err
		}
		content, declared = fetched.Body, fetched.ContentType
		s.logger.Info("source fetched", "url", fetched.FinalURL, "bytes", len(content))
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(content), s.maxBytes)
	}

	// 3. 種別判定と本文抽出
	contentType, err := s.detector.Detect(params.Filename, declared, content)
	if err != nil {
		return nil, err
	}
	extracted, err := ExtractText(contentType, content)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(extracted.Text) == "" {
		return nil, ErrEmptyContent
	}

	title, err := resolveTitle(params.Title, extracted.Title, params.Filename)
	if err != nil {
		return nil, err
	}

	// 4. チャンク化
	textChunks := s.chunker.Chunk(extracted.Text)
	if len(textChunks) == 0 {
		return nil, ErrEmptyContent
	}

	// 5. Embedding
	vectors, err := s.embedAll(ctx, textChunks)
	if err != nil {
		return nil, err
	}

	chunks := make([]document.NewChunk, len(textChunks))
	totalTokens := 0
	for i, tc := range textChunks {
		chunks[i] = document.NewChunk{
			Ordinal:    tc.Ordinal,
			Content:    tc.Content,
			TokenCount: tc.Tokens,
			Embedding:  vectors[i],
		}
		totalTokens += tc.Tokens
	}

	// 6. 保存
	doc, err := s.store.CreateWithChunks(ctx, document.NewDocument{
		BrokerID:    params.BrokerID,
		Title:       title,
		SourceURL:   sourceURL,
		ContentType: contentType,
	}, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	doc.ChunkCount = len(chunks)

	s.logger.Info("document ingested",
		"documentID", doc.ID.String(),
		"brokerID", params.BrokerID.String(),
		"contentType", contentType,
		"chunks", len(chunks),
		"tokens", totalTokens,
		"duration", time.Since(startTime),
	)

	return &Result{
		Document:    doc,
		ChunkCount:  len(chunks),
		TotalTokens: totalTokens,
	}, nil
}

// embedAll はチャンクをバッチ単位でEmbeddingする
func (s *Service) embedAll(ctx context.Context, chunks []TextChunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		batch, err := s.embedder.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(batch), len(texts))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// resolveTitle は指定タイトル、HTMLの<title>、ファイル名の順にタイトルを決める
func resolveTitle(explicit, htmlTitle, filename string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return document.ValidateTitle(explicit)
	}

	derived := strings.TrimSpace(htmlTitle)
	if derived == "" && filename != "" {
		base := filepath.Base(filename)
		derived = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if derived == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	if runes := []rune(derived); len(runes) > document.MaxTitleLength {
		derived = strings.TrimSpace(string(runes[:document.MaxTitleLength]))
	}
	return document.ValidateTitle(derived)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
