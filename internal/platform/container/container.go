package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JDRienow/brokerchat-sub001/internal/core/broker"
	"github.com/JDRienow/brokerchat-sub001/internal/core/chat"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	"github.com/JDRienow/brokerchat-sub001/internal/core/ingestion"
	"github.com/JDRienow/brokerchat-sub001/internal/infra/openai"
	"github.com/JDRienow/brokerchat-sub001/internal/infra/postgres"
	"github.com/JDRienow/brokerchat-sub001/internal/infra/postgres/sqlc"
	"github.com/JDRienow/brokerchat-sub001/internal/platform/config"
	"github.com/JDRienow/brokerchat-sub001/internal/platform/database"
)

// Embedder はチャット用の単一Embeddingと取り込み用のバッチEmbeddingを提供する
type Embedder interface {
	chat.Embedder
	ingestion.BatchEmbedder
}

// ServiceContainer はアプリケーションの依存関係を保持する。
// ChatService と IngestionService はモデルAPIを使わない構成では nil になる。
type ServiceContainer struct {
	BrokerService    *broker.Service
	DocumentService  *document.Service
	ChatService      *chat.Service
	IngestionService *ingestion.Service

	logger   *slog.Logger
	database *database.Database
}

type containerOptions struct {
	logger       *slog.Logger
	withoutModel bool
	embedder     Embedder
	completer    chat.Completer
	tokenCounter chat.TokenCounter
	fetcher      ingestion.Fetcher
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithoutModelAPI はOpenAIを使うサービスを構築しない
func WithoutModelAPI() ContainerOption {
	return func(opts *containerOptions) {
		opts.withoutModel = true
	}
}

// WithContainerEmbedder はカスタム Embedder を注入する
func WithContainerEmbedder(embedder Embedder) ContainerOption {
	return func(opts *containerOptions) {
		opts.embedder = embedder
	}
}

// WithContainerCompleter は回答生成クライアントを差し替える
func WithContainerCompleter(completer chat.Completer) ContainerOption {
	return func(opts *containerOptions) {
		opts.completer = completer
	}
}

// WithContainerTokenCounter は TokenCounter を差し替える
func WithContainerTokenCounter(counter chat.TokenCounter) ContainerOption {
	return func(opts *containerOptions) {
		opts.tokenCounter = counter
	}
}

// WithContainerFetcher はソースURLの取得処理を差し替える
func WithContainerFetcher(fetcher ingestion.Fetcher) ContainerOption {
	return func(opts *containerOptions) {
		opts.fetcher = fetcher
	}
}

// NewContainer は設定からコンテナを生成する。
func NewContainer(ctx context.Context, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	db, err := database.New(ctx, database.ConnectionParams{
		ConnString: cfg.Database.ConnString(),
		MaxConns:   cfg.Database.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c, err := NewContainerWithDB(cfg, db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithDB は既存の Database を受け取りコンテナを生成する。
func NewContainerWithDB(cfg *config.Config, db *database.Database, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	// Repository (PostgreSQL)
	queries := sqlc.New(db.Pool)
	brokerRepo := postgres.NewBrokerRepository(queries)
	documentRepo := postgres.NewDocumentRepository(queries)
	chatRepo := postgres.NewChatRepository(queries)
	searchRepo := postgres.NewSearchRepository(queries)
	txProvider := database.NewTransactionProvider(db.Pool)

	c := &ServiceContainer{
		BrokerService:   broker.NewService(brokerRepo, broker.WithLogger(options.logger)),
		DocumentService: document.NewService(documentRepo, chatRepo, document.WithLogger(options.logger)),
		logger:          options.logger,
		database:        db,
	}

	if options.withoutModel {
		return c, nil
	}

	// Embedder (OpenAI)
	embedder := options.embedder
	if embedder == nil {
		openaiEmbedder, err := openai.NewEmbedder(
			cfg.OpenAI.APIKey,
			openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
			openai.WithEmbeddingDimension(cfg.OpenAI.EmbeddingDimension),
			openai.WithEmbeddingBaseURL(cfg.OpenAI.BaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
		}
		embedder = openaiEmbedder
	}

	// Completer (OpenAI)
	completer := options.completer
	if completer == nil {
		client, err := openai.NewClient(
			cfg.OpenAI.APIKey,
			openai.WithModel(cfg.OpenAI.ChatModel),
			openai.WithBaseURL(cfg.OpenAI.BaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		completer = client
	}

	// TokenCounter (tiktoken)
	tokenCounter := options.tokenCounter
	if tokenCounter == nil {
		counter, err := openai.NewTokenCounter()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize token counter: %w", err)
		}
		tokenCounter = counter
	}

	// ChatService
	c.ChatService = chat.NewService(
		documentRepo,
		embedder,
		searchRepo,
		completer,
		&historyStore{tp: txProvider},
		chat.WithLogger(options.logger),
		chat.WithTopK(cfg.Chat.TopK),
		chat.WithContextBudget(tokenCounter, cfg.Chat.MaxContextTokens),
		chat.WithGeneration(cfg.Chat.MaxTokens, cfg.Chat.Temperature),
		chat.WithPersistTimeout(cfg.Chat.PersistTimeout),
	)

	// IngestionService
	chunker, err := ingestion.NewChunker(tokenCounter, ingestion.ChunkerConfig{
		TargetTokens:  cfg.Ingestion.TargetTokens,
		MaxTokens:     cfg.Ingestion.MaxTokens,
		OverlapTokens: cfg.Ingestion.OverlapTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chunker: %w", err)
	}

	fetcher := options.fetcher
	if fetcher == nil {
		var fetchOpts []ingestion.FetcherOption
		if cfg.Ingestion.AllowPrivateNetworks {
			fetchOpts = append(fetchOpts, ingestion.WithPrivateNetworks())
		}
		fetcher = ingestion.NewHTTPFetcher(cfg.Ingestion.FetchTimeout, cfg.Ingestion.MaxBytes, fetchOpts...)
	}

	c.IngestionService = ingestion.NewService(
		&documentStore{tp: txProvider},
		embedder,
		fetcher,
		chunker,
		ingestion.WithLogger(options.logger),
		ingestion.WithMaxBytes(cfg.Ingestion.MaxBytes),
	)

	return c, nil
}

// Close は内部リソースを解放する。
func (c *ServiceContainer) Close() {
	if c != nil && c.database != nil {
		c.database.Close()
	}
}

// Logger はロガーを返す。
func (c *ServiceContainer) Logger() *slog.Logger {
	if c == nil || c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Database はデータベースを返す。
func (c *ServiceContainer) Database() *database.Database {
	if c == nil {
		return nil
	}
	return c.database
}
