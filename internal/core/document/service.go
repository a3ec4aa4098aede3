package document

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength はタイトルの最大文字数
const MaxTitleLength = 200

// Service はドキュメント管理のユースケースを提供する
type Service struct {
	repo     Repository
	messages MessageReader
	logger   *slog.Logger
}

type ServiceOption func(*Service)

// WithLogger は Service にロガーを設定する
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService は新しいServiceを作成する
func NewService(repo Repository, messages MessageReader, opts ...ServiceOption) *Service {
	svc := &Service{
		repo:     repo,
		messages: messages,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// Get はブローカーが所有するドキュメントをチャンク数付きで返す
func (s *Service) Get(ctx context.Context, brokerID, id uuid.UUID) (*Document, error) {
	doc, err := s.owned(ctx, brokerID, id)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountChunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}
	doc.ChunkCount = count

	return doc, nil
}

// Find は所有者を問わずドキュメントをチャンク数付きで返す。管理用CLIから使う
func (s *Service) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	found, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	doc, ok := found.Get()
	if !ok {
		return nil, ErrNotFound
	}

	count, err := s.repo.CountChunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}
	doc.ChunkCount = count

	return doc, nil
}

// List はブローカーのドキュメント一覧を返す
func (s *Service) List(ctx context.Context, brokerID uuid.UUID) ([]*Document, error) {
	if brokerID == uuid.Nil {
		return nil, fmt.Errorf("%w: broker ID is required", ErrInvalidInput)
	}

	docs, err := s.repo.ListDocumentsByBroker(ctx, brokerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// UpdateMetadata はタイトルとソースURLを編集する。チャンクは変更しない
func (s *Service) UpdateMetadata(ctx context.Context, brokerID, id uuid.UUID, update MetadataUpdate) (*Document, error) {
	doc, err := s.owned(ctx, brokerID, id)
	if err != nil {
		return nil, err
	}

	title := doc.Title
	if update.Title != nil {
		title, err = ValidateTitle(*update.Title)
		if err != nil {
			return nil, err
		}
	}

	sourceURL := doc.SourceURL
	if update.SourceURL != nil {
		sourceURL, err = NormalizeSourceURL(*update.SourceURL)
		if err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.UpdateMetadata(ctx, id, title, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	s.logger.Info("document metadata updated", "documentID", id.String())
	return updated, nil
}

// Delete はドキュメントを削除する（チャンクと履歴はカスケード削除）
func (s *Service) Delete(ctx context.Context, brokerID, id uuid.UUID) error {
	if _, err := s.owned(ctx, brokerID, id); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.logger.Info("document deleted", "documentID", id.String(), "brokerID", brokerID.String())
	return nil
}

// History はドキュメントのチャット履歴を作成順に返す
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]*ChatMessage, error) {
	found, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if found.IsAbsent() {
		return nil, ErrNotFound
	}

	messages, err := s.messages.ListMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return messages, nil
}

// owned は所有者チェック付きでドキュメントを取得する
// 他ブローカーのドキュメントは存在を明かさず ErrNotFound とする
func (s *Service) owned(ctx context.Context, brokerID, id uuid.UUID) (*Document, error) {
	found, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc, ok := found.Get()
	if !ok || doc.BrokerID != brokerID {
		return nil, ErrNotFound
	}
	return doc, nil
}

// ValidateTitle はタイトルを正規化して検証する
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, MaxTitleLength)
	}
	return title, nil
}

// NormalizeSourceURL はソースURLを検証する。空文字は「URLなし」として nil を返す
func NormalizeSourceURL(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: source URL must be an absolute http(s) URL", ErrInvalidInput)
	}

	normalized := u.String()
	return &normalized, nil
}
