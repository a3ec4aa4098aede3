package broker

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
)

// APIKeyPrefix は発行するAPIキーの接頭辞
const APIKeyPrefix = "om2_"

const apiKeyBytes = 32

// Service はブローカー登録と認証を提供する
type Service struct {
	repo   Repository
	logger *slog.Logger
}

type ServiceOption func(*Service)

// WithLogger は Service にロガーを設定する
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService は新しいServiceを作成する
func NewService(repo Repository, opts ...ServiceOption) *Service {
	svc := &Service{repo: repo, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// Create はブローカーを登録し、平文のAPIキーを一度だけ返す
// 保存されるのはキーのSHA-256ハッシュのみ
func (s *Service) Create(ctx context.Context, email, name string) (*Broker, string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid email: %v", ErrInvalidInput, err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate API key: %w", err)
	}

	b, err := s.repo.CreateBroker(ctx, strings.ToLower(addr.Address), name, HashAPIKey(apiKey))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create broker: %w", err)
	}

	s.logger.Info("broker created", "brokerID", b.ID.String(), "email", b.Email)
	return b, apiKey, nil
}

// Authenticate はAPIキーからブローカーを解決する
func (s *Service) Authenticate(ctx context.Context, apiKey string) (*Broker, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrUnauthorized
	}

	found, err := s.repo.GetBrokerByAPIKeyHash(ctx, HashAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to look up API key: %w", err)
	}

	b, ok := found.Get()
	if !ok {
		return nil, ErrUnauthorized
	}
	return b, nil
}

// GetByEmail はメールアドレスでブローカーを取得する
func (s *Service) GetByEmail(ctx context.Context, email string) (*Broker, error) {
	found, err := s.repo.GetBrokerByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get broker: %w", err)
	}

	b, ok := found.Get()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, email)
	}
	return b, nil
}

// HashAPIKey はAPIキーの保存用ハッシュ（hex）を返す
func HashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

func generateAPIKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return APIKeyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}
