package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/JDRienow/brokerchat-sub001/internal/core/broker"
	"github.com/JDRienow/brokerchat-sub001/internal/core/chat"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	"github.com/JDRienow/brokerchat-sub001/internal/core/ingestion"
)

// ChatService はドキュメントに対する質問応答を提供する
type ChatService interface {
	Ask(ctx context.Context, params chat.AskParams) (*chat.AskResult, error)
}

// DocumentService はブローカー所有ドキュメントの管理を提供する
type DocumentService interface {
	Get(ctx context.Context, brokerID, id uuid.UUID) (*document.Document, error)
	List(ctx context.Context, brokerID uuid.UUID) ([]*document.Document, error)
	UpdateMetadata(ctx context.Context, brokerID, id uuid.UUID, update document.MetadataUpdate) (*document.Document, error)
	Delete(ctx context.Context, brokerID, id uuid.UUID) error
	History(ctx context.Context, id uuid.UUID) ([]*document.ChatMessage, error)
}

// IngestionService はドキュメントの取り込みを提供する
type IngestionService interface {
	Ingest(ctx context.Context, params ingestion.Params) (*ingestion.Result, error)
}

// Authenticator はAPIキーからブローカーを解決する
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*broker.Broker, error)
}

// HealthChecker はデータベースへの疎通を確認する
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Dependencies はハンドラが利用するサービス群
type Dependencies struct {
	Chat      ChatService
	Documents DocumentService
	Ingestion IngestionService
	Brokers   Authenticator
	Health    HealthChecker
}

// Handler はHTTPルーティングとリクエスト処理を担う
type Handler struct {
	deps           Dependencies
	logger         *slog.Logger
	chatLimiter    *rate.Limiter
	maxUploadBytes int64
}

type HandlerOption func(*Handler)

// WithLogger は Handler にロガーを設定する
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithChatRateLimit はチャットルート全体に毎分 perMinute 件のトークンバケットを設定する。0以下なら無効
func WithChatRateLimit(perMinute int) HandlerOption {
	return func(h *Handler) {
		if perMinute <= 0 {
			h.chatLimiter = nil
			return
		}
		h.chatLimiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), perMinute)
	}
}

// WithMaxUploadBytes は取り込みリクエストのボディ上限を設定する
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handler) {
		h.maxUploadBytes = n
	}
}

// NewHandler は新しいHandlerを作成する
func NewHandler(deps Dependencies, opts ...HandlerOption) *Handler {
	h := &Handler{
		deps:           deps,
		logger:         slog.Default(),
		maxUploadBytes: ingestion.DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// Routes はミドルウェア適用済みのルーティングを返す
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /chat/{documentId}", h.limitChat(http.HandlerFunc(h.handleChat)))
	mux.HandleFunc("GET /chat/{documentId}/messages", h.handleChatHistory)

	mux.Handle("POST /documents", h.requireBroker(h.handleIngest))
	mux.Handle("GET /documents", h.requireBroker(h.handleListDocuments))
	mux.Handle("GET /documents/{documentId}", h.requireBroker(h.handleGetDocument))
	mux.Handle("PATCH /documents/{documentId}", h.requireBroker(h.handleUpdateDocument))
	mux.Handle("DELETE /documents/{documentId}", h.requireBroker(h.handleDeleteDocument))

	mux.HandleFunc("GET /healthz", h.handleHealth)

	return h.accessLog(h.recoverPanic(mux))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.deps.Health != nil {
		if err := h.deps.Health.Ping(r.Context()); err != nil {
			h.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "database unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathDocumentID はパスの documentId を解釈する。UUIDでない場合は存在しないドキュメントとして扱う
func pathDocumentID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("documentId"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
