package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/JDRienow/brokerchat-sub001/internal/core/broker"
)

type contextKey int

const brokerKey contextKey = iota

// statusRecorder はレスポンスのステータスコードを記録する
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// accessLog はメソッド・パス・ステータス・処理時間を記録する
func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		h.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// recoverPanic はハンドラのpanicを500に変換する
func (h *Handler) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				h.logger.Error("panic in handler", "method", r.Method, "path", r.URL.Path, "panic", v)
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// limitChat はチャットルートの呼び出し頻度を制限する
func (h *Handler) limitChat(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.chatLimiter != nil && !h.chatLimiter.Allow() {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireBroker は Authorization: Bearer <api key> を検証し、ブローカーをコンテキストに載せる
func (h *Handler) requireBroker(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			h.writeError(w, r, broker.ErrUnauthorized)
			return
		}

		b, err := h.deps.Brokers.Authenticate(r.Context(), apiKey)
		if err != nil {
			if !errors.Is(err, broker.ErrUnauthorized) {
				h.writeError(w, r, err)
				return
			}
			h.writeError(w, r, broker.ErrUnauthorized)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), brokerKey, b)))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// brokerFrom は認証済みブローカーを返す
func brokerFrom(ctx context.Context) *broker.Broker {
	b, _ := ctx.Value(brokerKey).(*broker.Broker)
	return b
}
