package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JDRienow/brokerchat-sub001/internal/core/broker"
	"github.com/JDRienow/brokerchat-sub001/internal/core/chat"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	"github.com/JDRienow/brokerchat-sub001/internal/core/ingestion"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError はエラーをステータスコードと {"error": ...} に変換して書き込む
// 5xx では上流のエラー詳細を返さず、失敗した段階名のみを返す
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = publicMessage(err)
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, chat.ErrInvalidInput),
		errors.Is(err, document.ErrInvalidInput),
		errors.Is(err, broker.ErrInvalidInput),
		errors.Is(err, ingestion.ErrEmptyContent),
		errors.Is(err, ingestion.ErrUnsupportedContent):
		return http.StatusBadRequest
	case errors.Is(err, ingestion.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, broker.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, chat.ErrNotFound), errors.Is(err, document.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ingestion.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	for _, sentinel := range []error{
		chat.ErrEmbeddingFailure,
		chat.ErrSearchFailure,
		chat.ErrCompletionFailure,
		ingestion.ErrFetchFailed,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal server error"
}
