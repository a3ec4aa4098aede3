package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
)

// DefaultPersistTimeout は履歴保存のデフォルトタイムアウト
const DefaultPersistTimeout = 5 * time.Second

// HistoryRecorder は質問と回答のペアをチャット履歴に保存する
type HistoryRecorder struct {
	store   MessageStore
	timeout time.Duration
}

// NewHistoryRecorder は新しいHistoryRecorderを作成する。timeout が 0 以下ならタイムアウトなし
func NewHistoryRecorder(store MessageStore, timeout time.Duration) *HistoryRecorder {
	return &HistoryRecorder{
		store:   store,
		timeout: timeout,
	}
}

// Exchange は1往復分の質問と回答
type Exchange struct {
	DocumentID uuid.UUID
	Question   string
	AskedAt    time.Time
	Answer     string
	AnsweredAt time.Time
}

// Record はユーザーメッセージ、アシスタントメッセージの順に保存する
// 呼び出し元のキャンセルから切り離して実行し、失敗は ErrPersistenceFailure でラップして返す
func (h *HistoryRecorder) Record(ctx context.Context, ex Exchange) error {
	ctx = context.WithoutCancel(ctx)
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	messages := []document.ChatMessage{
		{
			DocumentID: ex.DocumentID,
			Role:       document.RoleUser,
			Content:    ex.Question,
			CreatedAt:  ex.AskedAt,
		},
		{
			DocumentID: ex.DocumentID,
			Role:       document.RoleAssistant,
			Content:    ex.Answer,
			CreatedAt:  ex.AnsweredAt,
		},
	}

	if err := h.store.AppendMessages(ctx, ex.DocumentID, messages); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	return nil
}
