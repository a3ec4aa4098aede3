package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JDRienow/brokerchat-sub001/internal/core/chat"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	"github.com/JDRienow/brokerchat-sub001/internal/infra/postgres/sqlc"
)

// ChatRepository はチャット履歴を扱う PostgreSQL リポジトリです
// トランザクション内の Querier で作成すると AppendMessages は原子的になります
type ChatRepository struct {
	q sqlc.Querier
}

// NewChatRepository は新しい ChatRepository を作成します
func NewChatRepository(q sqlc.Querier) *ChatRepository {
	return &ChatRepository{q: q}
}

var (
	_ document.MessageReader = (*ChatRepository)(nil)
	_ chat.MessageStore      = (*ChatRepository)(nil)
)

// InsertMessage はメッセージを1件追記します
func (r *ChatRepository) InsertMessage(ctx context.Context, msg document.ChatMessage) (*document.ChatMessage, error) {
	if !msg.Role.Valid() {
		return nil, fmt.Errorf("invalid chat role: %q", msg.Role)
	}

	row, err := r.q.InsertChatMessage(ctx, sqlc.InsertChatMessageParams{
		DocumentID: UUIDToPgtype(msg.DocumentID),
		Role:       string(msg.Role),
		Content:    msg.Content,
		CreatedAt:  TimeToPgtimestamptz(msg.CreatedAt),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert chat message: %w", err)
	}
	return toChatMessage(row), nil
}

// AppendMessages はメッセージを与えられた順に追記します
func (r *ChatRepository) AppendMessages(ctx context.Context, documentID uuid.UUID, messages []document.ChatMessage) error {
	for _, msg := range messages {
		msg.DocumentID = documentID
		if _, err := r.InsertMessage(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// ListMessages はドキュメントのチャット履歴を作成順に返します
func (r *ChatRepository) ListMessages(ctx context.Context, documentID uuid.UUID) ([]*document.ChatMessage, error) {
	rows, err := r.q.ListChatMessagesByDocument(ctx, UUIDToPgtype(documentID))
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}

	messages := make([]*document.ChatMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, toChatMessage(row))
	}
	return messages, nil
}

func toChatMessage(row sqlc.ChatMessage) *document.ChatMessage {
	return &document.ChatMessage{
		ID:         row.ID,
		DocumentID: PgtypeToUUID(row.DocumentID),
		Role:       document.Role(row.Role),
		Content:    row.Content,
		CreatedAt:  PgtimestamptzToTime(row.CreatedAt),
	}
}
