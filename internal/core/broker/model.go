package broker

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Broker はドキュメントを所有しAPIキーで認証する不動産ブローカー
type Broker struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	// ErrUnauthorized はAPIキーが無効な場合のエラー
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBrokerExists は同じメールアドレスのブローカーが既に存在する場合のエラー
	ErrBrokerExists = errors.New("broker already exists")

	// ErrNotFound はブローカーが存在しない場合のエラー
	ErrNotFound = errors.New("broker not found")

	// ErrInvalidInput は入力値が不正な場合のエラー
	ErrInvalidInput = errors.New("invalid input")
)
