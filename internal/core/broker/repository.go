package broker

import (
	"context"

	"github.com/samber/mo"
)

// Repository はブローカーの永続化を担う
type Repository interface {
	// CreateBroker はブローカーを作成する。メールアドレス重複時は ErrBrokerExists を返す
	CreateBroker(ctx context.Context, email, name, apiKeyHash string) (*Broker, error)
	GetBrokerByAPIKeyHash(ctx context.Context, apiKeyHash string) (mo.Option[*Broker], error)
	GetBrokerByEmail(ctx context.Context, email string) (mo.Option[*Broker], error)
}
