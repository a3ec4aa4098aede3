package postgres

import (
	"context"
	"fmt"

	"github.com/samber/mo"

	"github.com/JDRienow/brokerchat-sub001/internal/core/broker"
	"github.com/JDRienow/brokerchat-sub001/internal/infra/postgres/sqlc"
)

// BrokerRepository は broker.Repository を実装する PostgreSQL リポジトリです
type BrokerRepository struct {
	q sqlc.Querier
}

// NewBrokerRepository は新しい BrokerRepository を作成します
func NewBrokerRepository(q sqlc.Querier) *BrokerRepository {
	return &BrokerRepository{q: q}
}

// コンパイル時の型チェック
var _ broker.Repository = (*BrokerRepository)(nil)

func (r *BrokerRepository) CreateBroker(ctx context.Context, email, name, apiKeyHash string) (*broker.Broker, error) {
	row, err := r.q.CreateBroker(ctx, sqlc.CreateBrokerParams{
		Email:      email,
		Name:       name,
		ApiKeyHash: apiKeyHash,
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", broker.ErrBrokerExists, email)
		}
		return nil, fmt.Errorf("failed to create broker: %w", err)
	}
	return toBroker(row), nil
}

func (r *BrokerRepository) GetBrokerByAPIKeyHash(ctx context.Context, apiKeyHash string) (mo.Option[*broker.Broker], error) {
	row, err := r.q.GetBrokerByAPIKeyHash(ctx, apiKeyHash)
	if err != nil {
		if IsNoRows(err) {
			return mo.None[*broker.Broker](), nil
		}
		return mo.None[*broker.Broker](), fmt.Errorf("failed to get broker by api key: %w", err)
	}
	return mo.Some(toBroker(row)), nil
}

func (r *BrokerRepository) GetBrokerByEmail(ctx context.Context, email string) (mo.Option[*broker.Broker], error) {
	row, err := r.q.GetBrokerByEmail(ctx, email)
	if err != nil {
		if IsNoRows(err) {
			return mo.None[*broker.Broker](), nil
		}
		return mo.None[*broker.Broker](), fmt.Errorf("failed to get broker by email: %w", err)
	}
	return mo.Some(toBroker(row)), nil
}

func toBroker(row sqlc.Broker) *broker.Broker {
	return &broker.Broker{
		ID:        PgtypeToUUID(row.ID),
		Email:     row.Email,
		Name:      row.Name,
		CreatedAt: PgtimestamptzToTime(row.CreatedAt),
	}
}
