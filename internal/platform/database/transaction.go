package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JDRienow/brokerchat-sub001/internal/infra/postgres"
	"github.com/JDRienow/brokerchat-sub001/internal/infra/postgres/sqlc"
)

// TransactionProvider follows the pattern described in https://threedots.tech/post/database-transactions-in-go/
// It hides pgx transactions behind a callback that receives data-access adapters.
type TransactionProvider struct {
	pool *pgxpool.Pool
}

// NewTransactionProvider は新しいTransactionProviderを作成します
func NewTransactionProvider(pool *pgxpool.Pool) *TransactionProvider {
	return &TransactionProvider{pool: pool}
}

// Adapter bundles repository adapters that operate inside a single transaction.
type Adapter struct {
	Brokers   *postgres.BrokerRepository
	Documents *postgres.DocumentRepository
	Messages  *postgres.ChatRepository

	tx pgx.Tx
}

// Lock は parts から導いたキーでトランザクション終了までの排他ロックを取得します
func (a *Adapter) Lock(ctx context.Context, parts ...string) error {
	return acquireXactLock(ctx, a.tx, LockKey(parts...))
}

func newAdapter(tx pgx.Tx) *Adapter {
	q := sqlc.New(tx)
	return &Adapter{
		Brokers:   postgres.NewBrokerRepository(q),
		Documents: postgres.NewDocumentRepository(q),
		Messages:  postgres.NewChatRepository(q),
		tx:        tx,
	}
}

// Transact opens a transaction, builds adapters, and passes them to fn.
func Transact[T any](ctx context.Context, p *TransactionProvider, fn func(*Adapter) (T, error)) (T, error) {
	var zero T
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return zero, fmt.Errorf("failed to begin transaction: %w", err)
	}

	adapters := newAdapter(tx)

	result, err := fn(adapters)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return zero, fmt.Errorf("tx rollback failed: %v (original err: %w)", rbErr, err)
		}
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}
