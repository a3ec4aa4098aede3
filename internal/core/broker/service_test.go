package broker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDRienow/brokerchat-sub001/internal/core/broker"
	testutil "github.com/JDRienow/brokerchat-sub001/internal/core/testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestService_Create_Success(t *testing.T) {
	// Setup
	ctx := context.Background()
	var storedHash string
	repo := &testutil.MockBrokerRepository{
		CreateBrokerFunc: func(ctx context.Context, email, name, apiKeyHash string) (*broker.Broker, error) {
			assert.Equal(t, "agent@example.com", email)
			assert.Equal(t, "Sunrise Realty", name)
			storedHash = apiKeyHash
			b := testutil.TestBroker(email)
			b.Name = name
			return b, nil
		},
	}
	svc := broker.NewService(repo, broker.WithLogger(discardLogger()))

	// Execute
	b, apiKey, err := svc.Create(ctx, " Agent@Example.com ", " Sunrise Realty ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "agent@example.com", b.Email)
	assert.True(t, strings.HasPrefix(apiKey, broker.APIKeyPrefix))
	assert.Len(t, apiKey, len(broker.APIKeyPrefix)+43)
	assert.Equal(t, broker.HashAPIKey(apiKey), storedHash)
	assert.NotContains(t, storedHash, apiKey)
}

func TestService_Create_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		email string
		bname string
	}{
		{name: "メール不正", email: "not-an-email", bname: "Realty"},
		{name: "名前なし", email: "a@example.com", bname: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			repo := &testutil.MockBrokerRepository{
				CreateBrokerFunc: func(ctx context.Context, email, name, apiKeyHash string) (*broker.Broker, error) {
					called = true
					return nil, nil
				},
			}

			_, _, err := broker.NewService(repo, broker.WithLogger(discardLogger())).Create(context.Background(), tt.email, tt.bname)

			require.ErrorIs(t, err, broker.ErrInvalidInput)
			assert.False(t, called)
		})
	}
}

func TestService_Create_Duplicate(t *testing.T) {
	repo := &testutil.MockBrokerRepository{
		CreateBrokerFunc: func(ctx context.Context, email, name, apiKeyHash string) (*broker.Broker, error) {
			return nil, broker.ErrBrokerExists
		},
	}

	_, _, err := broker.NewService(repo, broker.WithLogger(discardLogger())).Create(context.Background(), "a@example.com", "Realty")
	require.ErrorIs(t, err, broker.ErrBrokerExists)
}

func TestService_Authenticate(t *testing.T) {
	known := testutil.TestBroker("agent@example.com")
	const key = "om2_valid-key"

	repo := &testutil.MockBrokerRepository{
		GetBrokerByAPIKeyHashFunc: func(ctx context.Context, apiKeyHash string) (mo.Option[*broker.Broker], error) {
			if apiKeyHash == broker.HashAPIKey(key) {
				return mo.Some(known), nil
			}
			if apiKeyHash == broker.HashAPIKey("om2_db-down") {
				return mo.None[*broker.Broker](), errors.New("db down")
			}
			return mo.None[*broker.Broker](), nil
		},
	}
	svc := broker.NewService(repo, broker.WithLogger(discardLogger()))

	t.Run("有効なキー", func(t *testing.T) {
		b, err := svc.Authenticate(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, known.ID, b.ID)
	})

	t.Run("未知のキー", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "om2_unknown")
		require.ErrorIs(t, err, broker.ErrUnauthorized)
	})

	t.Run("空のキー", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "")
		require.ErrorIs(t, err, broker.ErrUnauthorized)
	})

	t.Run("リポジトリエラー", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "om2_db-down")
		require.Error(t, err)
		assert.NotErrorIs(t, err, broker.ErrUnauthorized)
	})
}

func TestService_GetByEmail_NotFound(t *testing.T) {
	svc := broker.NewService(&testutil.MockBrokerRepository{}, broker.WithLogger(discardLogger()))

	_, err := svc.GetByEmail(context.Background(), "missing@example.com")
	require.ErrorIs(t, err, broker.ErrNotFound)
}
