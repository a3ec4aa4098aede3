package postgres_test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDRienow/brokerchat-sub001/internal/core/broker"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	"github.com/JDRienow/brokerchat-sub001/internal/infra/postgres"
	"github.com/JDRienow/brokerchat-sub001/internal/infra/postgres/sqlc"
	"github.com/JDRienow/brokerchat-sub001/internal/platform/database"
	"github.com/JDRienow/brokerchat-sub001/internal/platform/logger"
)

const embeddingDimension = 1536

var testDB *database.Database

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("docker unavailable, skipping postgres integration tests: %v", err)
		os.Exit(m.Run())
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "pgvector/pgvector",
		Tag:        "pg16",
		Env: []string{
			"POSTGRES_USER=om2chat",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=om2chat",
		},
	}, func(cfg *docker.HostConfig) {
		cfg.AutoRemove = true
		cfg.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("failed to start postgres container: %v", err)
	}
	_ = resource.Expire(300)

	connString := fmt.Sprintf("postgres://om2chat:secret@%s/om2chat?sslmode=disable", resource.GetHostPort("5432/tcp"))

	pool.MaxWait = 2 * time.Minute
	err = pool.Retry(func() error {
		return database.RunMigrations(connString, postgres.Migrations(), database.MigrateUp, logger.Discard())
	})
	if err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("failed to migrate test database: %v", err)
	}

	testDB, err = database.New(context.Background(), database.ConnectionParams{ConnString: connString, MaxConns: 4})
	if err != nil {
		_ = pool.Purge(resource)
		log.Fatalf("failed to connect test database: %v", err)
	}

	code := m.Run()

	testDB.Close()
	if err := pool.Purge(resource); err != nil {
		log.Printf("failed to purge postgres container: %v", err)
	}
	os.Exit(code)
}

func requireDB(t *testing.T) *database.Database {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres integration tests require docker")
	}
	return testDB
}

func oneHot(i int) []float32 {
	v := make([]float32, embeddingDimension)
	v[i] = 1
	return v
}

func createBroker(t *testing.T, repo *postgres.BrokerRepository) *broker.Broker {
	t.Helper()
	b, err := repo.CreateBroker(context.Background(), uuid.NewString()+"@example.com", "Test Realty", uuid.NewString())
	require.NoError(t, err)
	return b
}

func TestBrokerRepository(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	repo := postgres.NewBrokerRepository(sqlc.New(db.Pool))

	created, err := repo.CreateBroker(ctx, "dup@example.com", "First", "hash-1")
	require.NoError(t, err)

	_, err = repo.CreateBroker(ctx, "dup@example.com", "Second", "hash-2")
	require.ErrorIs(t, err, broker.ErrBrokerExists)

	found, err := repo.GetBrokerByAPIKeyHash(ctx, "hash-1")
	require.NoError(t, err)
	require.True(t, found.IsPresent())
	assert.Equal(t, created.ID, found.MustGet().ID)

	missing, err := repo.GetBrokerByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.True(t, missing.IsAbsent())
}

func TestDocumentRepository_SearchIsScopedToDocument(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	q := sqlc.New(db.Pool)
	docs := postgres.NewDocumentRepository(q)
	search := postgres.NewSearchRepository(q)
	b := createBroker(t, postgres.NewBrokerRepository(q))

	target, err := docs.CreateDocument(ctx, document.NewDocument{BrokerID: b.ID, Title: "Lease", ContentType: "text/plain"})
	require.NoError(t, err)
	other, err := docs.CreateDocument(ctx, document.NewDocument{BrokerID: b.ID, Title: "Other", ContentType: "text/plain"})
	require.NoError(t, err)

	require.NoError(t, docs.AddChunks(ctx, target.ID, []document.NewChunk{
		{Ordinal: 0, Content: "Rent increases 3% annually.", TokenCount: 6, Embedding: oneHot(0)},
		{Ordinal: 1, Content: "Deposit is two months.", TokenCount: 5, Embedding: oneHot(1)},
	}))
	require.NoError(t, docs.AddChunks(ctx, other.ID, []document.NewChunk{
		{Ordinal: 0, Content: "Other broker text.", TokenCount: 4, Embedding: oneHot(0)},
	}))

	results, err := search.SearchChunksByDocument(ctx, target.ID, oneHot(0), 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Rent increases 3% annually.", results[0].Content)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	for _, r := range results {
		assert.Equal(t, target.ID, r.DocumentID)
	}

	count, err := docs.CountChunks(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	listed, err := docs.ListDocumentsByBroker(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
}

func TestSearchRepository_ReturnsTopKWhenOtherDocumentsAreCloser(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	q := sqlc.New(db.Pool)
	docs := postgres.NewDocumentRepository(q)
	search := postgres.NewSearchRepository(q)
	b := createBroker(t, postgres.NewBrokerRepository(q))

	crowded, err := docs.CreateDocument(ctx, document.NewDocument{BrokerID: b.ID, Title: "Crowded", ContentType: "text/plain"})
	require.NoError(t, err)
	target, err := docs.CreateDocument(ctx, document.NewDocument{BrokerID: b.ID, Title: "Target", ContentType: "text/plain"})
	require.NoError(t, err)

	// 検索ベクトルに完全一致するチャンクを別ドキュメントに大量に置く
	near := make([]document.NewChunk, 300)
	for i := range near {
		near[i] = document.NewChunk{Ordinal: i, Content: fmt.Sprintf("near %d", i), TokenCount: 2, Embedding: oneHot(0)}
	}
	require.NoError(t, docs.AddChunks(ctx, crowded.ID, near))

	far := make([]document.NewChunk, 5)
	for i := range far {
		far[i] = document.NewChunk{Ordinal: i, Content: fmt.Sprintf("far %d", i), TokenCount: 2, Embedding: oneHot(i + 1)}
	}
	require.NoError(t, docs.AddChunks(ctx, target.ID, far))

	_, err = db.Pool.Exec(ctx, "ANALYZE chunks")
	require.NoError(t, err)

	results, err := search.SearchChunksByDocument(ctx, target.ID, oneHot(0), 5)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, r := range results {
		assert.Equal(t, target.ID, r.DocumentID)
		assert.InDelta(t, 0.0, r.Score, 1e-6)
	}
}

func TestChatRepository_AppendAndCascade(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	q := sqlc.New(db.Pool)
	docs := postgres.NewDocumentRepository(q)
	chats := postgres.NewChatRepository(q)
	b := createBroker(t, postgres.NewBrokerRepository(q))

	doc, err := docs.CreateDocument(ctx, document.NewDocument{BrokerID: b.ID, Title: "Disclosure", ContentType: "text/plain"})
	require.NoError(t, err)

	asked := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, chats.AppendMessages(ctx, doc.ID, []document.ChatMessage{
		{Role: document.RoleUser, Content: "Is there a pool?", CreatedAt: asked},
		{Role: document.RoleAssistant, Content: "Yes.", CreatedAt: asked},
	}))

	history, err := chats.ListMessages(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, document.RoleUser, history[0].Role)
	assert.Equal(t, document.RoleAssistant, history[1].Role)
	assert.True(t, history[0].CreatedAt.Equal(asked))

	deleted, err := docs.DeleteDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	history, err = chats.ListMessages(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	found, err := docs.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, found.IsAbsent())
}

func TestTransact_RollsBackOnError(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	tp := database.NewTransactionProvider(db.Pool)
	b := createBroker(t, postgres.NewBrokerRepository(sqlc.New(db.Pool)))
	boom := errors.New("embedding mismatch")

	var createdID uuid.UUID
	_, err := database.Transact(ctx, tp, func(a *database.Adapter) (*document.Document, error) {
		doc, err := a.Documents.CreateDocument(ctx, document.NewDocument{BrokerID: b.ID, Title: "Draft", ContentType: "text/plain"})
		if err != nil {
			return nil, err
		}
		createdID = doc.ID
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	found, err := postgres.NewDocumentRepository(sqlc.New(db.Pool)).GetDocument(ctx, createdID)
	require.NoError(t, err)
	assert.True(t, found.IsAbsent())
}

func TestTransact_LockSerializesHistoryWrites(t *testing.T) {
	db := requireDB(t)
	ctx := context.Background()
	tp := database.NewTransactionProvider(db.Pool)
	queries := sqlc.New(db.Pool)
	b := createBroker(t, postgres.NewBrokerRepository(queries))
	doc, err := postgres.NewDocumentRepository(queries).CreateDocument(ctx, document.NewDocument{BrokerID: b.ID, Title: "HOA Rules", ContentType: "text/plain"})
	require.NoError(t, err)

	appendPair := func(n int) error {
		_, err := database.Transact(ctx, tp, func(a *database.Adapter) (struct{}, error) {
			if err := a.Lock(ctx, "chat_messages", doc.ID.String()); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, a.Messages.AppendMessages(ctx, doc.ID, []document.ChatMessage{
				{Role: document.RoleUser, Content: fmt.Sprintf("question %d", n)},
				{Role: document.RoleAssistant, Content: fmt.Sprintf("answer %d", n)},
			})
		})
		return err
	}

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- appendPair(i)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	messages, err := postgres.NewChatRepository(queries).ListMessages(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, messages, writers*2)
	for i := 0; i < len(messages); i += 2 {
		assert.Equal(t, document.RoleUser, messages[i].Role)
		assert.Equal(t, document.RoleAssistant, messages[i+1].Role)
		assert.Equal(t, strings.Replace(messages[i].Content, "question", "answer", 1), messages[i+1].Content)
	}
}
