package container_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "github.com/JDRienow/brokerchat-sub001/internal/core/testing"
	"github.com/JDRienow/brokerchat-sub001/internal/infra/openai"
	"github.com/JDRienow/brokerchat-sub001/internal/platform/config"
	"github.com/JDRienow/brokerchat-sub001/internal/platform/container"
	"github.com/JDRienow/brokerchat-sub001/internal/platform/database"
	"github.com/JDRienow/brokerchat-sub001/internal/platform/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Chat: config.ChatConfig{
			TopK:             5,
			MaxTokens:        1000,
			Temperature:      0.7,
			MaxContextTokens: 6000,
			PersistTimeout:   5 * time.Second,
		},
		Ingestion: config.IngestionConfig{
			MaxBytes:      1 << 20,
			FetchTimeout:  time.Second,
			TargetTokens:  500,
			MaxTokens:     800,
			OverlapTokens: 80,
		},
	}
}

func TestNewContainerWithDB_WithoutModelAPI(t *testing.T) {
	// Execute
	c, err := container.NewContainerWithDB(testConfig(), &database.Database{},
		container.WithoutModelAPI(),
		container.WithContainerLogger(logger.Discard()),
	)

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, c.BrokerService)
	assert.NotNil(t, c.DocumentService)
	assert.Nil(t, c.ChatService)
	assert.Nil(t, c.IngestionService)
}

func TestNewContainerWithDB_MissingAPIKey(t *testing.T) {
	// Execute
	_, err := container.NewContainerWithDB(testConfig(), &database.Database{},
		container.WithContainerLogger(logger.Discard()),
	)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, openai.ErrAPIKeyNotSet)
}

func TestNewContainerWithDB_InjectedProviders(t *testing.T) {
	// Execute
	c, err := container.NewContainerWithDB(testConfig(), &database.Database{},
		container.WithContainerLogger(logger.Discard()),
		container.WithContainerEmbedder(&testutil.MockEmbedder{}),
		container.WithContainerCompleter(&testutil.MockCompleter{}),
		container.WithContainerTokenCounter(testutil.WordCounter{}),
		container.WithContainerFetcher(&testutil.MockFetcher{}),
	)

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, c.ChatService)
	assert.NotNil(t, c.IngestionService)
	assert.NotNil(t, c.Logger())
}

func TestNewContainerWithDB_InvalidChunkerConfig(t *testing.T) {
	// Setup
	cfg := testConfig()
	cfg.Ingestion.OverlapTokens = cfg.Ingestion.TargetTokens

	// Execute
	_, err := container.NewContainerWithDB(cfg, &database.Database{},
		container.WithContainerLogger(logger.Discard()),
		container.WithContainerEmbedder(&testutil.MockEmbedder{}),
		container.WithContainerCompleter(&testutil.MockCompleter{}),
		container.WithContainerTokenCounter(testutil.WordCounter{}),
	)

	// Assert
	assert.ErrorContains(t, err, "failed to initialize chunker")
}
