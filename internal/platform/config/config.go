package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	OpenAI    OpenAIConfig
	Chat      ChatConfig
	Ingestion IngestionConfig
	Log       LogConfig
}

// ServerConfig はHTTPサーバ設定
type ServerConfig struct {
	Port              int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT" envDefault:"10s"`
	// WriteTimeout はリクエスト全体の上限。チャットパイプライン自体はタイムアウトを持たない
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// DatabaseConfig はデータベース接続設定
// URL が指定された場合は個別パラメータより優先されます
type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"om2chat"`
	Password string `env:"DB_PASSWORD"`
	DBName   string `env:"DB_NAME" envDefault:"om2chat"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`
}

// SchemaEmbeddingDimension は chunks.embedding 列の次元数
const SchemaEmbeddingDimension = 1536

// OpenAIConfig はOpenAI API設定（Embeddings + Chat Completions）
type OpenAIConfig struct {
	APIKey             string `env:"OPENAI_API_KEY"`
	BaseURL            string `env:"OPENAI_BASE_URL"`
	EmbeddingModel     string `env:"OPENAI_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDimension int    `env:"OPENAI_EMBEDDING_DIMENSION" envDefault:"1536"`
	ChatModel          string `env:"OPENAI_CHAT_MODEL" envDefault:"gpt-4o-mini"`
}

// ChatConfig はRAGチャットパイプラインの設定
type ChatConfig struct {
	TopK               int           `env:"CHAT_TOP_K" envDefault:"5"`
	MaxTokens          int           `env:"CHAT_MAX_TOKENS" envDefault:"1000"`
	Temperature        float64       `env:"CHAT_TEMPERATURE" envDefault:"0.7"`
	MaxContextTokens   int           `env:"CHAT_MAX_CONTEXT_TOKENS" envDefault:"6000"`
	PersistTimeout     time.Duration `env:"CHAT_PERSIST_TIMEOUT" envDefault:"5s"`
	RateLimitPerMinute int           `env:"CHAT_RATE_LIMIT_PER_MINUTE" envDefault:"0"`
}

// IngestionConfig はドキュメント取り込みの設定
type IngestionConfig struct {
	MaxBytes      int64         `env:"INGEST_MAX_BYTES" envDefault:"10485760"`
	FetchTimeout  time.Duration `env:"INGEST_FETCH_TIMEOUT" envDefault:"30s"`
	TargetTokens  int           `env:"INGEST_TARGET_TOKENS" envDefault:"500"`
	MaxTokens     int           `env:"INGEST_MAX_TOKENS" envDefault:"800"`
	OverlapTokens int           `env:"INGEST_OVERLAP_TOKENS" envDefault:"80"`
	// AllowPrivateNetworks はソースURLの取得でループバックや社内アドレスへの接続を許可する
	AllowPrivateNetworks bool `env:"INGEST_ALLOW_PRIVATE_NETWORKS" envDefault:"false"`
}

// LogConfig はロガー設定
type LogConfig struct {
	Level  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	Format string     `env:"LOG_FORMAT" envDefault:"json"`
}

// Load は.envファイルと環境変数から設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.OpenAI.EmbeddingDimension != SchemaEmbeddingDimension {
		return fmt.Errorf("OPENAI_EMBEDDING_DIMENSION must be %d to match the chunks table: %d", SchemaEmbeddingDimension, c.OpenAI.EmbeddingDimension)
	}
	if c.Chat.TopK <= 0 {
		return fmt.Errorf("CHAT_TOP_K must be positive: %d", c.Chat.TopK)
	}
	if c.Chat.MaxContextTokens < 0 {
		return fmt.Errorf("CHAT_MAX_CONTEXT_TOKENS must not be negative: %d", c.Chat.MaxContextTokens)
	}
	if c.Ingestion.MaxTokens < c.Ingestion.TargetTokens {
		return fmt.Errorf("INGEST_MAX_TOKENS (%d) must be >= INGEST_TARGET_TOKENS (%d)", c.Ingestion.MaxTokens, c.Ingestion.TargetTokens)
	}
	if c.Ingestion.OverlapTokens >= c.Ingestion.TargetTokens {
		return fmt.Errorf("INGEST_OVERLAP_TOKENS (%d) must be < INGEST_TARGET_TOKENS (%d)", c.Ingestion.OverlapTokens, c.Ingestion.TargetTokens)
	}
	return nil
}

// ConnString はpgx/golang-migrate共通で使える接続URLを返します
func (d DatabaseConfig) ConnString() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}
