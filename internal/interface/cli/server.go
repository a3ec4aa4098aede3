package cli

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/JDRienow/brokerchat-sub001/internal/interface/api"
)

// ServerStartAction はHTTPサーバを起動するコマンドのアクション
func ServerStartAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	cfg := appCtx.Config
	port := cfg.Server.Port
	if cmd.IsSet("port") {
		port = int(cmd.Int("port"))
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("ポート番号が不正です: %d", port)
	}

	cont := appCtx.Container
	logger := cont.Logger()

	handler := api.NewHandler(api.Dependencies{
		Chat:      cont.ChatService,
		Documents: cont.DocumentService,
		Ingestion: cont.IngestionService,
		Brokers:   cont.BrokerService,
		Health:    cont.Database(),
	},
		api.WithLogger(logger),
		api.WithChatRateLimit(cfg.Chat.RateLimitPerMinute),
		api.WithMaxUploadBytes(cfg.Ingestion.MaxBytes),
	)

	server := api.NewServer(api.ServerConfig{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	}, handler.Routes(), logger)

	return server.Run(ctx)
}
