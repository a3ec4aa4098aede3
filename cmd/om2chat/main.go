package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	appcli "github.com/JDRienow/brokerchat-sub001/internal/interface/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "om2chat",
		Usage: "不動産ブローカー向けドキュメントRAGチャット",
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "サーバ関連コマンド",
				Commands: []*cli.Command{
					{
						Name:  "start",
						Usage: "HTTPサーバを起動",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.IntFlag{
								Name:  "port",
								Usage: "HTTPポート（省略時は環境変数 SERVER_PORT またはデフォルトの8080）",
								Value: 8080,
							},
						},
						Action: appcli.ServerStartAction,
					},
				},
			},
			{
				Name:  "migrate",
				Usage: "スキーマ管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "up",
						Usage: "マイグレーションを適用",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
						},
						Action: appcli.MigrateUpAction,
					},
					{
						Name:  "down",
						Usage: "マイグレーションを取り消す",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
						},
						Action: appcli.MigrateDownAction,
					},
				},
			},
			{
				Name:  "broker",
				Usage: "ブローカー管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "create",
						Usage: "ブローカーを登録しAPIキーを発行",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "email",
								Usage:    "メールアドレス",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "name",
								Usage:    "表示名",
								Required: true,
							},
						},
						Action: appcli.BrokerCreateAction,
					},
				},
			},
			{
				Name:  "document",
				Usage: "ドキュメント管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "ingest",
						Usage: "ファイルまたはURLからドキュメントを取り込む",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "broker-email",
								Usage:    "所有ブローカーのメールアドレス",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "title",
								Usage: "タイトル（省略時はHTMLのtitleまたはファイル名）",
							},
							&cli.StringFlag{
								Name:  "file",
								Usage: "取り込むファイルパス",
							},
							&cli.StringFlag{
								Name:  "url",
								Usage: "取り込むソースURL",
							},
							&cli.StringFlag{
								Name:  "content-type",
								Usage: "Content-Type（省略時は自動判定）",
							},
						},
						Action: appcli.DocumentIngestAction,
					},
					{
						Name:  "list",
						Usage: "ドキュメント一覧を表示",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "broker-email",
								Usage:    "ブローカーのメールアドレス",
								Required: true,
							},
						},
						Action: appcli.DocumentListAction,
					},
					{
						Name:  "delete",
						Usage: "ドキュメントを削除",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "id",
								Usage:    "ドキュメントID",
								Required: true,
							},
						},
						Action: appcli.DocumentDeleteAction,
					},
				},
			},
			{
				Name:  "chat",
				Usage: "チャットコマンド",
				Commands: []*cli.Command{
					{
						Name:  "ask",
						Usage: "ドキュメントに質問する",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "document",
								Usage:    "ドキュメントID",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "question",
								Usage:    "質問",
								Required: true,
							},
						},
						Action: appcli.ChatAskAction,
					},
					{
						Name:  "history",
						Usage: "チャット履歴を表示",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:     "document",
								Usage:    "ドキュメントID",
								Required: true,
							},
						},
						Action: appcli.ChatHistoryAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
