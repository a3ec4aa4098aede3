package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/JDRienow/brokerchat-sub001/internal/infra/postgres"
	"github.com/JDRienow/brokerchat-sub001/internal/platform/database"
	"github.com/JDRienow/brokerchat-sub001/internal/platform/logger"
)

// MigrateUpAction はスキーマを最新まで適用する
func MigrateUpAction(ctx context.Context, cmd *cli.Command) error {
	return runMigrate(cmd, database.MigrateUp)
}

// MigrateDownAction は全てのマイグレーションを取り消す
func MigrateDownAction(ctx context.Context, cmd *cli.Command) error {
	return runMigrate(cmd, database.MigrateDown)
}

func runMigrate(cmd *cli.Command, direction database.MigrateDirection) error {
	cfg, err := loadConfig(cmd.String("env"))
	if err != nil {
		return err
	}
	appLogger := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})

	if err := database.RunMigrations(cfg.Database.ConnString(), postgres.Migrations(), direction, appLogger); err != nil {
		return err
	}

	successColor.Fprintf(output(cmd), "マイグレーション (%s) が完了しました\n", direction)
	return nil
}
