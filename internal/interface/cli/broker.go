package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/JDRienow/brokerchat-sub001/internal/platform/container"
)

// BrokerCreateAction はブローカーを登録し、APIキーを表示する
func BrokerCreateAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	email := cmd.String("email")
	name := cmd.String("name")

	appCtx, err := NewAppContext(ctx, envFile, container.WithoutModelAPI())
	if err != nil {
		return err
	}
	defer appCtx.Close()

	b, apiKey, err := appCtx.Container.BrokerService.Create(ctx, email, name)
	if err != nil {
		return err
	}

	w := output(cmd)
	successColor.Fprintln(w, "ブローカーを登録しました")
	labelColor.Fprint(w, "ID:      ")
	fmt.Fprintln(w, b.ID)
	labelColor.Fprint(w, "Email:   ")
	fmt.Fprintln(w, b.Email)
	labelColor.Fprint(w, "API Key: ")
	fmt.Fprintln(w, apiKey)
	warnColor.Fprintln(w, "APIキーは再表示できません。安全な場所に保管してください")
	return nil
}
