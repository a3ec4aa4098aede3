package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/JDRienow/brokerchat-sub001/internal/core/chat"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	"github.com/JDRienow/brokerchat-sub001/internal/platform/container"
)

// ChatAskAction はドキュメントに質問し、回答と参照したチャンクを表示する
func ChatAskAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	documentID, err := uuid.Parse(cmd.String("document"))
	if err != nil {
		return fmt.Errorf("ドキュメントIDが不正です: %w", err)
	}

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	result, err := appCtx.Container.ChatService.Ask(ctx, chat.AskParams{
		DocumentID: documentID,
		Question:   cmd.String("question"),
	})
	if err != nil {
		return err
	}

	w := output(cmd)
	fmt.Fprintln(w, result.Answer)
	fmt.Fprintln(w)

	labelColor.Fprintf(w, "Sources (%d)\n", len(result.Sources))
	for _, src := range result.Sources {
		mutedColor.Fprintf(w, "  #%d score=%.3f  %s\n", src.Ordinal, src.Score, preview(src.Content, 80))
	}
	mutedColor.Fprintf(w, "tokens: prompt=%d completion=%d finish=%s\n",
		result.Usage.PromptTokens, result.Usage.CompletionTokens, result.FinishReason)
	if !result.Persisted {
		warnColor.Fprintln(w, "チャット履歴の保存に失敗しました")
	}
	return nil
}

// ChatHistoryAction はドキュメントのチャット履歴を表示する
func ChatHistoryAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	documentID, err := uuid.Parse(cmd.String("document"))
	if err != nil {
		return fmt.Errorf("ドキュメントIDが不正です: %w", err)
	}

	appCtx, err := NewAppContext(ctx, envFile, container.WithoutModelAPI())
	if err != nil {
		return err
	}
	defer appCtx.Close()

	messages, err := appCtx.Container.DocumentService.History(ctx, documentID)
	if err != nil {
		return err
	}

	w := output(cmd)
	if len(messages) == 0 {
		warnColor.Fprintln(w, "履歴はありません")
		return nil
	}
	for _, msg := range messages {
		c := labelColor
		if msg.Role == document.RoleAssistant {
			c = successColor
		}
		c.Fprintf(w, "[%s] %s\n", msg.CreatedAt.Format("2006-01-02 15:04:05"), msg.Role)
		fmt.Fprintln(w, msg.Content)
		fmt.Fprintln(w)
	}
	return nil
}

// preview は改行を除いた先頭 n 文字を返す
func preview(s string, n int) string {
	runes := []rune(s)
	for i, r := range runes {
		if r == '\n' || r == '\r' || r == '\t' {
			runes[i] = ' '
		}
	}
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "…"
}
