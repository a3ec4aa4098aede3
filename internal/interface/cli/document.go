package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/JDRienow/brokerchat-sub001/internal/core/ingestion"
	"github.com/JDRienow/brokerchat-sub001/internal/platform/container"
)

// DocumentIngestAction はファイルまたはURLからドキュメントを取り込む
func DocumentIngestAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	email := cmd.String("broker-email")
	title := cmd.String("title")
	file := cmd.String("file")
	sourceURL := cmd.String("url")

	if (file == "") == (sourceURL == "") {
		return fmt.Errorf("--file と --url のどちらか一方を指定してください")
	}

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()
	cont := appCtx.Container

	b, err := cont.BrokerService.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	params := ingestion.Params{
		BrokerID:    b.ID,
		Title:       title,
		ContentType: cmd.String("content-type"),
	}
	if sourceURL != "" {
		params.SourceURL = &sourceURL
	}
	if file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("ファイルの読み込みに失敗: %w", err)
		}
		params.Content = content
		params.Filename = filepath.Base(file)
	}

	result, err := cont.IngestionService.Ingest(ctx, params)
	if err != nil {
		return err
	}

	w := output(cmd)
	successColor.Fprintln(w, "ドキュメントを取り込みました")
	labelColor.Fprint(w, "ID:     ")
	fmt.Fprintln(w, result.Document.ID)
	labelColor.Fprint(w, "Title:  ")
	fmt.Fprintln(w, result.Document.Title)
	labelColor.Fprint(w, "Type:   ")
	fmt.Fprintln(w, result.Document.ContentType)
	labelColor.Fprint(w, "Chunks: ")
	fmt.Fprintf(w, "%d (%d tokens)\n", result.ChunkCount, result.TotalTokens)
	return nil
}

// DocumentListAction はブローカーのドキュメント一覧を表示する
func DocumentListAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	email := cmd.String("broker-email")

	appCtx, err := NewAppContext(ctx, envFile, container.WithoutModelAPI())
	if err != nil {
		return err
	}
	defer appCtx.Close()
	cont := appCtx.Container

	b, err := cont.BrokerService.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	docs, err := cont.DocumentService.List(ctx, b.ID)
	if err != nil {
		return err
	}

	w := output(cmd)
	if len(docs) == 0 {
		warnColor.Fprintln(w, "ドキュメントはありません")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tSOURCE\tCREATED")
	for _, d := range docs {
		source := "-"
		if d.SourceURL != nil {
			source = *d.SourceURL
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Title, d.ContentType, source, d.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// DocumentDeleteAction はドキュメントをチャンク・履歴ごと削除する
func DocumentDeleteAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	id, err := uuid.Parse(cmd.String("id"))
	if err != nil {
		return fmt.Errorf("ドキュメントIDが不正です: %w", err)
	}

	appCtx, err := NewAppContext(ctx, envFile, container.WithoutModelAPI())
	if err != nil {
		return err
	}
	defer appCtx.Close()
	docs := appCtx.Container.DocumentService

	doc, err := docs.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := docs.Delete(ctx, doc.BrokerID, doc.ID); err != nil {
		return err
	}

	successColor.Fprintf(output(cmd), "ドキュメント %q (%s) を削除しました\n", doc.Title, doc.ID)
	return nil
}
