package chat

import (
	"fmt"
	"strings"
)

// noContextNotice は関連チャンクが見つからなかった場合にコンテキストへ入れる文言
const noContextNotice = "(No relevant passages were found in this document.)"

// BuildSystemPrompt はドキュメントのタイトルとコンテキストからシステムプロンプトを構築する
func BuildSystemPrompt(title, contextText string) string {
	var sb strings.Builder

	sb.WriteString("You are a helpful assistant answering questions from a real-estate broker's clients.\n")
	fmt.Fprintf(&sb, "Answer questions about the document %q using only the context below.\n", title)
	sb.WriteString("If the context does not contain the answer, say that the document does not provide that information.\n")
	sb.WriteString("Do not invent figures, dates, or terms. Quote numbers exactly as they appear in the context.\n")
	sb.WriteString("Answer in the same language as the question.\n\n")

	sb.WriteString("Context:\n")
	if strings.TrimSpace(contextText) == "" {
		sb.WriteString(noContextNotice)
	} else {
		sb.WriteString(contextText)
	}
	sb.WriteString("\n")

	return sb.String()
}
