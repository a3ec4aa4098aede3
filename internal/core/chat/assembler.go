package chat

import (
	"strings"

	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
)

// ContextSeparator はコンテキスト内のチャンク区切り
const ContextSeparator = "\n\n---\n\n"

// AssembledContext は組み立て済みのコンテキスト
type AssembledContext struct {
	Text    string
	Chunks  []*document.ScoredChunk // 採用したチャンク（入力順）
	Tokens  int                     // TokenCounter 未設定時は 0
	Dropped int                     // トークン上限で落としたチャンク数
}

// ContextAssembler は検索結果のチャンクを1つのコンテキスト文字列に連結する
type ContextAssembler struct {
	counter   TokenCounter
	maxTokens int
}

// NewContextAssembler は新しいContextAssemblerを作成する
// counter が nil または maxTokens が 0 以下の場合は上限なし
func NewContextAssembler(counter TokenCounter, maxTokens int) *ContextAssembler {
	return &ContextAssembler{
		counter:   counter,
		maxTokens: maxTokens,
	}
}

// Assemble は検索順を保ったままチャンクを連結する
// 上限を超える最初のチャンクで打ち切り、チャンクの途中では切らない
func (a *ContextAssembler) Assemble(chunks []*document.ScoredChunk) AssembledContext {
	result := AssembledContext{
		Chunks: make([]*document.ScoredChunk, 0, len(chunks)),
	}
	if len(chunks) == 0 {
		return result
	}

	limited := a.counter != nil && a.maxTokens > 0
	separatorTokens := 0
	if a.counter != nil {
		separatorTokens = a.counter.CountTokens(ContextSeparator)
	}

	parts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		cost := 0
		if a.counter != nil {
			cost = a.counter.CountTokens(c.Content)
			if len(parts) > 0 {
				cost += separatorTokens
			}
		}
		if limited && result.Tokens+cost > a.maxTokens {
			result.Dropped = len(chunks) - i
			break
		}
		parts = append(parts, c.Content)
		result.Chunks = append(result.Chunks, c)
		result.Tokens += cost
	}

	result.Text = strings.Join(parts, ContextSeparator)
	return result
}
