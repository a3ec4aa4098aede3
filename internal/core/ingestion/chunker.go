package ingestion

import (
	"fmt"
	"strings"
)

// TokenCounter はトークン数をカウントする
type TokenCounter interface {
	CountTokens(text string) int
}

// ChunkerConfig はチャンク分割の設定
type ChunkerConfig struct {
	TargetTokens  int // 目標トークン数。超える前にチャンクを確定する
	MaxTokens     int // 1ユニットの上限。超える段落は行、単語の順に分割する
	OverlapTokens int // 直前チャンク末尾から引き継ぐトークン数の上限
}

// DefaultChunkerConfig はデフォルトのチャンク設定を返す
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		TargetTokens:  500,
		MaxTokens:     800,
		OverlapTokens: 80,
	}
}

func (c ChunkerConfig) validate() error {
	if c.TargetTokens <= 0 {
		return fmt.Errorf("target tokens must be positive: %d", c.TargetTokens)
	}
	if c.MaxTokens < c.TargetTokens {
		return fmt.Errorf("max tokens (%d) must be >= target tokens (%d)", c.MaxTokens, c.TargetTokens)
	}
	if c.OverlapTokens < 0 || c.OverlapTokens >= c.TargetTokens {
		return fmt.Errorf("overlap tokens (%d) must be in [0, target tokens)", c.OverlapTokens)
	}
	return nil
}

const paragraphSeparator = "\n\n"

// Chunker は段落単位でテキストをチャンク化する
type Chunker struct {
	counter TokenCounter
	cfg     ChunkerConfig
}

// NewChunker は新しいChunkerを作成する
func NewChunker(counter TokenCounter, cfg ChunkerConfig) (*Chunker, error) {
	if counter == nil {
		return nil, fmt.Errorf("token counter is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid chunker config: %w", err)
	}
	return &Chunker{counter: counter, cfg: cfg}, nil
}

type unit struct {
	text   string
	tokens int
}

// Chunk はテキストを順序付きのチャンクに分割する
func (c *Chunker) Chunk(text string) []TextChunk {
	units := c.units(text)
	if len(units) == 0 {
		return nil
	}

	sepTokens := c.counter.CountTokens(paragraphSeparator)

	var (
		chunks  []TextChunk
		current []unit
		tokens  int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		parts := make([]string, len(current))
		for i, u := range current {
			parts[i] = u.text
		}
		content := strings.Join(parts, paragraphSeparator)
		chunks = append(chunks, TextChunk{
			Ordinal: len(chunks),
			Content: content,
			Tokens:  c.counter.CountTokens(content),
		})
	}

	for _, u := range units {
		cost := u.tokens
		if len(current) > 0 {
			cost += sepTokens
		}

		if len(current) > 0 && tokens+cost > c.cfg.TargetTokens {
			flush()
			current, tokens = c.overlap(current, sepTokens, u.tokens)
			cost = u.tokens
			if len(current) > 0 {
				cost += sepTokens
			}
		}

		current = append(current, u)
		tokens += cost
	}
	flush()

	return chunks
}

// overlap は確定したチャンクの末尾ユニットのうち、次チャンクへ引き継ぐものを返す
// 引き継ぎ分と次のユニットの合計が MaxTokens を超える場合は引き継がない
func (c *Chunker) overlap(prev []unit, sepTokens, nextTokens int) ([]unit, int) {
	if c.cfg.OverlapTokens == 0 {
		return nil, 0
	}

	start := len(prev)
	total := 0
	for i := len(prev) - 1; i > 0; i-- {
		cost := prev[i].tokens + sepTokens
		if total+cost > c.cfg.OverlapTokens {
			break
		}
		total += cost
		start = i
	}
	if start == len(prev) || total+nextTokens > c.cfg.MaxTokens {
		return nil, 0
	}

	carried := make([]unit, len(prev)-start)
	copy(carried, prev[start:])
	return carried, total - sepTokens
}

// units はテキストを段落単位に分け、MaxTokens を超える段落をさらに分割する
func (c *Chunker) units(text string) []unit {
	var units []unit
	for _, para := range strings.Split(normalizeText(text), paragraphSeparator) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		units = append(units, c.split(para)...)
	}
	return units
}

func (c *Chunker) split(para string) []unit {
	tokens := c.counter.CountTokens(para)
	if tokens <= c.cfg.MaxTokens {
		return []unit{{text: para, tokens: tokens}}
	}

	lines := strings.Split(para, "\n")
	if len(lines) > 1 {
		return c.pack(lines, "\n")
	}
	return c.pack(strings.Fields(para), " ")
}

// pack は要素を MaxTokens 以内にまとめる。1行で上限を超える場合は単語で、1単語で超える場合は文字で分割する
func (c *Chunker) pack(parts []string, sep string) []unit {
	var (
		units   []unit
		current []string
	)

	emit := func() {
		if len(current) == 0 {
			return
		}
		text := strings.Join(current, sep)
		units = append(units, unit{text: text, tokens: c.counter.CountTokens(text)})
		current = nil
	}

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if c.counter.CountTokens(part) > c.cfg.MaxTokens {
			emit()
			if sep == "\n" {
				units = append(units, c.pack(strings.Fields(part), " ")...)
			} else {
				units = append(units, c.splitRunes(part)...)
			}
			continue
		}

		candidate := strings.Join(append(current, part), sep)
		if len(current) > 0 && c.counter.CountTokens(candidate) > c.cfg.MaxTokens {
			emit()
		}
		current = append(current, part)
	}
	emit()

	return units
}

// splitRunes は空白を含まない長いテキスト（日本語の文章、URL、base64 など）を
// 文字境界で MaxTokens 以内に分割する
func (c *Chunker) splitRunes(text string) []unit {
	var units []unit
	runes := []rune(text)
	for len(runes) > 0 {
		// MaxTokens に収まる最長の接頭辞を二分探索する。最低1文字は進める
		lo, hi := 1, len(runes)
		for lo < hi {
			mid := (lo + hi + 1) / 2
			if c.counter.CountTokens(string(runes[:mid])) <= c.cfg.MaxTokens {
				lo = mid
			} else {
				hi = mid - 1
			}
		}
		piece := string(runes[:lo])
		units = append(units, unit{text: piece, tokens: c.counter.CountTokens(piece)})
		runes = runes[lo:]
	}
	return units
}
