package chat_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/JDRienow/brokerchat-sub001/internal/core/chat"
	"github.com/JDRienow/brokerchat-sub001/internal/core/document"
	testutil "github.com/JDRienow/brokerchat-sub001/internal/core/testing"
)

func TestContextAssembler_Assemble(t *testing.T) {
	docID := uuid.New()
	chunks := []*document.ScoredChunk{
		testutil.TestScoredChunk(docID, 0, "aaaaaaaaaa", 0.9), // 10
		testutil.TestScoredChunk(docID, 1, "bbbbbbbbbb", 0.8), // 10 + 7
		testutil.TestScoredChunk(docID, 2, "cc", 0.7),         // 2 + 7
	}
	sep := len(chat.ContextSeparator)

	tests := []struct {
		name        string
		counter     chat.TokenCounter
		maxTokens   int
		wantText    string
		wantKept    int
		wantDropped int
		wantTokens  int
	}{
		{
			name:       "上限なし",
			counter:    testutil.RuneCounter{},
			maxTokens:  0,
			wantText:   "aaaaaaaaaa" + chat.ContextSeparator + "bbbbbbbbbb" + chat.ContextSeparator + "cc",
			wantKept:   3,
			wantTokens: 22 + 2*sep,
		},
		{
			name:        "上限を超えた時点で打ち切り",
			counter:     testutil.RuneCounter{},
			maxTokens:   10 + sep + 10,
			wantText:    "aaaaaaaaaa" + chat.ContextSeparator + "bbbbbbbbbb",
			wantKept:    2,
			wantDropped: 1,
			wantTokens:  20 + sep,
		},
		{
			name:        "後続の小さいチャンクも詰めない",
			counter:     testutil.RuneCounter{},
			maxTokens:   15,
			wantText:    "aaaaaaaaaa",
			wantKept:    1,
			wantDropped: 2,
			wantTokens:  10,
		},
		{
			name:        "先頭チャンクが上限超過",
			counter:     testutil.RuneCounter{},
			maxTokens:   5,
			wantText:    "",
			wantKept:    0,
			wantDropped: 3,
		},
		{
			name:      "カウンタなし",
			counter:   nil,
			maxTokens: 1,
			wantText:  "aaaaaaaaaa" + chat.ContextSeparator + "bbbbbbbbbb" + chat.ContextSeparator + "cc",
			wantKept:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chat.NewContextAssembler(tt.counter, tt.maxTokens).Assemble(chunks)

			assert.Equal(t, tt.wantText, got.Text)
			assert.Len(t, got.Chunks, tt.wantKept)
			assert.Equal(t, tt.wantDropped, got.Dropped)
			assert.Equal(t, tt.wantTokens, got.Tokens)
		})
	}
}

func TestContextAssembler_Empty(t *testing.T) {
	got := chat.NewContextAssembler(testutil.RuneCounter{}, 100).Assemble(nil)

	assert.Empty(t, got.Text)
	assert.Empty(t, got.Chunks)
	assert.Zero(t, got.Dropped)
}
