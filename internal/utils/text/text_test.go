package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountRunes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"ascii", "hello", 5},
		{"chinese", "你好世界", 4},
		{"mixed", "比特币 BTC 大涨", 9},
		{"emoji", "📈📉", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountRunes(tt.text))
		})
	}
}

func TestClampRunes(t *testing.T) {
	assert.Equal(t, "hello", ClampRunes("hello", 10), "short text is untouched")
	assert.Equal(t, "hello", ClampRunes("hello", 5), "exact limit is untouched")
	assert.Equal(t, "hel", ClampRunes("hello", 3))
	assert.Equal(t, "你好", ClampRunes("你好世界", 2), "clamps by rune, not byte")
	assert.Equal(t, "", ClampRunes("hello", 0))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "hello", TruncateRunes("hello", 5, "…"), "no marker without truncation")
	assert.Equal(t, "hel…", TruncateRunes("hello", 3, "…"))
	assert.Equal(t, "你好 …", TruncateRunes("你好世界", 2, " …"))
}

func TestTruncateRunes_MarkerNotCounted(t *testing.T) {
	got := TruncateRunes(strings.Repeat("字", 1500), 1000, " …")

	assert.Equal(t, 1002, CountRunes(got))
	assert.True(t, strings.HasSuffix(got, " …"))
}
