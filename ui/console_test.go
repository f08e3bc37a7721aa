package ui

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestRenderValue(t *testing.T) {
	assert.Equal(t, "healthy", renderValue("healthy"))
	assert.Equal(t, "3", renderValue(float64(3)), "JSON numbers decode as float64")
	assert.Equal(t, "2.5", renderValue(2.5))
	assert.Equal(t, "true", renderValue(true))
	assert.Equal(t, `{"total_contexts":3}`, renderValue(map[string]any{"total_contexts": float64(3)}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly ten", truncate("exactly ten", 11))
	assert.Equal(t, "this is a ...", truncate("this is a very long prompt", 10))
}

func TestTruncateCountsRunes(t *testing.T) {
	out := truncate("héllo wörld, ångström", 9)
	assert.Equal(t, "héllo wör...", out)
	assert.True(t, utf8.ValidString(out), "truncation must not split a multi-byte character")

	assert.Equal(t, "日本語...", truncate("日本語のプロンプトです", 3))
	assert.Equal(t, "héllo", truncate("héllo", 5), "rune count, not byte count, decides whether to cut")
}
