package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestClip(t *testing.T) {
	t.Run("returns short strings unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", Clip("hello", 10))
		assert.Equal(t, "hello", Clip("hello", 5))
		assert.Equal(t, "", Clip("", 10))
	})

	t.Run("cuts to the byte limit", func(t *testing.T) {
		assert.Equal(t, "hel", Clip("hello", 3))
	})

	t.Run("never splits a multibyte rune", func(t *testing.T) {
		s := strings.Repeat("é", 100) // 2 bytes per rune

		for limit := 0; limit <= len(s); limit++ {
			clipped := Clip(s, limit)
			assert.True(t, utf8.ValidString(clipped), "limit %d produced invalid UTF-8", limit)
			assert.LessOrEqual(t, len(clipped), limit)
		}
	})
}
