package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateUTF8(t *testing.T) {
	assert.Equal(t, "short", truncateUTF8("short", 10))
	assert.Equal(t, "abcde", truncateUTF8("abcdefgh", 5))

	// "é" is two bytes; byte 5 falls inside the second one.
	got := truncateUTF8("résé", 5)
	assert.Equal(t, "rés", got)
	assert.True(t, utf8.ValidString(got))

	long := strings.Repeat("日本語", 5000)
	cut := truncateUTF8(long, maxEmbedInputBytes)
	assert.LessOrEqual(t, len(cut), maxEmbedInputBytes)
	assert.True(t, utf8.ValidString(cut))
	assert.True(t, strings.HasPrefix(long, cut))
}
