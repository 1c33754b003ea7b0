package services

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%03d", i)
	}
	return strings.Join(words, " ")
}

func TestChunkText_Empty(t *testing.T) {
	tc := NewTextChunker()

	assert.Nil(t, tc.ChunkText("", 100, 25))
	assert.Nil(t, tc.ChunkText("  \n\t ", 100, 25))
}

func TestChunkText_ShortTextIsOneChunk(t *testing.T) {
	tc := NewTextChunker()

	chunks := tc.ChunkText("Senior Go engineer\n\nBuilt   payment systems", 1000, 250)

	require.Len(t, chunks, 1)
	assert.Equal(t, "Senior Go engineer Built payment systems", chunks[0])
}

func TestChunkText_WindowsOverlap(t *testing.T) {
	tc := NewTextChunker()
	text := numberedWords(100)

	chunks := tc.ChunkText(text, 50, 12)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 50)
	}

	// Ten 4-character words fill a 50-character window; the last two carry over.
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	require.Len(t, first, 10)
	assert.Equal(t, first[8:], second[:2])

	last := strings.Fields(chunks[len(chunks)-1])
	assert.Equal(t, "w099", last[len(last)-1])
}

func TestChunkText_CoversEveryWord(t *testing.T) {
	tc := NewTextChunker()
	text := numberedWords(237)

	chunks := tc.ChunkText(text, 120, 30)

	seen := make(map[string]bool)
	for _, c := range chunks {
		for _, w := range strings.Fields(c) {
			seen[w] = true
		}
	}
	assert.Len(t, seen, 237)
}

func TestChunkText_OversizedWord(t *testing.T) {
	tc := NewTextChunker()
	long := strings.Repeat("x", 80)

	chunks := tc.ChunkText("short "+long+" tail", 40, 10)

	assert.Equal(t, []string{"short", long, "tail"}, chunks)
}

func TestChunkText_Deterministic(t *testing.T) {
	tc := NewTextChunker()
	text := numberedWords(300)

	assert.Equal(t, tc.ChunkText(text, 200, 50), tc.ChunkText(text, 200, 50))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, wordCount(""))
	assert.Equal(t, 4, wordCount(" one two\nthree\tfour "))
}
