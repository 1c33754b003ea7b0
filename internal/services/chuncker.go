package services

import (
	"strings"
	"unicode/utf8"
)

type TextChuncker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChuncker {
	return &textChunker{}
}

// ChunkText implements TextChuncker. It splits text into word windows of at
// most maxChunkSize characters; consecutive windows share up to overlap
// characters of trailing words. A single word longer than the window becomes
// its own chunk.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(words) {
		end := start
		length := 0
		for end < len(words) {
			add := utf8.RuneCountInString(words[end])
			if end > start {
				add++
			}
			if end > start && length+add > maxChunkSize {
				break
			}
			length += add
			end++
		}

		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}

		// Step back over trailing words that fit in the overlap, always
		// advancing at least one word.
		next := end
		carried := 0
		for next > start+1 {
			w := utf8.RuneCountInString(words[next-1]) + 1
			if carried+w > overlap {
				break
			}
			carried += w
			next--
		}
		start = next
	}

	return chunks
}

// wordCount counts whitespace-separated words.
func wordCount(text string) int {
	return len(strings.Fields(text))
}
