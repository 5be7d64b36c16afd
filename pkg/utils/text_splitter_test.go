package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("hello world", 100, 20)
	assert.Equal(t, []string{"hello world"}, chunks)
}

func TestSplitTextCoversWholeInput(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 50)
	chunks := SplitText(text, 200, 40)

	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 200)
	}

	// Every position of the source must land in at least one chunk.
	// Chunks start at fixed steps, so rejoining the first 'step' runes of
	// each chunk plus the final chunk reproduces the input.
	step := 200 - 40
	var rebuilt strings.Builder
	for i, c := range chunks {
		runes := []rune(c)
		if i == len(chunks)-1 {
			rebuilt.WriteString(c)
			break
		}
		if len(runes) > step {
			runes = runes[:step]
		}
		rebuilt.WriteString(string(runes))
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestSplitTextUnbrokenToken(t *testing.T) {
	text := strings.Repeat("a", 1000)
	chunks := SplitText(text, 100, 10)
	assert.Greater(t, len(chunks), 1)
	assert.Equal(t, strings.Repeat("a", 100), chunks[0])
}
