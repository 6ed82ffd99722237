package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	text := "short contract text"
	chunks := Split(text, ChunkConfig{WindowSize: 12000, Overlap: 400})

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
}

func TestSplit_EmptyText(t *testing.T) {
	assert.Empty(t, Split("", DefaultChunkConfig()))
}

func TestSplit_ExactWindowSize(t *testing.T) {
	text := strings.Repeat("a", 12000)
	chunks := Split(text, ChunkConfig{WindowSize: 12000, Overlap: 400})

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
}

func TestSplit_ThreeChunksFor25000Chars(t *testing.T) {
	text := strings.Repeat("x", 25000)
	chunks := Split(text, ChunkConfig{WindowSize: 12000, Overlap: 400})

	require.Len(t, chunks, 3)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 11600, chunks[1].Start)
	assert.Equal(t, 23200, chunks[2].Start)
	assert.Len(t, chunks[0].Text, 12000)
	assert.Len(t, chunks[1].Text, 12000)
	assert.Len(t, chunks[2].Text, 1800)
}

func TestSplit_CoversTextWithNoGaps(t *testing.T) {
	cases := []struct {
		name    string
		length  int
		window  int
		overlap int
	}{
		{"tiny window", 100, 10, 3},
		{"window equals length", 500, 500, 50},
		{"one char over", 501, 500, 50},
		{"zero overlap", 1000, 128, 0},
		{"large overlap", 10000, 1000, 999},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text := strings.Repeat("y", tc.length)
			chunks := Split(text, ChunkConfig{WindowSize: tc.window, Overlap: tc.overlap})
			require.NotEmpty(t, chunks)

			covered := 0
			for i, c := range chunks {
				assert.LessOrEqual(t, c.Start, covered, "chunk %d leaves a gap", i)
				if end := c.Start + len(c.Text); end > covered {
					covered = end
				}
				if i < len(chunks)-1 {
					assert.Len(t, c.Text, tc.window, "only the last chunk may be short")
				}
			}
			assert.Equal(t, tc.length, covered)
		})
	}
}

func TestSplit_OverlapIsShared(t *testing.T) {
	text := strings.Repeat("abcdefghij", 3000) // 30000 chars
	chunks := Split(text, ChunkConfig{WindowSize: 12000, Overlap: 400})

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev.Text[len(prev.Text)-400:]
		assert.True(t, strings.HasPrefix(chunks[i].Text, tail))
	}
}
