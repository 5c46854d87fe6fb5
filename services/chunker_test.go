package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(n int) []int {
	tokens := make([]int, n)
	for i := range tokens {
		tokens[i] = i
	}
	return tokens
}

func TestChunkTokensOverlappingWindows(t *testing.T) {
	chunks, err := ChunkTokens(sequence(25), 10, 2)
	require.NoError(t, err)

	// The final window at offset 24 would hold a single token, less than the
	// overlap, and is dropped.
	require.Len(t, chunks, 3)
	assert.Equal(t, sequence(25)[0:10], chunks[0])
	assert.Equal(t, sequence(25)[8:18], chunks[1])
	assert.Equal(t, sequence(25)[16:25], chunks[2])
}

func TestChunkTokensShortInputSingleChunk(t *testing.T) {
	tokens := sequence(7)
	chunks, err := ChunkTokens(tokens, 10, 2)
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, tokens, chunks[0])
}

func TestChunkTokensExactSize(t *testing.T) {
	tokens := sequence(10)
	chunks, err := ChunkTokens(tokens, 10, 2)
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	assert.Equal(t, tokens, chunks[0])
}

func TestChunkTokensEmpty(t *testing.T) {
	chunks, err := ChunkTokens(nil, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkTokensEmptyInputSkipsOverlapValidation(t *testing.T) {
	// Empty input wins over an invalid overlap: no tokens means no chunks,
	// not an error.
	chunks, err := ChunkTokens(nil, 10, 15)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkTokensOverlapMustBeSmaller(t *testing.T) {
	_, err := ChunkTokens(sequence(20), 10, 10)
	assert.Error(t, err)

	_, err = ChunkTokens(sequence(20), 10, 15)
	assert.Error(t, err)
}

func TestChunkTokensDropsOverlapOnlyTail(t *testing.T) {
	// 12 tokens, size 10, overlap 9: step is 1, so every window past index 2
	// would be shorter than the overlap and must be dropped.
	chunks, err := ChunkTokens(sequence(12), 10, 9)
	require.NoError(t, err)

	for _, chunk := range chunks[1:] {
		assert.GreaterOrEqual(t, len(chunk), 9)
	}
}
