package services

import "fmt"

// ChunkTokens splits a token sequence into overlapping windows of at most
// size tokens, each window starting size-overlap tokens after the previous
// one. A trailing window that would hold nothing but the previous window's
// overlap is dropped.
func ChunkTokens(tokens []int, size, overlap int) ([][]int, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	if overlap >= size {
		return nil, fmt.Errorf("overlap size (%d) must be smaller than chunk size (%d)", overlap, size)
	}
	if len(tokens) <= size {
		return [][]int{tokens}, nil
	}

	step := size - overlap
	var chunks [][]int
	for i := 0; i < len(tokens); i += step {
		end := i + size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := tokens[i:end]
		if len(chunk) < overlap && i > 0 {
			break
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}
