package services

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// Reranker scores document chunks against the query in embedding space and
// keeps the closest ones. Documents are windowed into token chunks first, so
// a single long document can contribute several candidate contexts.
type Reranker struct {
	tokenizer Tokenizer
	embedder  Embedder
}

// NewReranker creates a reranker over the given tokenizer and embedder.
func NewReranker(tokenizer Tokenizer, embedder Embedder) *Reranker {
	return &Reranker{
		tokenizer: tokenizer,
		embedder:  embedder,
	}
}

// RerankChunks chunks every document, embeds all chunks and the query, and
// returns the topK chunks closest to the query by squared L2 distance.
func (r *Reranker) RerankChunks(ctx context.Context, query string, documents []string, chunkSize, chunkOverlap, topK int) ([]string, error) {
	var chunks []string
	for _, doc := range documents {
		tokens := r.tokenizer.Tokenize(doc)
		if len(tokens) == 0 {
			continue
		}
		tokenChunks, err := ChunkTokens(tokens, chunkSize, chunkOverlap)
		if err != nil {
			return nil, fmt.Errorf("failed to chunk document: %w", err)
		}
		for _, chunk := range tokenChunks {
			chunks = append(chunks, r.tokenizer.Detokenize(chunk))
		}
	}

	if len(chunks) == 0 {
		log.Printf("SERVICE: No chunks were generated from the retrieved documents.")
		return nil, nil
	}
	log.Printf("SERVICE: Created %d chunks from %d documents.", len(chunks), len(documents))

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	type scored struct {
		index    int
		distance float32
	}
	scores := make([]scored, 0, len(chunks))
	for i, chunk := range chunks {
		vec, err := r.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		dist, err := squaredL2(queryVec, vec)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		scores = append(scores, scored{index: i, distance: dist})
	}

	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].distance < scores[b].distance
	})

	if topK > len(scores) {
		topK = len(scores)
	}
	ranked := make([]string, 0, topK)
	for _, s := range scores[:topK] {
		ranked = append(ranked, chunks[s.index])
	}
	return ranked, nil
}

func squaredL2(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimension mismatch: %d vs %d", len(a), len(b))
	}
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum, nil
}
