package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/mmu-ragent/ragserver/models"
)

// LocalRetriever retrieves chunks from the Chroma-backed corpus store
// instead of the FineWeb API.
type LocalRetriever struct {
	collection chromago.Collection
	embedder   Embedder
}

// NewLocalRetriever creates a retriever over the given Chroma collection.
func NewLocalRetriever(collection chromago.Collection, embedder Embedder) *LocalRetriever {
	return &LocalRetriever{
		collection: collection,
		embedder:   embedder,
	}
}

// Retrieve implements Retriever.
func (r *LocalRetriever) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedDocument, error) {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}

	results, err := r.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(queryVec)),
		chromago.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	var docs []models.RetrievedDocument
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()

	if len(documentGroups) == 0 {
		return nil, nil
	}
	for i, doc := range documentGroups[0] {
		if doc.ContentString() == "" {
			continue
		}
		source := "local corpus"
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			if path, ok := metadataSourceFile(metadataGroups[0][i]); ok {
				source = "file://" + path
			}
		}
		docs = append(docs, models.RetrievedDocument{
			Content: doc.ContentString(),
			URL:     source,
		})
	}
	log.Printf("SERVICE: Retrieved %d chunks from the local corpus", len(docs))
	return docs, nil
}

// metadataSourceFile digs the source_file attribute out of a chroma document
// metadata value. DocumentMetadata has no public accessor for its values, so
// it round-trips through JSON.
func metadataSourceFile(metadata chromago.DocumentMetadata) (string, bool) {
	if metadata == nil {
		return "", false
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		return "", false
	}
	var metadataMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metadataMap); err != nil {
		return "", false
	}
	path, ok := metadataMap["source_file"].(string)
	return path, ok
}
