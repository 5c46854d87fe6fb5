package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/mmu-ragent/ragserver/models"
)

// Retriever fetches candidate documents for a query. Implementations are the
// FineWeb search API and the local Chroma corpus store.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedDocument, error)
}

// FineWebRetriever queries the FineWeb search API. Each result comes back
// base64-encoded; documents that fail to decode are skipped rather than
// failing the whole retrieval.
type FineWebRetriever struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewFineWebRetriever creates a retriever for the FineWeb search API.
func NewFineWebRetriever(client *http.Client, baseURL, apiKey string) *FineWebRetriever {
	return &FineWebRetriever{
		httpClient: client,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// Retrieve implements Retriever.
func (r *FineWebRetriever) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedDocument, error) {
	if r.apiKey == "" {
		return nil, fmt.Errorf("fineweb api key is not set")
	}

	reqURL := fmt.Sprintf("%s?query=%s&k=%d", r.baseURL, url.QueryEscape(query), topK)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fineweb http request: %w", err)
	}
	httpReq.Header.Set("x-api-key", r.apiKey)

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call fineweb search api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fineweb api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var searchResp models.FineWebSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode fineweb response: %w", err)
	}

	var docs []models.RetrievedDocument
	for _, encoded := range searchResp.Results {
		doc, err := decodeFineWebDocument(encoded)
		if err != nil {
			log.Printf("WARN: skipping a fineweb document due to a decoding error: %v", err)
			continue
		}
		if doc.Content == "" {
			log.Printf("WARN: 'contents' or 'text' key not found in fineweb doc, skipping")
			continue
		}
		doc.Content = CleanText(doc.Content)
		docs = append(docs, doc)
	}
	return docs, nil
}

func decodeFineWebDocument(encoded string) (models.RetrievedDocument, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return models.RetrievedDocument{}, fmt.Errorf("invalid base64: %w", err)
	}

	var doc models.FineWebDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.RetrievedDocument{}, fmt.Errorf("invalid document json: %w", err)
	}

	content := doc.Contents
	if content == "" {
		content = doc.Text
	}
	docURL := doc.URL
	if docURL == "" {
		docURL = "No URL provided"
	}
	return models.RetrievedDocument{Content: content, URL: docURL}, nil
}
