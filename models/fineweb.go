package models

// FineWebSearchResponse is the envelope returned by the FineWeb search API.
// Each entry in Results is a base64-encoded JSON document.
type FineWebSearchResponse struct {
	Results []string `json:"results"`
}

// FineWebDocument is the decoded form of one FineWeb search result. Older
// index snapshots use "text" instead of "contents" for the body.
type FineWebDocument struct {
	Contents string `json:"contents"`
	Text     string `json:"text"`
	URL      string `json:"url"`
}

// RetrievedDocument is a document handed from the retrieval stage to the
// rest of the pipeline, with its citation URL.
type RetrievedDocument struct {
	Content string `json:"content"`
	URL     string `json:"url"`
}
