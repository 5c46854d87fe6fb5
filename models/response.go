package models

// EvaluateResponse is the JSON body returned by POST /evaluate. The same
// object is appended, one line per request, to result.jsonl.
type EvaluateResponse struct {
	QueryID           string `json:"query_id"`
	GeneratedResponse string `json:"generated_response"`
}

// StreamResponse is a single server-sent event emitted by POST /run.
// Intermediate events carry progress text; the terminal event carries either
// the final report or an error, with Complete set.
type StreamResponse struct {
	IntermediateSteps string   `json:"intermediate_steps,omitempty"`
	FinalReport       string   `json:"final_report,omitempty"`
	IsIntermediate    bool     `json:"is_intermediate"`
	Citations         []string `json:"citations"`
	Complete          bool     `json:"complete"`
	Error             string   `json:"error,omitempty"`
}
