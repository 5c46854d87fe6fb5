package models

// RunRequest is the body of the dynamic-evaluation POST /run endpoint.
type RunRequest struct {
	Question string `json:"question" binding:"required"`
}

// EvaluateRequest is the body of the static-evaluation POST /evaluate endpoint.
type EvaluateRequest struct {
	Query string `json:"query" binding:"required"`
	IID   string `json:"iid" binding:"required"`
}
