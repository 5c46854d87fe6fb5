package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmu-ragent/ragserver/models"
	"github.com/mmu-ragent/ragserver/services"
)

// RAGController handles the HTTP surface of the RAG pipeline. It depends on
// the RAGService for the actual retrieve/rerank/generate work.
type RAGController struct {
	ragService services.RAGService
	resultLog  *services.ResultLog
}

// NewRAGController creates the controller with its service dependencies.
func NewRAGController(service services.RAGService, resultLog *services.ResultLog) *RAGController {
	return &RAGController{
		ragService: service,
		resultLog:  resultLog,
	}
}

// Health is the Gin handler for GET /health.
func (c *RAGController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Run is the Gin handler for POST /run. It streams the pipeline's progress
// and final report as server-sent events.
func (c *RAGController) Run(ctx *gin.Context) {
	var req models.RunRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Writer.WriteHeader(http.StatusOK)

	c.ragService.StreamRun(ctx.Request.Context(), req.Question, func(ev models.StreamResponse) {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Printf("WARN: could not marshal stream event: %v", err)
			return
		}
		fmt.Fprintf(ctx.Writer, "data: %s\n\n", data)
		ctx.Writer.Flush()
	})
}

// Evaluate is the Gin handler for POST /evaluate. It runs the pipeline
// synchronously and records the response in the result log.
func (c *RAGController) Evaluate(ctx *gin.Context) {
	var req models.EvaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	answer, err := c.ragService.RunRAG(ctx.Request.Context(), req.Query)
	if err != nil {
		log.Printf("CONTROLLER: Error in /evaluate: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprintf("An error occurred: %v", err)})
		return
	}

	resp := models.EvaluateResponse{
		QueryID:           req.IID,
		GeneratedResponse: answer,
	}

	if err := c.resultLog.Append(resp); err != nil {
		// The evaluation itself succeeded; a logging failure is not fatal.
		log.Printf("WARN: Failed to write to result log: %v", err)
	}

	ctx.JSON(http.StatusOK, resp)
}
