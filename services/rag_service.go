package services

import (
	"context"
	"fmt"
	"log"

	"github.com/mmu-ragent/ragserver/config"
	"github.com/mmu-ragent/ragserver/models"
)

// RAGService runs the two-stage retrieve/rerank/generate pipeline.
type RAGService interface {
	// RunRAG executes the pipeline and returns the final answer. Queries
	// that retrieve nothing usable return a fallback answer, not an error.
	RunRAG(ctx context.Context, query string) (string, error)

	// StreamRun executes the pipeline, calling emit with a progress event
	// before each stage and with the final report (or error) at the end.
	StreamRun(ctx context.Context, question string, emit func(models.StreamResponse))
}

// ChunkReranker narrows the reranker for the pipeline and its tests.
type ChunkReranker interface {
	RerankChunks(ctx context.Context, query string, documents []string, chunkSize, chunkOverlap, topK int) ([]string, error)
}

// Stage progress and fallback wording, kept stable because evaluation
// harnesses match on it. The "|||---|||" separator splits a finished-stage
// line from the next stage announcement in one event.
const (
	msgPipelineInit = "Query received. Initializing RAG pipeline..."
	msgRetrieving   = "Stage 1: Configuration loaded. Retrieving documents from FineWeb API..."
	msgNoDocuments  = "Stage 1: No documents found on FineWeb for this query."
	msgNoChunks     = "Stage 2: No relevant chunks found after re-ranking."

	answerNoDocuments        = "I could not find any relevant information to answer your question."
	answerNoChunksStreaming  = "I found documents, but no specific information to answer your question."
	answerNoChunksEvaluation = "I found some documents, but no specific information to answer your question."
)

// ragServiceImpl composes the pipeline stages.
type ragServiceImpl struct {
	retriever Retriever
	reranker  ChunkReranker
	generator Generator
	cfg       *config.Config
}

// NewRAGService creates the pipeline service from its stage implementations.
func NewRAGService(retriever Retriever, reranker ChunkReranker, generator Generator, cfg *config.Config) RAGService {
	return &ragServiceImpl{
		retriever: retriever,
		reranker:  reranker,
		generator: generator,
		cfg:       cfg,
	}
}

// RunRAG implements RAGService.
func (r *ragServiceImpl) RunRAG(ctx context.Context, query string) (string, error) {
	log.Printf("SERVICE: Stage 1: Retrieving top-%d documents...", r.cfg.RetrieverTopK)
	docs, err := r.retriever.Retrieve(ctx, query, r.cfg.RetrieverTopK)
	if err != nil {
		return "", fmt.Errorf("retrieval failed: %w", err)
	}
	if len(docs) == 0 {
		log.Printf("SERVICE: No documents found for query.")
		return answerNoDocuments, nil
	}

	texts := documentTexts(docs)

	log.Printf("SERVICE: Stage 2: Processing %d docs and re-ranking for top-%d chunks...", len(texts), r.cfg.RerankTopK)
	contexts, err := r.reranker.RerankChunks(ctx, query, texts, r.cfg.ChunkSize, r.cfg.ChunkOverlap, r.cfg.RerankTopK)
	if err != nil {
		return "", fmt.Errorf("re-ranking failed: %w", err)
	}
	if len(contexts) == 0 {
		log.Printf("SERVICE: No relevant chunks found after re-ranking.")
		return answerNoChunksEvaluation, nil
	}

	log.Printf("SERVICE: Stage 3: Generating answer using model: %s...", r.cfg.GeneratorModel)
	answer, err := r.generator.GenerateAnswer(ctx, query, contexts)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return answer, nil
}

// StreamRun implements RAGService.
func (r *ragServiceImpl) StreamRun(ctx context.Context, question string, emit func(models.StreamResponse)) {
	citations := []string{}

	emit(models.StreamResponse{
		IntermediateSteps: msgPipelineInit,
		IsIntermediate:    true,
		Citations:         citations,
	})

	emit(models.StreamResponse{
		IntermediateSteps: msgRetrieving,
		IsIntermediate:    true,
		Citations:         citations,
	})

	docs, err := r.retriever.Retrieve(ctx, question, r.cfg.RetrieverTopK)
	if err != nil {
		r.emitError(emit, err)
		return
	}
	if len(docs) == 0 {
		emit(models.StreamResponse{
			IntermediateSteps: msgNoDocuments,
			FinalReport:       answerNoDocuments,
			Citations:         citations,
			Complete:          true,
		})
		return
	}

	texts := documentTexts(docs)
	for _, doc := range docs {
		citations = append(citations, doc.URL)
	}

	stepMsg := fmt.Sprintf("Stage 1: Retrieved %d documents.|||---|||Stage 2: Processing and re-ranking chunks...", len(texts))
	emit(models.StreamResponse{
		IntermediateSteps: stepMsg,
		IsIntermediate:    true,
		Citations:         citations,
	})

	contexts, err := r.reranker.RerankChunks(ctx, question, texts, r.cfg.ChunkSize, r.cfg.ChunkOverlap, r.cfg.RerankTopK)
	if err != nil {
		r.emitError(emit, err)
		return
	}
	if len(contexts) == 0 {
		emit(models.StreamResponse{
			IntermediateSteps: msgNoChunks,
			FinalReport:       answerNoChunksStreaming,
			Citations:         citations,
			Complete:          true,
		})
		return
	}

	stepMsg = fmt.Sprintf("Stage 2: Found %d relevant chunks.|||---|||Stage 3: Generating final answer...", len(contexts))
	emit(models.StreamResponse{
		IntermediateSteps: stepMsg,
		IsIntermediate:    true,
		Citations:         citations,
	})

	answer, err := r.generator.GenerateAnswer(ctx, question, contexts)
	if err != nil {
		r.emitError(emit, err)
		return
	}

	// The final report goes out twice: once as it becomes available and once
	// as the completion signal, so clients can render before tearing down.
	emit(models.StreamResponse{
		IntermediateSteps: stepMsg,
		FinalReport:       answer,
		Citations:         citations,
	})
	emit(models.StreamResponse{
		IntermediateSteps: stepMsg,
		FinalReport:       answer,
		Citations:         citations,
		Complete:          true,
	})
}

func (r *ragServiceImpl) emitError(emit func(models.StreamResponse), err error) {
	log.Printf("SERVICE: Error in streaming pipeline: %v", err)
	emit(models.StreamResponse{
		Error:     fmt.Sprintf("An error occurred: %v", err),
		Citations: []string{},
		Complete:  true,
	})
}

func documentTexts(docs []models.RetrievedDocument) []string {
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.Content)
	}
	return texts
}
