package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"google.golang.org/genai"

	"github.com/mmu-ragent/ragserver/config"
	"github.com/mmu-ragent/ragserver/controller"
	"github.com/mmu-ragent/ragserver/services"
)

const resultLogPath = "result.jsonl"

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	embedder := services.NewOllamaEmbedder(httpClient, cfg.OllamaBaseURL, cfg.EmbeddingModel)

	tokenizer, err := services.NewTokenizer()
	if err != nil {
		log.Fatalf("FATAL: Failed to load tokenizer: %v", err)
	}
	reranker := services.NewReranker(tokenizer, embedder)

	geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini client: %v. Make sure GEMINI_API_KEY is set.", err)
	}
	log.Println("Successfully connected to Google Gemini.")
	generator := services.NewGeminiGenerator(geminiClient, cfg.GeneratorModel)

	retriever, cleanup, err := buildRetriever(cfg, httpClient, embedder)
	if err != nil {
		log.Fatalf("FATAL: Failed to set up retriever: %v", err)
	}

	resultLog := services.NewResultLog(resultLogPath)
	if err := resultLog.Reset(); err != nil {
		log.Printf("WARN: Could not reset result log: %v", err)
	}

	ragService := services.NewRAGService(retriever, reranker, generator, cfg)
	ragController := controller.NewRAGController(ragService, resultLog)

	router := gin.Default()

	// Permissive CORS so evaluation harnesses can call from anywhere.
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", ragController.Health)
	router.POST("/run", ragController.Run)
	router.POST("/evaluate", ragController.Evaluate)

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	log.Printf("RAG server starting on http://localhost%s", addr)
	log.Printf("  GET  http://localhost%s/health", addr)
	log.Printf("  POST http://localhost%s/run", addr)
	log.Printf("  POST http://localhost%s/evaluate", addr)

	// Run only returns on failure. log.Fatalf would skip deferred calls, so
	// release the retriever's resources before exiting.
	err = router.Run(addr)
	cleanup()
	log.Fatalf("FATAL: Failed to start server: %v", err)
}

// buildRetriever wires the retrieval stage for the configured source. For the
// local source it also brings up the Chroma collection and the corpus
// indexer; the returned cleanup releases the Chroma client.
func buildRetriever(cfg *config.Config, httpClient *http.Client, embedder services.Embedder) (services.Retriever, func(), error) {
	switch cfg.RetrieverSource {
	case config.SourceFineWeb:
		return services.NewFineWebRetriever(httpClient, cfg.FineWebBaseURL, cfg.FineWebAPIKey), func() {}, nil

	case config.SourceLocal:
		chromaClient, err := chromago.NewHTTPClient()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create chroma client: %w", err)
		}
		cleanup := func() {
			if err := chromaClient.Close(); err != nil {
				log.Printf("WARN: Failed to close chroma client: %v", err)
			}
		}

		collection, err := getOrCreateCollection(chromaClient, cfg.CollectionName)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to get or create collection: %w", err)
		}

		indexer := services.NewCorpusIndexingService(collection, embedder, cfg.ChunkSize, cfg.ChunkOverlap)
		go indexer.ScanAndIndexDirectory(context.Background(), cfg.CorpusDir)
		if cfg.WatchCorpus {
			go indexer.WatchDirectory(context.Background(), cfg.CorpusDir)
		}

		return services.NewLocalRetriever(collection, embedder), cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown retriever_source: %q", cfg.RetrieverSource)
	}
}

func getOrCreateCollection(client chromago.Client, collectionName string) (chromago.Collection, error) {
	ctx := context.Background()

	log.Printf("Getting or creating collection '%s'...", collectionName)
	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "RAG corpus collection"),
				chromago.NewStringAttribute("created_by", "ragserver"),
			),
		),
	)
	if err != nil {
		return nil, err
	}

	log.Printf("Successfully got/created collection '%s'", collectionName)
	return collection, nil
}
