package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration loaded from config.yaml.
type Config struct {
	FineWebAPIKey  string `yaml:"fineweb_api_key"`
	FineWebBaseURL string `yaml:"fineweb_base_url"`

	// RetrieverSource selects where documents come from: "fineweb" (default)
	// hits the remote search API, "local" queries the Chroma corpus store.
	RetrieverSource string `yaml:"retriever_source"`
	RetrieverTopK   int    `yaml:"retriever_top_k"`

	GeneratorModel string `yaml:"generator_model"`

	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	RerankTopK   int `yaml:"rerank_top_k"`

	OllamaBaseURL  string `yaml:"ollama_base_url"`
	EmbeddingModel string `yaml:"embedding_model"`

	ServerPort int `yaml:"server_port"`

	CorpusDir      string `yaml:"corpus_dir"`
	CollectionName string `yaml:"collection_name"`
	WatchCorpus    bool   `yaml:"watch_corpus"`
}

const (
	SourceFineWeb = "fineweb"
	SourceLocal   = "local"

	defaultFineWebBaseURL = "https://clueweb22.us/fineweb/search"
	defaultOllamaBaseURL  = "http://localhost:11434"
	defaultEmbeddingModel = "nomic-embed-text:v1.5"
)

var (
	cacheMu sync.Mutex
	cache   = make(map[string]*Config)
)

// Load reads, validates, and caches the configuration at path. Repeated calls
// with the same path return the cached value, so the file is parsed once per
// process lifetime.
func Load(path string) (*Config, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cfg, ok := cache[path]; ok {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()

	// The API key in the environment wins over the one in the file.
	if key := os.Getenv("FINEWEB_API_KEY"); key != "" {
		cfg.FineWebAPIKey = key
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cache[path] = cfg
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.FineWebBaseURL == "" {
		c.FineWebBaseURL = defaultFineWebBaseURL
	}
	if c.RetrieverSource == "" {
		c.RetrieverSource = SourceFineWeb
	}
	if c.RetrieverTopK == 0 {
		c.RetrieverTopK = 5
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 256
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = 50
	}
	if c.RerankTopK == 0 {
		c.RerankTopK = 3
	}
	if c.OllamaBaseURL == "" {
		c.OllamaBaseURL = defaultOllamaBaseURL
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = defaultEmbeddingModel
	}
	if c.ServerPort == 0 {
		c.ServerPort = 5010
	}
	if c.CollectionName == "" {
		c.CollectionName = "rag-corpus"
	}
}

func (c *Config) validate() error {
	if c.GeneratorModel == "" {
		return fmt.Errorf("config is missing 'generator_model'")
	}
	switch c.RetrieverSource {
	case SourceFineWeb:
		if c.FineWebAPIKey == "" {
			return fmt.Errorf("FINEWEB_API_KEY not found in config or environment variables")
		}
	case SourceLocal:
		if c.CorpusDir == "" {
			return fmt.Errorf("config is missing 'corpus_dir' for local retrieval")
		}
	default:
		return fmt.Errorf("unknown retriever_source: %q", c.RetrieverSource)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}
