// Package main implements the mindmirrord CLI for indexing documents and
// querying the tradition/journal retrieval engine.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Peleke/MindMirror-sub002/internal/config"
	"github.com/Peleke/MindMirror-sub002/internal/embeddings"
	"github.com/Peleke/MindMirror-sub002/internal/indexer"
	"github.com/Peleke/MindMirror-sub002/internal/logging"
	"github.com/Peleke/MindMirror-sub002/internal/retrieval"
	"github.com/Peleke/MindMirror-sub002/internal/vectorstore"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mindmirrord",
	Short: "Vector indexing and hybrid retrieval for mindmirror",
	Long: `mindmirrord manages per-tradition knowledge collections and per-user
journal collections in Qdrant, and runs hybrid semantic searches over them.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (env vars override)")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(collectionsCmd)
}

// app bundles the wired components behind every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *vectorstore.QdrantStore
	manager  *vectorstore.CollectionManager
	indexer  *indexer.Indexer
	engine   *retrieval.Engine
	embedder embeddings.Embedder
}

// newApp wires the full stack from config. The store and collection
// manager are constructed explicitly and injected; there is no process
// global.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	store, err := vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
		Host:       cfg.Qdrant.Host,
		Port:       cfg.Qdrant.Port,
		APIKey:     cfg.Qdrant.APIKey.Value(),
		UseTLS:     cfg.Qdrant.UseTLS,
		VectorSize: cfg.Embedding.Dimensions,
	}, logger)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewOpenAI(embeddings.Config{
		APIKey:     cfg.Embedding.APIKey.Value(),
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	manager := vectorstore.NewCollectionManager(store, logger)
	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		manager:  manager,
		indexer:  indexer.New(store, manager, cfg.Embedding.Dimensions, logger),
		engine:   retrieval.New(store, manager, cfg.Embedding.Dimensions, cfg.Retrieval.DefaultLimit, logger),
		embedder: embedder,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resultView is the CLI's rendering of a search result.
type resultView struct {
	ID         string  `json:"id"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
	SourceType string  `json:"source_type"`
	Timestamp  string  `json:"timestamp,omitempty"`
}

func toViews(results []vectorstore.SearchResult) []resultView {
	views := make([]resultView, len(results))
	for i, r := range results {
		sourceType, _ := r.Payload[vectorstore.PayloadSourceType].(string)
		timestamp, _ := r.Payload[vectorstore.PayloadTimestamp].(string)
		views[i] = resultView{
			ID:         r.ID,
			Score:      r.Score,
			Text:       r.Text(),
			SourceType: sourceType,
			Timestamp:  timestamp,
		}
	}
	return views
}

// opTimeout bounds every CLI operation.
const opTimeout = 30 * time.Second
