package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"deal-radar/internal/extract"
	"deal-radar/internal/ingest"
	"deal-radar/internal/interfaces"
	"deal-radar/internal/llm"
	"deal-radar/internal/logger"
	"deal-radar/internal/memory"
	"deal-radar/internal/memory/esstore"
	"deal-radar/internal/memory/memobs"
	"deal-radar/internal/pipeline"
	"deal-radar/internal/retrieval"
	"deal-radar/internal/store"
	"deal-radar/internal/trace"
)

const memoryNamespace = "analysis"

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// initializeMemories builds the short- and long-term stores. When the
// Elasticsearch index is unreachable the long-term store degrades to the
// in-process keyword index so a run still completes.
func initializeMemories(ctx context.Context, cfg *store.Config) (interfaces.ShortTermMemory, interfaces.LongTermMemory) {
	short := memory.NewShortTerm(memoryNamespace,
		cfg.Memory.ShortTerm.MaxEntries,
		time.Duration(cfg.Memory.ShortTerm.TTLHours)*time.Hour)

	var long interfaces.LongTermMemory
	if cfg.Memory.ESAddr != "" {
		es, err := esstore.New(cfg.Memory.ESAddr, cfg.Memory.IndexPrefix, memoryNamespace)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = es.Ping(pingCtx)
			cancel()
		}
		if err != nil {
			logger.Warn(ctx, "Elasticsearch unavailable - using in-process keyword store", "error", err)
		} else {
			logger.Info(ctx, "Using Elasticsearch long-term memory", "addr", cfg.Memory.ESAddr)
			long = es
		}
	}
	if long == nil {
		long = memory.NewKeywordStore(memoryNamespace)
	}

	// Wrap with observability middleware
	return short, memobs.Wrap(long)
}

// buildPipeline wires the collector, retriever and extractor per config
func buildPipeline(ctx context.Context, cfg *store.Config, short interfaces.ShortTermMemory, long interfaces.LongTermMemory) *pipeline.Pipeline {
	gen := llm.New(cfg)
	if gen.Identity() == interfaces.IdentityDisabled {
		logger.Warn(ctx, "No model provider configured - extraction takes the disabled path")
	}
	extractor := extract.New(gen, interfaces.GenConstraints{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})

	collector := ingest.NewCollector(
		ingest.WithOffline(cfg.Mode == "OFFLINE"),
		ingest.WithGoogleNews(cfg.Ingest.GoogleNews),
		ingest.WithLongTerm(long),
		ingest.WithShortTerm(short),
	)

	var retriever *retrieval.Engine
	if cfg.Retrieval.Mode == "embedding" {
		retriever = retrieval.NewEngine(long)
	} else {
		retriever = retrieval.NewEngine(nil)
	}

	return pipeline.New(extractor,
		pipeline.WithCollector(collector),
		pipeline.WithRetriever(retriever),
		pipeline.WithShortTerm(short),
		pipeline.WithLongTerm(long),
	)
}

// saveReport writes the JSON and text renderings of one run to
// data/outputs.
func saveReport(ctx context.Context, state pipeline.State) error {
	dir := filepath.Join("data", "outputs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	jsonPath := filepath.Join(dir, fmt.Sprintf("report-%s.json", state.RunID))
	data, err := json.MarshalIndent(state.Report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return err
	}

	textPath := filepath.Join(dir, fmt.Sprintf("report-%s.txt", state.RunID))
	if err := os.WriteFile(textPath, []byte(state.Report.Text+"\n"), 0o644); err != nil {
		return err
	}

	logger.Info(ctx, "Report saved", "json", jsonPath, "text", textPath)
	return nil
}
