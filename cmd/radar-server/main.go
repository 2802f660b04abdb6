package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
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

const runTimeout = 120 * time.Second

func main() {
	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "tracer init failed: %v\n", err)
	}
	defer func() { _ = trace.Shutdown(context.Background()) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		os.Exit(1)
	}

	srv := newServer(ctx, cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Post("/runs", srv.handleRun)
	r.Get("/runs/latest", srv.handleLatest)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      runTimeout + 10*time.Second,
	}

	go func() {
		logger.Info(ctx, "API server starting", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "Server stopped", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(context.Background(), "Server shutdown", err)
	}
}

type server struct {
	cfg *store.Config
	p   *pipeline.Pipeline

	mu     sync.Mutex
	latest *pipeline.State
}

func newServer(ctx context.Context, cfg *store.Config) *server {
	short := memory.NewShortTerm("analysis",
		cfg.Memory.ShortTerm.MaxEntries,
		time.Duration(cfg.Memory.ShortTerm.TTLHours)*time.Hour)

	var long interfaces.LongTermMemory
	if cfg.Memory.ESAddr != "" {
		if es, err := esstore.New(cfg.Memory.ESAddr, cfg.Memory.IndexPrefix, "analysis"); err == nil {
			long = es
		} else {
			logger.Warn(ctx, "Elasticsearch unavailable - using in-process keyword store", "error", err)
		}
	}
	if long == nil {
		long = memory.NewKeywordStore("analysis")
	}
	long = memobs.Wrap(long)

	extractor := extract.New(llm.New(cfg), interfaces.GenConstraints{
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

	return &server{
		cfg: cfg,
		p: pipeline.New(extractor,
			pipeline.WithCollector(collector),
			pipeline.WithRetriever(retriever),
			pipeline.WithShortTerm(short),
			pipeline.WithLongTerm(long),
		),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRun triggers one synchronous pipeline pass. The caller may
// override the tracked entities for this run only.
func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), runTimeout)
	defer cancel()

	rc := s.cfg.RunConfig()
	if r.Body != nil {
		var override struct {
			Entities []string `json:"entities"`
			Width    int      `json:"width"`
		}
		if err := json.NewDecoder(r.Body).Decode(&override); err == nil {
			if len(override.Entities) > 0 {
				rc.Entities = override.Entities
			}
			if override.Width > 0 {
				rc.RetrievalWidth = override.Width
			}
		}
	}

	state, err := s.p.Run(ctx, rc)
	if err != nil {
		logger.ErrorWithErr(ctx, "Run failed", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	s.latest = &state
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, state)
}

func (s *server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()

	if latest == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no completed runs yet"})
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
