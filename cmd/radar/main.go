package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deal-radar/internal/logger"
	"deal-radar/internal/trace"
)

func main() {
	once := flag.Bool("once", false, "run a single analysis pass and exit")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() { _ = trace.Shutdown(context.Background()) }()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	short, long := initializeMemories(ctx, cfg)
	p := buildPipeline(ctx, cfg, short, long)
	rc := cfg.RunConfig()

	runPass := func() {
		state, err := p.Run(ctx, rc)
		if err != nil {
			logger.ErrorWithErr(ctx, "Run failed", err)
			return
		}
		fmt.Println(state.Report.Text)
		if err := saveReport(ctx, state); err != nil {
			logger.Warn(ctx, "Failed to save report", "error", err)
		}
	}

	logger.Info(ctx, "Deal radar started",
		"mode", cfg.Mode,
		"entities", len(cfg.Entities),
		"retrieval_mode", cfg.Retrieval.Mode)

	runPass()
	if *once {
		return
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			runPass()
		case <-sigc:
			logger.Info(ctx, "Shutting down...")
			return
		case <-ctx.Done():
			return
		}
	}
}
