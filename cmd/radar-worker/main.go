package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"deal-radar/internal/ingest"
	"deal-radar/internal/interfaces"
	"deal-radar/internal/logger"
	"deal-radar/internal/memory"
	"deal-radar/internal/memory/esstore"
	"deal-radar/internal/memory/memobs"
	"deal-radar/internal/store"
	"deal-radar/internal/trace"
	"deal-radar/internal/types"
)

// rawEvidence is the payload shape external feeds publish to the evidence
// topic.
type rawEvidence struct {
	Entity    string `json:"entity"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Publisher string `json:"publisher"`
	Published int64  `json:"published"`
}

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
	kcfg := cfg.Ingest.Kafka
	if len(kcfg.Brokers) == 0 || kcfg.Topic == "" {
		logger.Error(ctx, "Worker requires ingest.kafka brokers and topic")
		os.Exit(1)
	}

	long := initializeLongTerm(ctx, cfg)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        kcfg.Brokers,
		Topic:          kcfg.Topic,
		GroupID:        kcfg.GroupID,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // Disable auto-commit; manual commit only
	})
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     kcfg.Brokers,
		Topic:       kcfg.Topic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	logger.Info(ctx, "Worker started",
		"topic", kcfg.Topic,
		"group", kcfg.GroupID,
		"dlq_topic", kcfg.Topic+"_dlq")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info(context.Background(), "Context canceled, stopping")
				return
			}
			logger.ErrorWithErr(ctx, "Fetch message failed", err)
			continue
		}

		if err := processMessage(ctx, long, msg); err != nil {
			logger.Warn(ctx, "Message rejected, sending to DLQ",
				"error", err,
				"partition", msg.Partition,
				"offset", msg.Offset)

			if !sendToDLQ(ctx, dlqWriter, msg, err) {
				// Without a DLQ copy we keep the offset uncommitted so the
				// message is reprocessed on restart.
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.ErrorWithErr(ctx, "Commit failed", err)
		}
	}
}

func initializeLongTerm(ctx context.Context, cfg *store.Config) interfaces.LongTermMemory {
	var long interfaces.LongTermMemory
	if cfg.Memory.ESAddr != "" {
		es, err := esstore.New(cfg.Memory.ESAddr, cfg.Memory.IndexPrefix, "analysis")
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = es.Ping(pingCtx)
			cancel()
		}
		if err != nil {
			logger.Warn(ctx, "Elasticsearch unavailable - using in-process keyword store", "error", err)
		} else {
			long = es
		}
	}
	if long == nil {
		long = memory.NewKeywordStore("analysis")
	}
	return memobs.Wrap(long)
}

// processMessage validates one feed item and appends it to long-term
// memory as a kafka-sourced evidence record.
func processMessage(ctx context.Context, long interfaces.LongTermMemory, msg kafka.Message) error {
	var payload rawEvidence
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if strings.TrimSpace(payload.Title) == "" {
		return errors.New("empty title")
	}

	docs := ingest.BuildDocuments([]ingest.NewsItem{{
		Entity:    payload.Entity,
		Title:     payload.Title,
		Link:      payload.Link,
		Publisher: payload.Publisher,
		Published: payload.Published,
		Source:    types.SourceKafka,
	}}, nil, nil, nil)
	if len(docs) == 0 {
		return errors.New("no document built from payload")
	}

	if _, err := long.Upsert(ctx, docs); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// sendToDLQ forwards a poison message with error context, retrying with
// exponential backoff. Returns whether the DLQ write succeeded.
func sendToDLQ(ctx context.Context, w *kafka.Writer, msg kafka.Message, cause error) bool {
	dlqMsg := kafka.Message{
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := 0; attempt < 5; attempt++ {
		if err := w.WriteMessages(ctx, dlqMsg); err == nil {
			logger.Info(ctx, "Message sent to DLQ",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"attempt", attempt+1)
			return true
		} else {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			logger.Warn(ctx, "DLQ write failed, retrying",
				"error", err,
				"attempt", attempt+1,
				"backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return false
			}
		}
	}

	logger.Error(ctx, "DLQ write exhausted retries",
		"partition", msg.Partition,
		"offset", msg.Offset)
	return false
}
