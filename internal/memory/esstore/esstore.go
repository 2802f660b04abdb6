package esstore

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"deal-radar/internal/memory"
	"deal-radar/internal/types"
)

const (
	upsertAttempts = 3
	initialBackoff = 200 * time.Millisecond
)

// Store is an Elasticsearch-backed long-term memory. Each namespace maps to
// its own index so agents stay isolated.
type Store struct {
	es        *elasticsearch.Client
	index     string
	namespace string
}

// New connects to Elasticsearch and scopes the store to one namespace.
// The index name is prefix-namespace.
func New(addr, indexPrefix, namespace string) (*Store, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &Store{
		es:        es,
		index:     indexPrefix + "-" + strings.ToLower(namespace),
		namespace: namespace,
	}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}

// Upsert indexes records under a content-derived id, so re-ingesting the
// same evidence is idempotent. Writes take the namespace lock and each
// document gets a bounded retry before the record is skipped.
func (s *Store) Upsert(ctx context.Context, records []types.EvidenceRecord) (int, error) {
	unlock := memory.LockNamespace(s.namespace)
	defer unlock()

	added := 0
	var lastErr error
	for _, rec := range records {
		if err := s.indexWithRetry(ctx, rec); err != nil {
			lastErr = err
			continue
		}
		added++
	}
	if added == 0 && lastErr != nil {
		return 0, lastErr
	}
	return added, nil
}

func (s *Store) indexWithRetry(ctx context.Context, rec types.EvidenceRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	var lastErr error
	wait := initialBackoff
	for attempt := 1; attempt <= upsertAttempts; attempt++ {
		req := esapi.IndexRequest{
			Index:      s.index,
			DocumentID: recordID(rec),
			Body:       bytes.NewReader(payload),
			Refresh:    "false",
		}

		res, err := req.Do(ctx, s.es)
		if err == nil && !res.IsError() {
			res.Body.Close()
			return nil
		}
		if err != nil {
			lastErr = err
		} else {
			body, _ := io.ReadAll(res.Body)
			res.Body.Close()
			lastErr = fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))
		}

		if attempt < upsertAttempts {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
			wait *= 2
		}
	}
	return lastErr
}

// Search runs a multi_match over record text, relevance ranked.
func (s *Store) Search(ctx context.Context, query string, k int) ([]types.EvidenceRecord, error) {
	if k <= 0 {
		k = 20
	}

	body := map[string]any{
		"size": k,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"text^2", "metadata.publisher"},
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source types.EvidenceRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]types.EvidenceRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		out = append(out, hit.Source)
	}
	return out, nil
}

// recordID derives a stable document id from the record's (text, link)
// identity.
func recordID(rec types.EvidenceRecord) string {
	h := sha1.Sum([]byte(rec.Text + "|" + rec.Meta.Link))
	return hex.EncodeToString(h[:])
}
