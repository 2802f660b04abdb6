package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
mode: OFFLINE
entities: ["AAPL", "MSFT"]
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "keyword", c.Retrieval.Mode)
	assert.Equal(t, 20, c.Retrieval.Width)
	assert.Equal(t, 10, c.Ingest.NewsLimit)
	assert.Equal(t, 900, c.PollSeconds)
	assert.Equal(t, "deal-radar", c.Memory.IndexPrefix)
	assert.Equal(t, 50, c.Memory.ShortTerm.MaxEntries)
	assert.Equal(t, 24, c.Memory.ShortTerm.TTLHours)
}

func TestLoadConfigRejectsEmptyEntities(t *testing.T) {
	path := writeConfig(t, `
mode: OFFLINE
entities: []
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entities")
}

func TestLoadConfigEmbeddingRequiresES(t *testing.T) {
	path := writeConfig(t, `
mode: LIVE
entities: ["AAPL"]
retrieval:
  mode: embedding
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "es_addr")
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, `
mode: OFFLINE
entities: ["AAPL"]
llm:
  provider: bard
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestRunConfigDerivation(t *testing.T) {
	path := writeConfig(t, `
mode: OFFLINE
entities: ["AAPL", "MSFT"]
enable_checkpoint: true
retrieval:
  width: 7
ingest:
  news_limit: 3
  use_filings: true
  filing_ids: ["0000320193-24-000123"]
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)

	rc := c.RunConfig()
	assert.Equal(t, []string{"AAPL", "MSFT"}, rc.Entities)
	assert.Equal(t, 7, rc.RetrievalWidth)
	assert.Equal(t, 3, rc.NewsLimit)
	assert.True(t, rc.UseFilings)
	assert.True(t, rc.EnableCheckpoint)
	assert.Equal(t, []string{"0000320193-24-000123"}, rc.FilingIDs)
}
