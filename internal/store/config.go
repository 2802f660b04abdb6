package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode        string   `yaml:"mode"`
	Entities    []string `yaml:"entities"`
	PollSeconds int      `yaml:"poll_seconds"`
	Retrieval   struct {
		Mode  string `yaml:"mode"`
		Width int    `yaml:"width"`
	} `yaml:"retrieval"`
	Ingest struct {
		NewsLimit  int      `yaml:"news_limit"`
		UseFilings bool     `yaml:"use_filings"`
		FilingIDs  []string `yaml:"filing_ids"`
		GoogleNews bool     `yaml:"google_news"`
		Kafka      struct {
			Brokers []string `yaml:"brokers"`
			Topic   string   `yaml:"topic"`
			GroupID string   `yaml:"group_id"`
		} `yaml:"kafka"`
	} `yaml:"ingest"`
	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"llm"`
	Memory struct {
		ESAddr      string `yaml:"es_addr"`
		IndexPrefix string `yaml:"index_prefix"`
		ShortTerm   struct {
			MaxEntries int `yaml:"max_entries"`
			TTLHours   int `yaml:"ttl_hours"`
		} `yaml:"short_term"`
	} `yaml:"memory"`
	EnableCheckpoint bool `yaml:"enable_checkpoint"`
	Server           struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// RunConfig carries the per-run knobs derived from Config plus anything the
// caller overrides for a single pipeline invocation.
type RunConfig struct {
	Entities         []string
	RetrievalWidth   int
	NewsLimit        int
	UseFilings       bool
	FilingIDs        []string
	EnableCheckpoint bool
}

func (c *Config) Validate() error {
	if c.Mode != "OFFLINE" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'OFFLINE' or 'LIVE'", c.Mode)
	}
	if len(c.Entities) == 0 {
		return errors.New("entities cannot be empty")
	}
	if c.Retrieval.Mode != "embedding" && c.Retrieval.Mode != "keyword" {
		return fmt.Errorf("retrieval.mode must be 'embedding' or 'keyword', got '%s'", c.Retrieval.Mode)
	}
	if c.Retrieval.Width < 0 {
		return fmt.Errorf("retrieval.width cannot be negative, got %d", c.Retrieval.Width)
	}
	if c.Retrieval.Mode == "embedding" && c.Memory.ESAddr == "" {
		return errors.New("retrieval.mode 'embedding' requires memory.es_addr")
	}
	switch c.LLM.Provider {
	case "", "none", "openai", "claude":
	default:
		return fmt.Errorf("llm.provider must be 'openai', 'claude', or 'none', got '%s'", c.LLM.Provider)
	}
	return nil
}

// RunConfig derives the per-run settings from the loaded config.
func (c *Config) RunConfig() RunConfig {
	return RunConfig{
		Entities:         c.Entities,
		RetrievalWidth:   c.Retrieval.Width,
		NewsLimit:        c.Ingest.NewsLimit,
		UseFilings:       c.Ingest.UseFilings,
		FilingIDs:        c.Ingest.FilingIDs,
		EnableCheckpoint: c.EnableCheckpoint,
	}
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Mode == "" {
		c.Mode = "OFFLINE"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 900
	}
	if c.Retrieval.Mode == "" {
		c.Retrieval.Mode = "keyword"
	}
	if c.Retrieval.Width == 0 {
		c.Retrieval.Width = 20
	}
	if c.Ingest.NewsLimit == 0 {
		c.Ingest.NewsLimit = 10
	}
	if c.Memory.IndexPrefix == "" {
		c.Memory.IndexPrefix = "deal-radar"
	}
	if c.Memory.ShortTerm.MaxEntries == 0 {
		c.Memory.ShortTerm.MaxEntries = 50
	}
	if c.Memory.ShortTerm.TTLHours == 0 {
		c.Memory.ShortTerm.TTLHours = 24
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
