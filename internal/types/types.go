package types

// SourceKind tags where an evidence record came from.
const (
	SourceYahooNews     = "yahoo_news"
	SourceSEC           = "sec"
	SourcePriceSnapshot = "price_snapshot"
	SourceGoogleNews    = "google_news"
	SourceKafka         = "kafka"
	SourceMemory        = "memory"
	SourceAnalysis      = "analysis"
)

// EvidenceMeta carries the source metadata of an evidence record. Connectors
// fill what they know; consumers treat missing fields as absent.
type EvidenceMeta struct {
	Source     string `json:"source"`
	Entity     string `json:"entity,omitempty"`
	Publisher  string `json:"publisher,omitempty"`
	Link       string `json:"link,omitempty"`
	Published  int64  `json:"published,omitempty"`
	IsDeal     bool   `json:"is_deal"`
	FilingForm string `json:"form,omitempty"`
	FilingDate string `json:"date,omitempty"`
}

// EvidenceRecord is one unit of retrieved text plus provenance. Records are
// immutable once built and compared by (Text, Link) identity.
type EvidenceRecord struct {
	Text string       `json:"text"`
	Meta EvidenceMeta `json:"metadata"`
}

// RetrieverInfo is the provenance of one retrieval pass.
type RetrieverInfo struct {
	Mode    string   `json:"mode"` // "embedding" or "keyword"
	Queries []string `json:"queries"`
	Hits    int      `json:"hits"`
}

// RetrievedSet is an ordered, deduplicated selection of evidence, at most
// the configured retrieval width.
type RetrievedSet struct {
	Records []EvidenceRecord `json:"records"`
	Info    RetrieverInfo    `json:"info"`
}

// Deal types emitted by extraction.
const (
	DealAcquisition = "acquisition"
	DealMerger      = "merger"
	DealDivestiture = "divestiture"
	DealSpinOff     = "spin-off"
	DealSPAC        = "spac"
	DealTender      = "tender"
	DealStrategic   = "strategic_transaction"
	DealOther       = "other"
)

// Deal statuses emitted by extraction.
const (
	StatusRumor      = "rumor"
	StatusAgreement  = "agreement"
	StatusAnnounced  = "announced"
	StatusClosed     = "closed"
	StatusTerminated = "terminated"
	StatusOther      = "other"
)

// DealCandidate is a model-proposed transaction event. It only survives the
// run if the evidence validator accepts it.
type DealCandidate struct {
	Type       string   `json:"type"`
	Acquirer   string   `json:"acquirer"`
	Target     string   `json:"target"`
	Entities   []string `json:"entity_ids"`
	Value      string   `json:"value"`
	Status     string   `json:"status"`
	Evidence   string   `json:"evidence"`
	SourceLink string   `json:"source_link"`
}

// SignalComponents are the statistical features behind a score.
type SignalComponents struct {
	ZScore      float64 `json:"z_score"`
	Volatility  float64 `json:"volatility"`
	VolumeShock float64 `json:"volume_shock"`
}

// SignalScore is the composite deal-likelihood signal for one entity,
// TotalScore in [0, 1]. Explanation lines are kept in evaluation order
// for audit.
type SignalScore struct {
	EntityID    string           `json:"entity_id"`
	TotalScore  float64          `json:"total_score"`
	Components  SignalComponents `json:"components"`
	Explanation []string         `json:"explanation"`
}

// Findings is the validated, scored output of one pipeline run.
type Findings struct {
	ModelIdentity string                 `json:"model"`
	Deals         []DealCandidate        `json:"deals"`
	TrendSummary  string                 `json:"trend_summary"`
	SignalScores  map[string]SignalScore `json:"signal_scores"`
}

// MarketHistory is a close/volume series for one entity.
type MarketHistory struct {
	Close  []float64 `json:"close"`
	Volume []float64 `json:"volume"`
}

// RawSummary describes what the collect stage acquired.
type RawSummary struct {
	Entities      []string                 `json:"entities"`
	NewsCount     int                      `json:"news_count"`
	FilingCount   int                      `json:"filing_count"`
	MarketHistory map[string]MarketHistory `json:"market_history"`
}

// Report pairs the findings with the rendered brief.
type Report struct {
	Findings Findings `json:"findings"`
	Summary  string   `json:"summary"`
	Text     string   `json:"text"`
}

// Note is one short-term memory entry, newest first on read.
type Note struct {
	Timestamp int64  `json:"ts"`
	Text      string `json:"note"`
}
