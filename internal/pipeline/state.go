package pipeline

import (
	"deal-radar/internal/store"
	"deal-radar/internal/types"
)

// Stage identifies where in the run a state record currently is.
type Stage string

const (
	StageCollecting Stage = "Collecting"
	StageRetrieving Stage = "Retrieving"
	StageAnalyzing  Stage = "Analyzing"
	StageReporting  Stage = "Reporting"
	StageDone       Stage = "Done"
)

// State is the single record threaded through every stage. Stages receive
// it by value and return a new record; a stage only writes the fields it
// owns and never clears what a predecessor populated.
type State struct {
	RunID     string                 `json:"run_id"`
	Stage     Stage                  `json:"stage"`
	Config    store.RunConfig        `json:"-"`
	Raw       types.RawSummary       `json:"raw_items_summary"`
	Ingested  []types.EvidenceRecord `json:"ingested_docs"`
	Retrieved types.RetrievedSet     `json:"retrieved_docs"`
	Findings  types.Findings         `json:"findings"`
	Report    types.Report           `json:"report"`
}
