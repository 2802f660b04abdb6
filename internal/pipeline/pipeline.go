package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"deal-radar/internal/extract"
	"deal-radar/internal/ingest"
	"deal-radar/internal/interfaces"
	"deal-radar/internal/logger"
	"deal-radar/internal/retrieval"
	"deal-radar/internal/signal"
	"deal-radar/internal/store"
)

// stageFn advances the state by one stage. An error here is fatal for the
// run; expected failure modes are handled inside the stage instead.
type stageFn func(context.Context, State) (State, error)

// Pipeline wires the fixed Collecting → Retrieving → Analyzing → Reporting
// sequence. One Pipeline serves many runs; per-run state lives in State.
type Pipeline struct {
	collector *ingest.Collector
	retriever *retrieval.Engine
	extractor *extract.Extractor
	scorer    *signal.Scorer
	short     interfaces.ShortTermMemory
	long      interfaces.LongTermMemory
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithCollector replaces the default ingestion collector.
func WithCollector(c *ingest.Collector) Option {
	return func(p *Pipeline) { p.collector = c }
}

// WithRetriever replaces the default retrieval engine.
func WithRetriever(r *retrieval.Engine) Option {
	return func(p *Pipeline) { p.retriever = r }
}

// WithShortTerm attaches the analysis stage's short-term memory.
func WithShortTerm(short interfaces.ShortTermMemory) Option {
	return func(p *Pipeline) { p.short = short }
}

// WithLongTerm attaches the long-term memory findings are appended to.
func WithLongTerm(long interfaces.LongTermMemory) Option {
	return func(p *Pipeline) { p.long = long }
}

// New builds a pipeline around the given extractor. With no options it runs
// fully in-process: offline-capable collector, keyword retrieval, no
// durable memory.
func New(extractor *extract.Extractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: extractor,
		scorer:    signal.NewScorer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.collector == nil {
		p.collector = ingest.NewCollector()
	}
	if p.retriever == nil {
		p.retriever = retrieval.NewEngine(nil)
	}
	return p
}

// Run executes one full pass. Every syntactically valid config reaches
// StageDone and yields a report; only unhandled stage errors abort.
func (p *Pipeline) Run(ctx context.Context, rc store.RunConfig) (State, error) {
	if rc.RetrievalWidth <= 0 {
		rc.RetrievalWidth = 20
	}

	state := State{
		RunID:  uuid.New().String(),
		Stage:  StageCollecting,
		Config: rc,
	}

	var checkpoints *Checkpointer
	if rc.EnableCheckpoint {
		checkpoints = NewCheckpointer()
	}

	stages := []struct {
		name Stage
		fn   stageFn
	}{
		{StageCollecting, p.collect},
		{StageRetrieving, p.retrieve},
		{StageAnalyzing, p.analyze},
		{StageReporting, p.report},
	}

	timer := logger.StartOperation(ctx, "pipeline_run",
		"run_id", state.RunID,
		"entities", len(rc.Entities))
	ctx = timer.GetContext()

	for _, stage := range stages {
		state.Stage = stage.name
		logger.Stage(ctx, state.RunID, string(stage.name))

		next, err := stage.fn(ctx, state)
		if err != nil {
			timer.EndWithError(err, "stage", string(stage.name))
			return state, fmt.Errorf("stage %s: %w", stage.name, err)
		}
		state = next

		if checkpoints != nil {
			checkpoints.Save(stage.name, state)
		}
	}

	state.Stage = StageDone
	logger.Stage(ctx, state.RunID, string(StageDone),
		"deals", len(state.Findings.Deals))
	timer.End("deals", len(state.Findings.Deals))

	return state, nil
}

// collect ingests raw items and owns Raw and Ingested.
func (p *Pipeline) collect(ctx context.Context, s State) (State, error) {
	docs, raw := p.collector.Collect(ctx, s.Config)
	s.Ingested = docs
	s.Raw = raw
	return s, nil
}

// retrieve selects the evidence set for the run and owns Retrieved.
func (p *Pipeline) retrieve(ctx context.Context, s State) (State, error) {
	s.Retrieved = p.retriever.Retrieve(ctx, s.Config.Entities, s.Config.RetrievalWidth, s.Ingested)
	return s, nil
}
