package pipeline

import "sync"

// Checkpointer keeps per-stage snapshots of a run's state, in memory only.
// The state record itself is never persisted; snapshots exist so a caller
// can inspect what each stage saw after the run completes.
type Checkpointer struct {
	mu    sync.Mutex
	snaps map[Stage]State
	order []Stage
}

func NewCheckpointer() *Checkpointer {
	return &Checkpointer{snaps: make(map[Stage]State)}
}

// Save records the state as it stood when the given stage completed.
func (c *Checkpointer) Save(stage Stage, s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, seen := c.snaps[stage]; !seen {
		c.order = append(c.order, stage)
	}
	c.snaps[stage] = s
}

// Load returns the snapshot taken after the given stage, if any.
func (c *Checkpointer) Load(stage Stage) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.snaps[stage]
	return s, ok
}

// Stages lists the checkpointed stages in completion order.
func (c *Checkpointer) Stages() []Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Stage, len(c.order))
	copy(out, c.order)
	return out
}
