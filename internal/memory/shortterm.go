package memory

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"deal-radar/internal/types"
)

const maxNoteBytes = 4096

// ShortTerm is a process-local, bounded, expiring note log. Notes are kept
// newest first, trimmed to capacity on write, and dropped once older than
// the TTL.
type ShortTerm struct {
	mu         sync.Mutex
	namespace  string
	notes      []types.Note // newest first
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

// NewShortTerm creates a short-term memory for one namespace.
func NewShortTerm(namespace string, maxEntries int, ttl time.Duration) *ShortTerm {
	if maxEntries <= 0 {
		maxEntries = 50
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ShortTerm{
		namespace:  namespace,
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Add records a note. Oversized notes are truncated, the log is trimmed to
// the most recent maxEntries. Never fails.
func (m *ShortTerm) Add(_ context.Context, note string) {
	if len(note) > maxNoteBytes {
		cut := maxNoteBytes
		for cut > 0 && !utf8.RuneStart(note[cut]) {
			cut--
		}
		note = note[:cut]
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.notes = append([]types.Note{{Timestamp: now.Unix(), Text: note}}, m.notes...)
	if len(m.notes) > m.maxEntries {
		m.notes = m.notes[:m.maxEntries]
	}
	m.expire(now)
}

// Get returns the live notes, newest first.
func (m *ShortTerm) Get(_ context.Context) []types.Note {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expire(m.now())
	out := make([]types.Note, len(m.notes))
	copy(out, m.notes)
	return out
}

// Clear drops all notes.
func (m *ShortTerm) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = nil
}

// expire removes entries older than the TTL. Notes are ordered newest
// first, so everything past the first expired entry goes too.
func (m *ShortTerm) expire(now time.Time) {
	cutoff := now.Add(-m.ttl).Unix()
	for i, n := range m.notes {
		if n.Timestamp < cutoff {
			m.notes = m.notes[:i]
			return
		}
	}
}
