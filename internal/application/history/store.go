// Package history keeps the bounded, most-recent-first query log.
package history

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/ports"
)

// Store owns the history sequence and flushes it to a key-value backend
// after every mutation. Storage failures are logged and never returned.
// It is not safe for concurrent mutation.
type Store struct {
	kv      ports.KeyValueStore
	logger  ports.Logger
	key     string
	limit   int
	now     func() time.Time
	entries []domain.HistoryEntry
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New loads the persisted history once. A failed read or corrupt payload
// yields an empty history.
func New(kv ports.KeyValueStore, logger ports.Logger, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: logger,
		key:    domain.HistoryStorageKey,
		limit:  domain.MaxHistoryEntries,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.entries = s.load()
	return s
}

func (s *Store) load() []domain.HistoryEntry {
	if s.kv == nil {
		return nil
	}
	data, err := s.kv.Get(s.key, nil)
	if err != nil {
		s.warn("history read failed", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var entries []domain.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.warn("history payload corrupt, starting empty", err)
		return nil
	}
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	return entries
}

// Record prepends entry unless its query text equals the most recent entry.
// It reports whether the entry was added. Missing IDs and timestamps are filled in.
func (s *Store) Record(entry domain.HistoryEntry) bool {
	if len(s.entries) > 0 && s.entries[0].Query == entry.Query {
		return false
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}

	next := make([]domain.HistoryEntry, 0, len(s.entries)+1)
	next = append(next, entry)
	next = append(next, s.entries...)
	if len(next) > s.limit {
		next = next[:s.limit]
	}
	s.entries = next
	s.flush()
	return true
}

// RecordResult records a completed execution of query.
func (s *Store) RecordResult(query string, res domain.NormalizedResult) bool {
	return s.Record(domain.HistoryEntry{
		Query:   query,
		Outcome: domain.SummarizeResult(res),
	})
}

// List returns a copy of the entries, most recent first.
func (s *Store) List() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Get returns the entry at index i of List.
func (s *Store) Get(i int) (domain.HistoryEntry, bool) {
	if i < 0 || i >= len(s.entries) {
		return domain.HistoryEntry{}, false
	}
	return s.entries[i], true
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Clear empties the history and removes the persisted copy.
func (s *Store) Clear() {
	s.entries = nil
	if s.kv == nil {
		return
	}
	if err := s.kv.Remove(s.key); err != nil {
		s.warn("history remove failed", err)
	}
}

func (s *Store) flush() {
	if s.kv == nil {
		return
	}
	data, err := json.Marshal(s.entries)
	if err != nil {
		s.warn("history encode failed", err)
		return
	}
	if err := s.kv.Set(s.key, data); err != nil {
		s.warn("history write failed", err)
	}
}

func (s *Store) warn(msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg, map[string]interface{}{
		"key":   s.key,
		"kind":  string(domain.KindStorage),
		"error": err.Error(),
	})
}
