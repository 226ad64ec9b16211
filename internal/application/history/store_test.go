package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/testutil"
)

type stubKV struct {
	data     map[string][]byte
	getErr   error
	setErr   error
	setCalls int
}

func newStubKV() *stubKV { return &stubKV{data: map[string][]byte{}} }

func (s *stubKV) Get(key string, def []byte) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return def, nil
}

func (s *stubKV) Set(key string, value []byte) error {
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

func (s *stubKV) Remove(key string) error {
	delete(s.data, key)
	return nil
}

func entry(q string) domain.HistoryEntry {
	return domain.HistoryEntry{Query: q, Outcome: domain.OutcomeSummary{Success: true, DisplayClass: domain.DisplayTabular}}
}

func TestRecordDedupesAgainstFront(t *testing.T) {
	kv := newStubKV()
	s := New(kv, testutil.NewTestLogger(t))

	assert.True(t, s.Record(entry("SELECT 1")))
	assert.False(t, s.Record(entry("SELECT 1")))
	assert.True(t, s.Record(entry("SELECT 2")))
	assert.True(t, s.Record(entry("SELECT 1")))

	got := s.List()
	require.Len(t, got, 3)
	assert.Equal(t, "SELECT 1", got[0].Query)
	assert.Equal(t, "SELECT 2", got[1].Query)
	assert.Equal(t, 3, kv.setCalls)
}

func TestRecordComparesExactText(t *testing.T) {
	s := New(newStubKV(), nil)
	s.Record(entry("SELECT 1"))
	s.Record(entry("SELECT 1 "))
	assert.Equal(t, 2, s.Len())
}

func TestRecordBoundsHistory(t *testing.T) {
	s := New(newStubKV(), nil)
	for i := 0; i < 75; i++ {
		s.Record(entry(fmt.Sprintf("SELECT %d", i)))
	}
	got := s.List()
	require.Len(t, got, domain.MaxHistoryEntries)
	assert.Equal(t, "SELECT 74", got[0].Query)
	assert.Equal(t, "SELECT 25", got[49].Query)
}

func TestRecordFillsIDAndTimestamp(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := New(newStubKV(), nil, WithClock(func() time.Time { return fixed }))

	s.Record(entry("ASK {}"))
	got, ok := s.Get(0)
	require.True(t, ok)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, fixed, got.Timestamp)

	_, ok = s.Get(1)
	assert.False(t, ok)
}

func TestPersistsAndReloads(t *testing.T) {
	kv := newStubKV()
	s := New(kv, nil)
	s.RecordResult("SELECT ?s WHERE { ?s ?p ?o }", domain.NormalizedResult{
		Class:     domain.DisplayTabular,
		ElapsedMs: 12,
		Tabular:   &domain.Tabular{Headers: []string{"s"}, Rows: make([]map[string]string, 10), RowCount: 10},
	})

	reloaded := New(kv, nil)
	got := reloaded.List()
	require.Len(t, got, 1)
	assert.Equal(t, domain.DisplayTabular, got[0].Outcome.DisplayClass)
	assert.Equal(t, 10, got[0].Outcome.ItemCount)
	assert.Equal(t, int64(12), got[0].Outcome.ElapsedMs)
	assert.True(t, got[0].Outcome.Success)
}

func TestLoadDegradesToEmpty(t *testing.T) {
	t.Run("corrupt payload", func(t *testing.T) {
		kv := newStubKV()
		kv.data[domain.HistoryStorageKey] = []byte("{not json")
		assert.Zero(t, New(kv, testutil.NewTestLogger(t)).Len())
	})

	t.Run("read failure", func(t *testing.T) {
		kv := newStubKV()
		kv.getErr = errors.New("disk gone")
		assert.Zero(t, New(kv, testutil.NewTestLogger(t)).Len())
	})

	t.Run("oversized payload is truncated", func(t *testing.T) {
		entries := make([]domain.HistoryEntry, 60)
		for i := range entries {
			entries[i] = entry(fmt.Sprintf("q%d", i))
		}
		data, err := json.Marshal(entries)
		require.NoError(t, err)
		kv := newStubKV()
		kv.data[domain.HistoryStorageKey] = data
		assert.Equal(t, domain.MaxHistoryEntries, New(kv, nil).Len())
	})
}

func TestWriteFailureKeepsMemoryState(t *testing.T) {
	kv := newStubKV()
	kv.setErr = errors.New("read-only")
	s := New(kv, testutil.NewTestLogger(t))

	assert.True(t, s.Record(entry("SELECT 1")))
	assert.Equal(t, 1, s.Len())
}

func TestClear(t *testing.T) {
	kv := newStubKV()
	s := New(kv, nil)
	s.Record(entry("SELECT 1"))
	require.Contains(t, kv.data, domain.HistoryStorageKey)

	s.Clear()
	assert.Zero(t, s.Len())
	assert.NotContains(t, kv.data, domain.HistoryStorageKey)
	assert.Zero(t, New(kv, nil).Len())
}

func TestFailedOutcomeIsRecorded(t *testing.T) {
	s := New(newStubKV(), nil)
	failure := domain.NewError(domain.KindTransport, "timeout")
	s.RecordResult("SELECT * WHERE { ?s ?p ?o }", domain.NormalizedResult{Class: domain.DisplayError, Failure: failure, ElapsedMs: 30000})

	got := s.List()
	require.Len(t, got, 1)
	assert.False(t, got[0].Outcome.Success)
	assert.Equal(t, domain.KindTransport, got[0].Outcome.ErrorKind)
}

func TestDescribeOutcomeKeepsForm(t *testing.T) {
	s := New(newStubKV(), nil)
	s.RecordResult("DESCRIBE <http://ex.org/a>", domain.NormalizedResult{
		Class: domain.DisplayGraph,
		Form:  domain.FormDescribe,
		Graph: &domain.Graph{Triples: []any{}},
	})

	got := s.List()
	require.Len(t, got, 1)
	assert.Equal(t, domain.DisplayGraph, got[0].Outcome.DisplayClass)
	assert.Equal(t, "describe", got[0].Outcome.Label())
}
