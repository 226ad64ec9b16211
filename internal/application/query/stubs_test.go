package query

import (
	"context"
	"errors"
	"time"

	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/ports"
)

type stubTransport struct {
	resp     ports.TransportResponse
	err      error
	calls    int
	last     domain.QueryRequest
	probe    ports.TransportResponse
	probeErr error
	repos    ports.TransportResponse
}

func (s *stubTransport) Query(_ context.Context, req domain.QueryRequest) (ports.TransportResponse, error) {
	s.calls++
	s.last = req
	return s.resp, s.err
}

func (s *stubTransport) TestConnection(context.Context, domain.Endpoint) (ports.TransportResponse, error) {
	s.calls++
	return s.probe, s.probeErr
}

func (s *stubTransport) ListRepositories(context.Context, string) (ports.TransportResponse, error) {
	s.calls++
	return s.repos, nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string    { return "Post \"http://localhost:8000/api/query\": context deadline exceeded" }
func (timeoutErr) Category() string { return "timeout" }

type stubGuard struct {
	verdict domain.GuardVerdict
	err     error
}

func (s stubGuard) Evaluate(string) (domain.GuardVerdict, error) { return s.verdict, s.err }

type stubPrompter struct {
	answer  bool
	enabled bool
	asked   int
}

func (s *stubPrompter) Confirm(domain.GuardVerdict, string) (bool, error) {
	s.asked++
	return s.answer, nil
}

func (s *stubPrompter) Enabled() bool { return s.enabled }

type memKV struct {
	data map[string][]byte
}

func newMemKV() *memKV { return &memKV{data: map[string][]byte{}} }

func (m *memKV) Get(key string, def []byte) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return def, nil
}

func (m *memKV) Set(key string, value []byte) error {
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Remove(key string) error {
	delete(m.data, key)
	return nil
}

type stubSink struct {
	saved map[string][]byte
	mimes map[string]string
}

func newStubSink() *stubSink {
	return &stubSink{saved: map[string][]byte{}, mimes: map[string]string{}}
}

func (s *stubSink) Save(filename, mimeType string, content []byte) (string, error) {
	s.saved[filename] = content
	s.mimes[filename] = mimeType
	return "/exports/" + filename, nil
}

type stubCatalog []domain.SampleQuery

func (c stubCatalog) Samples() []domain.SampleQuery { return c }

type memCredentials struct {
	passwords map[string]string
}

func (m *memCredentials) SavePassword(key, pw string) error {
	m.passwords[key] = pw
	return nil
}

func (m *memCredentials) LoadPassword(key string) (string, error) {
	pw, ok := m.passwords[key]
	if !ok {
		return "", errors.New("not found")
	}
	return pw, nil
}

func (m *memCredentials) ClearPassword(key string) error {
	delete(m.passwords, key)
	return nil
}

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}

func selectBindings(n int) map[string]any {
	bindings := make([]any, n)
	for i := range bindings {
		bindings[i] = map[string]any{
			"s": map[string]any{"type": "uri", "value": "http://ex.org/s"},
			"p": map[string]any{"type": "uri", "value": "http://ex.org/p"},
			"o": map[string]any{"type": "literal", "value": "v"},
		}
	}
	return map[string]any{
		"head":    map[string]any{"vars": []any{"s", "p", "o"}},
		"results": map[string]any{"bindings": bindings},
	}
}
