package query

import (
	"context"
	"fmt"

	"github.com/doeshing/kgq/internal/application/export"
	"github.com/doeshing/kgq/internal/application/history"
	"github.com/doeshing/kgq/internal/application/normalize"
	"github.com/doeshing/kgq/internal/application/pagination"
	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/ports"
)

// SessionDeps wires a Session. Client, History and Pages are required.
type SessionDeps struct {
	Client    *Client
	History   *history.Store
	Pages     *pagination.Controller
	Exporter  *export.Engine
	Sink      ports.ExportSink
	Catalog   ports.SampleCatalog
	Editor    ports.QueryEditor
	Endpoints *EndpointStore
	Endpoint  domain.Endpoint
	Format    domain.ResponseFormat
	Logger    ports.Logger

	// EndpointPinned keeps Endpoint even when a last-known one is stored.
	EndpointPinned bool
}

// Session owns the state of one interactive user: the editor text, the
// current and last successful results, the page position and the endpoint.
// It is not safe for concurrent use.
type Session struct {
	client    *Client
	history   *history.Store
	pages     *pagination.Controller
	exporter  *export.Engine
	sink      ports.ExportSink
	catalog   ports.SampleCatalog
	editor    ports.QueryEditor
	endpoints *EndpointStore
	logger    ports.Logger
	format    domain.ResponseFormat

	endpoint domain.Endpoint
	current  *domain.NormalizedResult
	lastGood *domain.NormalizedResult
}

// PageView is one rendered page of the last tabular result.
type PageView struct {
	State   pagination.State
	Headers []string
	Rows    []map[string]string
}

// ExportResult describes a saved artifact.
type ExportResult struct {
	Artifact export.Artifact
	Location string
}

// NewSession builds a session. Unless deps.EndpointPinned is set, the
// endpoint starts from the last-known one persisted in Endpoints, falling
// back to deps.Endpoint.
func NewSession(deps SessionDeps) (*Session, error) {
	if deps.Client == nil || deps.History == nil || deps.Pages == nil {
		return nil, fmt.Errorf("query.Session dependencies not satisfied")
	}
	s := &Session{
		client:    deps.Client,
		history:   deps.History,
		pages:     deps.Pages,
		exporter:  deps.Exporter,
		sink:      deps.Sink,
		catalog:   deps.Catalog,
		editor:    deps.Editor,
		endpoints: deps.Endpoints,
		logger:    deps.Logger,
		format:    deps.Format,
		endpoint:  deps.Endpoint,
	}
	if s.exporter == nil {
		s.exporter = export.NewEngine()
	}
	if s.editor == nil {
		s.editor = &BufferEditor{}
	}
	if s.format == "" {
		s.format = domain.FormatJSON
	}
	switch {
	case s.endpoints == nil:
	case deps.EndpointPinned:
		s.endpoint = s.endpoints.Resolve(deps.Endpoint)
	default:
		s.endpoint = s.endpoints.Load(deps.Endpoint)
	}
	return s, nil
}

// Editor exposes the editing surface.
func (s *Session) Editor() ports.QueryEditor { return s.editor }

// Run executes the editor's current text.
func (s *Session) Run(ctx context.Context) domain.NormalizedResult {
	return s.execute(ctx, s.editor.CurrentQueryText())
}

// RunText places text in the editor and executes it.
func (s *Session) RunText(ctx context.Context, text string) domain.NormalizedResult {
	s.editor.SetCurrentQueryText(text)
	return s.execute(ctx, text)
}

func (s *Session) execute(ctx context.Context, text string) domain.NormalizedResult {
	outcome := s.client.Execute(ctx, text, s.format, s.endpoint)
	res := normalize.Normalize(text, outcome)

	// queries rejected before dispatch were never executed
	if outcome.Reason() != domain.KindValidation {
		s.history.RecordResult(text, res)
	}

	s.current = &res
	if res.Succeeded() {
		s.lastGood = &res
		s.pages.Install(res)
	}
	return res
}

// TestConnection probes the current endpoint.
func (s *Session) TestConnection(ctx context.Context) domain.ProbeResult {
	return s.client.TestConnection(ctx, s.endpoint)
}

// Current returns the most recent result, including failures.
func (s *Session) Current() (domain.NormalizedResult, bool) {
	if s.current == nil {
		return domain.NormalizedResult{}, false
	}
	return *s.current, true
}

// LastSuccessful returns the most recent result that carried data.
func (s *Session) LastSuccessful() (domain.NormalizedResult, bool) {
	if s.lastGood == nil {
		return domain.NormalizedResult{}, false
	}
	return *s.lastGood, true
}

// Page moves to page n of the last tabular result. n <= 0 keeps the current page.
func (s *Session) Page(n int) PageView {
	rows := s.pages.GoTo(n)
	return s.pageView(rows)
}

// NextPage and PrevPage step through the last tabular result.
func (s *Session) NextPage() PageView { return s.pageView(s.pages.Next()) }
func (s *Session) PrevPage() PageView { return s.pageView(s.pages.Prev()) }

func (s *Session) pageView(rows []map[string]string) PageView {
	view := PageView{State: s.pages.State(), Rows: rows}
	if s.lastGood != nil && s.lastGood.Tabular != nil {
		view.Headers = s.lastGood.Tabular.Headers
	}
	return view
}

// Export serializes the last successful result. When page is set, a tabular
// export is restricted to the current page. The artifact is handed to the
// sink when one is configured.
func (s *Session) Export(kind export.Kind, page bool) (ExportResult, error) {
	return s.ExportTo(kind, page, s.sink)
}

// ExportTo is Export with an explicit sink; a nil sink only builds the artifact.
func (s *Session) ExportTo(kind export.Kind, page bool, sink ports.ExportSink) (ExportResult, error) {
	if s.lastGood == nil {
		return ExportResult{}, domain.FromSentinel(domain.KindEmptyExport, domain.ErrEmptyExport)
	}
	var window *export.Window
	if page && s.lastGood.Class == domain.DisplayTabular {
		start, end := s.pages.Window()
		window = &export.Window{Start: start, End: end}
	}
	art, err := s.exporter.Export(*s.lastGood, kind, window)
	if err != nil {
		return ExportResult{}, err
	}
	out := ExportResult{Artifact: art}
	if sink == nil {
		return out, nil
	}
	loc, err := sink.Save(art.Filename, art.MimeType, art.Content)
	if err != nil {
		return out, fmt.Errorf("save export: %w", err)
	}
	out.Location = loc
	return out, nil
}

// History lists past executions, most recent first.
func (s *Session) History() []domain.HistoryEntry { return s.history.List() }

// ClearHistory empties the history.
func (s *Session) ClearHistory() { s.history.Clear() }

// Recall copies the text of history entry i (0 = most recent) into the editor.
func (s *Session) Recall(i int) (string, error) {
	entry, ok := s.history.Get(i)
	if !ok {
		return "", domain.NewError(domain.KindValidation, fmt.Sprintf("no history entry %d", i+1))
	}
	s.editor.SetCurrentQueryText(entry.Query)
	return entry.Query, nil
}

// Samples returns the sample catalog.
func (s *Session) Samples() []domain.SampleQuery {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Samples()
}

// LoadSample copies sample i into the editor.
func (s *Session) LoadSample(i int) (domain.SampleQuery, error) {
	samples := s.Samples()
	if i < 0 || i >= len(samples) {
		return domain.SampleQuery{}, domain.NewError(domain.KindValidation, fmt.Sprintf("no sample %d", i+1))
	}
	s.editor.SetCurrentQueryText(samples[i].Query)
	return samples[i], nil
}

// Browse lists samples followed by history. Nothing flows back into either.
func (s *Session) Browse() []domain.BrowseItem {
	samples := s.Samples()
	entries := s.history.List()
	items := make([]domain.BrowseItem, 0, len(samples)+len(entries))
	for _, sample := range samples {
		items = append(items, domain.BrowseItem{Source: "sample", Label: sample.Name, Query: sample.Query})
	}
	for _, entry := range entries {
		summary := entry.Outcome
		items = append(items, domain.BrowseItem{
			Source:  "history",
			Label:   entry.Timestamp.Local().Format(domain.TimestampFormat),
			Query:   entry.Query,
			Summary: &summary,
		})
	}
	return items
}

// Endpoint returns the endpoint queries run against.
func (s *Session) Endpoint() domain.Endpoint { return s.endpoint }

// UseEndpoint switches endpoints and persists it as the last-known one.
func (s *Session) UseEndpoint(ep domain.Endpoint) error {
	s.endpoint = ep
	if s.endpoints == nil {
		return nil
	}
	return s.endpoints.Save(ep)
}
