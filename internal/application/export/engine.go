// Package export serializes normalized results into CSV and JSON artifacts.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/doeshing/kgq/internal/domain"
)

// Kind selects the artifact format.
type Kind string

const (
	KindCSV  Kind = "csv"
	KindJSON Kind = "json"
)

// ParseKind accepts "csv" and "json" in any case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindCSV:
		return KindCSV, nil
	case KindJSON:
		return KindJSON, nil
	}
	return "", domain.NewError(domain.KindValidation, fmt.Sprintf("unsupported export format %q (want csv or json)", s))
}

// MIME types handed to the sink.
const (
	MimeCSV  = "text/csv;charset=utf-8"
	MimeJSON = "application/json"
)

// Window restricts a tabular export to rows [Start, End).
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Artifact is a finished export ready for an ExportSink.
type Artifact struct {
	Filename string
	MimeType string
	Content  []byte
}

// Engine builds export artifacts.
type Engine struct {
	now func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the export timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an export engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export renders res in the requested format and names the artifact.
// window may be nil to export every row.
func (e *Engine) Export(res domain.NormalizedResult, kind Kind, window *Window) (Artifact, error) {
	at := e.now().UTC()
	switch kind {
	case KindCSV:
		content, err := ToFlatTable(res, window)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Filename: Filename(res.Label(), at, "csv"), MimeType: MimeCSV, Content: content}, nil
	case KindJSON:
		content, err := toStructured(res, res.Query, window, at)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Filename: Filename(res.Label(), at, "json"), MimeType: MimeJSON, Content: content}, nil
	}
	return Artifact{}, domain.NewError(domain.KindValidation, fmt.Sprintf("unsupported export format %q", kind))
}

// ToStructured wraps the whole result with its metadata in one JSON document.
func (e *Engine) ToStructured(res domain.NormalizedResult, queryText string) ([]byte, error) {
	return toStructured(res, queryText, nil, e.now().UTC())
}

// Filename follows <label>-results-<timestamp>.<ext>, with the colons of the
// ISO-8601 timestamp replaced by dashes.
func Filename(label string, at time.Time, ext string) string {
	stamp := strings.ReplaceAll(at.UTC().Format(domain.ArtifactTimestampFormat), ":", "-")
	return fmt.Sprintf("%s-results-%s.%s", label, stamp, ext)
}

// ToFlatTable renders res as CSV. It fails with an empty_export error when
// the derived row set is empty.
func ToFlatTable(res domain.NormalizedResult, window *Window) ([]byte, error) {
	headers, rows := flatten(res, window)
	if len(rows) == 0 {
		return nil, domain.WrapError(domain.KindEmptyExport, "export failed", domain.ErrEmptyExport)
	}

	var buf bytes.Buffer
	writeRecord(&buf, headers)
	for _, row := range rows {
		writeRecord(&buf, row)
	}
	return buf.Bytes(), nil
}

func flatten(res domain.NormalizedResult, window *Window) ([]string, [][]string) {
	switch res.Class {
	case domain.DisplayTabular:
		if res.Tabular == nil {
			return nil, nil
		}
		src := windowRows(res.Tabular.Rows, window)
		rows := make([][]string, 0, len(src))
		for _, r := range src {
			record := make([]string, len(res.Tabular.Headers))
			for i, h := range res.Tabular.Headers {
				record[i] = r[h]
			}
			rows = append(rows, record)
		}
		return res.Tabular.Headers, rows
	case domain.DisplayBoolean:
		if res.Boolean == nil {
			return nil, nil
		}
		return []string{"result"}, [][]string{{strconv.FormatBool(res.Boolean.Value)}}
	case domain.DisplayGraph:
		if res.Graph == nil {
			return nil, nil
		}
		if !res.Graph.Ordered() {
			return []string{"payload"}, [][]string{{serialize(res.Graph.Payload)}}
		}
		rows := make([][]string, 0, len(res.Graph.Triples))
		for i, triple := range res.Graph.Triples {
			rows = append(rows, []string{strconv.Itoa(i + 1), serialize(triple)})
		}
		return []string{"index", "triple"}, rows
	case domain.DisplayOpaque:
		if res.Opaque == nil || res.Opaque.Payload == nil {
			return nil, nil
		}
		return []string{"payload"}, [][]string{{serialize(res.Opaque.Payload)}}
	}
	return nil, nil
}

func windowRows(rows []map[string]string, window *Window) []map[string]string {
	if window == nil {
		return rows
	}
	start, end := window.Start, window.End
	if start < 0 {
		start = 0
	}
	if end > len(rows) {
		end = len(rows)
	}
	if start >= end {
		return nil
	}
	return rows[start:end]
}

func writeRecord(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(escapeCSV(f))
	}
	buf.WriteByte('\n')
}

// escapeCSV quotes a field that contains a separator, a quote or a line
// break, doubling embedded quotes.
func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func serialize(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// document is the structured export layout.
type document struct {
	Query        string              `json:"query"`
	DisplayClass domain.DisplayClass `json:"display_class"`
	QueryForm    domain.QueryForm    `json:"query_form"`
	ExportedAt   string              `json:"exported_at"`
	ElapsedMs    int64               `json:"elapsed_ms"`
	ItemCount    int                 `json:"item_count"`
	Window       *Window             `json:"window,omitempty"`
	Result       any                 `json:"result"`
	Error        *domain.Error       `json:"error,omitempty"`
}

func toStructured(res domain.NormalizedResult, queryText string, window *Window, at time.Time) ([]byte, error) {
	doc := document{
		Query:        queryText,
		DisplayClass: res.Class,
		QueryForm:    res.Form,
		ExportedAt:   at.Format(domain.ArtifactTimestampFormat),
		ElapsedMs:    res.ElapsedMs,
		ItemCount:    res.ItemCount(),
		Error:        res.Failure,
	}

	switch res.Class {
	case domain.DisplayTabular:
		tab := res.Tabular
		if window != nil && tab != nil {
			rows := windowRows(tab.Rows, window)
			if rows == nil {
				rows = []map[string]string{}
			}
			tab = &domain.Tabular{Headers: tab.Headers, Rows: rows, RowCount: len(rows)}
			doc.Window = window
			doc.ItemCount = len(rows)
		}
		doc.Result = tab
	case domain.DisplayBoolean:
		doc.Result = res.Boolean
	case domain.DisplayGraph:
		doc.Result = res.Graph
	case domain.DisplayOpaque:
		doc.Result = res.Opaque
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, domain.WrapError(domain.KindApplication, "encode export document", err)
	}
	return buf.Bytes(), nil
}
