package helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pterm/pterm"

	"github.com/doeshing/kgq/internal/application/export"
	"github.com/doeshing/kgq/internal/application/query"
	"github.com/doeshing/kgq/internal/domain"
)

// Output formats accepted by --output and output.format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

const maxQueryPreview = 60

// ParseFormat validates an output format name; empty selects table.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", NewExitError(ExitCommandError, fmt.Sprintf("unknown output format %q (want table, json or csv)", s))
}

// Renderer prints results and status lines. Data goes to out; status and
// failures go to errOut so piped output stays clean.
type Renderer struct {
	out      io.Writer
	errOut   io.Writer
	format   string
	exporter *export.Engine
}

// NewRenderer builds a renderer for one of the Format* names.
func NewRenderer(out, errOut io.Writer, format string) *Renderer {
	if format == "" {
		format = FormatTable
	}
	return &Renderer{out: out, errOut: errOut, format: format, exporter: export.NewEngine()}
}

// Format returns the active output format.
func (r *Renderer) Format() string { return r.format }

// Result prints a normalized result. For tabular results in table and csv
// format only the rows of view are printed.
func (r *Renderer) Result(res domain.NormalizedResult, view *query.PageView) error {
	if r.format == FormatJSON {
		var window *export.Window
		if view != nil && res.Class == domain.DisplayTabular {
			window = pageWindow(*view)
		}
		art, err := r.exporter.Export(res, export.KindJSON, window)
		if err != nil {
			return err
		}
		_, err = r.out.Write(art.Content)
		return err
	}

	if !res.Succeeded() {
		r.Failure(res.Failure)
		return nil
	}

	if r.format == FormatCSV {
		var window *export.Window
		if view != nil {
			window = pageWindow(*view)
		}
		data, err := export.ToFlatTable(res, window)
		if err != nil {
			if domain.IsKind(err, domain.KindEmptyExport) {
				return nil
			}
			return err
		}
		_, err = r.out.Write(data)
		return err
	}

	switch res.Class {
	case domain.DisplayTabular:
		r.tabular(res, view)
	case domain.DisplayBoolean:
		fmt.Fprintln(r.out, res.Boolean.Value)
		r.footer("ASK answered in %dms", res.ElapsedMs)
	case domain.DisplayGraph:
		if res.Graph.Ordered() {
			r.json(res.Graph.Triples)
			r.footer("%d triples in %dms", res.Graph.TripleCount, res.ElapsedMs)
		} else {
			r.json(res.Graph.Payload)
			r.footer("graph payload in %dms", res.ElapsedMs)
		}
	case domain.DisplayOpaque:
		r.json(res.Opaque.Payload)
		r.footer("%s completed in %dms", strings.ToUpper(string(res.Form)), res.ElapsedMs)
	}
	return nil
}

func pageWindow(view query.PageView) *export.Window {
	if view.State.CurrentPage < 1 {
		return nil
	}
	start := (view.State.CurrentPage - 1) * view.State.PageSize
	return &export.Window{Start: start, End: start + len(view.Rows)}
}

func (r *Renderer) tabular(res domain.NormalizedResult, view *query.PageView) {
	headers := res.Tabular.Headers
	rows := res.Tabular.Rows
	if view != nil {
		rows = view.Rows
	}
	if len(rows) == 0 {
		fmt.Fprintln(r.out, "(0 rows)")
		r.footer("%d rows in %dms", res.Tabular.RowCount, res.ElapsedMs)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	// variable names are case-sensitive
	t.Style().Format.Header = text.FormatDefault
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, row := range rows {
		line := make(table.Row, len(headers))
		for i, h := range headers {
			line[i] = row[h]
		}
		t.AppendRow(line)
	}
	t.Render()

	if view != nil && view.State.PageCount > 1 {
		start := (view.State.CurrentPage-1)*view.State.PageSize + 1
		r.footer("rows %d-%d of %d (page %d/%d) in %dms",
			start, start+len(rows)-1, view.State.TotalRows,
			view.State.CurrentPage, view.State.PageCount, res.ElapsedMs)
		return
	}
	r.footer("%d rows in %dms", res.Tabular.RowCount, res.ElapsedMs)
}

func (r *Renderer) json(v any) {
	enc := json.NewEncoder(r.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(r.out, "%v\n", v)
	}
}

func (r *Renderer) footer(format string, args ...any) {
	fmt.Fprintf(r.errOut, "("+format+")\n", args...)
}

// Failure prints a classified failure.
func (r *Renderer) Failure(err *domain.Error) {
	if err == nil {
		return
	}
	msg := err.Message
	if err.Kind != "" {
		msg = fmt.Sprintf("%s error: %s", err.Kind, err.Message)
	}
	pterm.Error.WithWriter(r.errOut).Println(msg)
}

// Error prints any error as a failure line.
func (r *Renderer) Error(err error) {
	if err == nil {
		return
	}
	pterm.Error.WithWriter(r.errOut).Println(err.Error())
}

// Success prints a status line.
func (r *Renderer) Success(format string, args ...any) {
	pterm.Success.WithWriter(r.errOut).Println(fmt.Sprintf(format, args...))
}

// Info prints an informational line.
func (r *Renderer) Info(format string, args ...any) {
	pterm.Info.WithWriter(r.errOut).Println(fmt.Sprintf(format, args...))
}

// Warning prints a warning line.
func (r *Renderer) Warning(format string, args ...any) {
	pterm.Warning.WithWriter(r.errOut).Println(fmt.Sprintf(format, args...))
}

// Probe prints a connection test result.
func (r *Renderer) Probe(probe domain.ProbeResult) {
	if r.format == FormatJSON {
		r.json(map[string]any{
			"success":    probe.Outcome.Success,
			"message":    probe.Message,
			"elapsed_ms": probe.Outcome.ElapsedMs,
		})
		return
	}
	if probe.Outcome.Success {
		r.Success("%s (%dms)", probe.Message, probe.Outcome.ElapsedMs)
		return
	}
	pterm.Error.WithWriter(r.errOut).Println(fmt.Sprintf("%s (%dms)", probe.Message, probe.Outcome.ElapsedMs))
}

// Repositories prints the repository list returned by the store.
func (r *Renderer) Repositories(outcome domain.QueryOutcome) {
	if !outcome.Success {
		r.Failure(outcome.Failure)
		return
	}
	list, ok := outcome.Raw.([]any)
	if !ok || r.format == FormatJSON {
		r.json(outcome.Raw)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"id", "title", "uri"})
	for _, item := range list {
		repo, _ := item.(map[string]any)
		t.AppendRow(table.Row{field(repo, "id"), field(repo, "title"), field(repo, "uri")})
	}
	t.Render()
	r.footer("%d repositories", len(list))
}

func field(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// History prints the history log, most recent first, numbered from 1.
func (r *Renderer) History(entries []domain.HistoryEntry) {
	if r.format == FormatJSON {
		r.json(entries)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(r.out, "No history recorded yet.")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "when", "result", "items", "ms", "query"})
	for i, entry := range entries {
		status := entry.Outcome.Label()
		if !entry.Outcome.Success {
			status = "error:" + string(entry.Outcome.ErrorKind)
		}
		t.AppendRow(table.Row{
			i + 1,
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			status,
			entry.Outcome.ItemCount,
			entry.Outcome.ElapsedMs,
			Preview(entry.Query),
		})
	}
	t.Render()
}

// Samples prints the sample catalog, numbered from 1.
func (r *Renderer) Samples(samples []domain.SampleQuery) {
	if r.format == FormatJSON {
		r.json(samples)
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "name", "description"})
	for i, s := range samples {
		t.AppendRow(table.Row{i + 1, s.Name, s.Description})
	}
	t.Render()
}

// Browse prints samples and history together.
func (r *Renderer) Browse(items []domain.BrowseItem) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"source", "label", "query"})
	for _, item := range items {
		t.AppendRow(table.Row{item.Source, item.Label, Preview(item.Query)})
	}
	t.Render()
}

// Exported reports where an artifact went.
func (r *Renderer) Exported(res query.ExportResult) {
	r.Success("exported %s (%d bytes) to %s", res.Artifact.Filename, len(res.Artifact.Content), res.Location)
}

// Doctor prints a diagnostics report.
func (r *Renderer) Doctor(report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(r.out, "[%s] %s - %s\n",
			strings.ToUpper(string(check.Status)),
			check.Name,
			check.Details)
	}
}

// Preview collapses whitespace and truncates a query for one-line display.
func Preview(q string) string {
	flat := strings.Join(strings.Fields(q), " ")
	if len([]rune(flat)) <= maxQueryPreview {
		return flat
	}
	return string([]rune(flat)[:maxQueryPreview-3]) + "..."
}
