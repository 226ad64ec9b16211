package domain

// DisplayClass tags the populated variant of a NormalizedResult.
// Downstream code matches on it instead of re-reading the query text.
type DisplayClass string

const (
	DisplayTabular DisplayClass = "select"
	DisplayBoolean DisplayClass = "ask"
	DisplayGraph   DisplayClass = "graph"
	DisplayOpaque  DisplayClass = "raw"
	DisplayError   DisplayClass = "error"
)

// Tabular holds SELECT bindings. Every row carries every header; unbound values are "".
type Tabular struct {
	Headers  []string            `json:"headers"`
	Rows     []map[string]string `json:"rows"`
	RowCount int                 `json:"row_count"`
}

// Boolean holds an ASK answer.
type Boolean struct {
	Value bool `json:"value"`
}

// Graph holds CONSTRUCT/DESCRIBE output. Triples are opaque records.
// When the store returned something other than a sequence, Triples is empty
// and the payload is kept in Payload.
type Graph struct {
	Triples     []any `json:"triples"`
	TripleCount int   `json:"triple_count"`
	Payload     any   `json:"payload,omitempty"`
}

// Ordered reports whether the store returned a sequence of triples.
func (g *Graph) Ordered() bool {
	return g.Payload == nil
}

// Opaque wraps a payload of an unrecognized query form verbatim.
type Opaque struct {
	Payload any `json:"payload"`
}

// NormalizedResult is the single view model for every query outcome.
// Exactly one of Tabular, Boolean, Graph, Opaque or Failure is set, matching Class.
type NormalizedResult struct {
	Class     DisplayClass `json:"display_class"`
	Form      QueryForm    `json:"query_form"`
	Query     string       `json:"query"`
	ElapsedMs int64        `json:"elapsed_ms"`

	Tabular *Tabular `json:"tabular,omitempty"`
	Boolean *Boolean `json:"boolean,omitempty"`
	Graph   *Graph   `json:"graph,omitempty"`
	Opaque  *Opaque  `json:"opaque,omitempty"`
	Failure *Error   `json:"failure,omitempty"`
}

// Succeeded reports whether the result carries data rather than a failure.
func (r NormalizedResult) Succeeded() bool {
	return r.Class != DisplayError
}

// Label names the result in history listings and artifact names: the query
// form for graph results, so DESCRIBE output is not called "construct".
func (r NormalizedResult) Label() string {
	return resultLabel(r.Class, r.Form)
}

func resultLabel(class DisplayClass, form QueryForm) string {
	if class == DisplayGraph && (form == FormConstruct || form == FormDescribe) {
		return string(form)
	}
	return string(class)
}

// ItemCount is the row count for tabular results, the triple count for graphs
// and 1 for a boolean answer.
func (r NormalizedResult) ItemCount() int {
	switch r.Class {
	case DisplayTabular:
		return r.Tabular.RowCount
	case DisplayGraph:
		return r.Graph.TripleCount
	case DisplayBoolean:
		return 1
	default:
		return 0
	}
}
