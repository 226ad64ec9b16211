// Package normalize maps raw proxy payloads onto the NormalizedResult view model.
package normalize

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/doeshing/kgq/internal/domain"
)

// Normalize converts an outcome into exactly one result variant. Failures
// become DisplayError results instead of errors, so callers have a single path.
// The function is pure: the same inputs always produce equal results.
func Normalize(queryText string, outcome domain.QueryOutcome) domain.NormalizedResult {
	form := domain.InferForm(queryText)
	res := domain.NormalizedResult{
		Form:      form,
		Query:     queryText,
		ElapsedMs: outcome.ElapsedMs,
	}

	if !outcome.Success {
		failure := outcome.Failure
		if failure == nil {
			failure = domain.NewError(domain.KindTransport, "query failed")
		}
		res.Class = domain.DisplayError
		res.Failure = failure
		return res
	}

	switch form {
	case domain.FormSelect:
		res.Class = domain.DisplayTabular
		res.Tabular = tabular(outcome.Raw)
	case domain.FormAsk:
		res.Class = domain.DisplayBoolean
		res.Boolean = boolean(outcome.Raw)
	case domain.FormConstruct, domain.FormDescribe:
		res.Class = domain.DisplayGraph
		res.Graph = graph(outcome.Raw)
	default:
		res.Class = domain.DisplayOpaque
		res.Opaque = &domain.Opaque{Payload: outcome.Raw}
	}
	return res
}

// tabular reads a SPARQL JSON results document:
//
//	{"head": {"vars": [...]}, "results": {"bindings": [{"v": {"type": ..., "value": ...}}]}}
func tabular(raw any) *domain.Tabular {
	doc, _ := raw.(map[string]any)
	bindings := bindingList(doc)
	headers := declaredVars(doc)
	if headers == nil {
		headers = bindingKeys(bindings)
	}

	rows := make([]map[string]string, 0, len(bindings))
	for _, b := range bindings {
		binding, _ := b.(map[string]any)
		row := make(map[string]string, len(headers))
		for _, h := range headers {
			// unbound variables map to "", never to a missing key
			row[h] = termValue(binding[h])
		}
		rows = append(rows, row)
	}
	return &domain.Tabular{Headers: headers, Rows: rows, RowCount: len(rows)}
}

func declaredVars(doc map[string]any) []string {
	head, _ := doc["head"].(map[string]any)
	vars, ok := head["vars"].([]any)
	if !ok {
		return nil
	}
	headers := make([]string, 0, len(vars))
	for _, v := range vars {
		if name, ok := v.(string); ok {
			headers = append(headers, name)
		}
	}
	return headers
}

func bindingList(doc map[string]any) []any {
	results, _ := doc["results"].(map[string]any)
	bindings, _ := results["bindings"].([]any)
	return bindings
}

// bindingKeys is used when the store omitted head.vars.
func bindingKeys(bindings []any) []string {
	seen := map[string]bool{}
	var keys []string
	for _, b := range bindings {
		binding, _ := b.(map[string]any)
		rowKeys := make([]string, 0, len(binding))
		for k := range binding {
			if !seen[k] {
				seen[k] = true
				rowKeys = append(rowKeys, k)
			}
		}
		sort.Strings(rowKeys)
		keys = append(keys, rowKeys...)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys
}

func termValue(term any) string {
	switch t := term.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any:
		if v, ok := t["value"]; ok {
			return scalar(v)
		}
		return encode(t)
	default:
		return scalar(t)
	}
}

func scalar(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64, bool, json.Number:
		return fmt.Sprint(s)
	default:
		return encode(s)
	}
}

func encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// boolean treats a missing or non-boolean field as false, a valid answer.
func boolean(raw any) *domain.Boolean {
	doc, _ := raw.(map[string]any)
	value, _ := doc["boolean"].(bool)
	return &domain.Boolean{Value: value}
}

// graph keeps the returned triples as-is. A JSON-LD @graph array or a
// bindings array inside a results document count as the sequence.
func graph(raw any) *domain.Graph {
	if seq, ok := tripleSequence(raw); ok {
		return &domain.Graph{Triples: seq, TripleCount: len(seq)}
	}
	return &domain.Graph{Triples: []any{}, TripleCount: 0, Payload: raw}
}

func tripleSequence(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case nil:
		return []any{}, true
	case []any:
		return v, true
	case map[string]any:
		if seq, ok := v["@graph"].([]any); ok {
			return seq, true
		}
		if seq := bindingList(v); seq != nil {
			return seq, true
		}
	}
	return nil, false
}

// Normalizer is the injectable form of Normalize.
type Normalizer struct{}

func (Normalizer) Normalize(queryText string, outcome domain.QueryOutcome) domain.NormalizedResult {
	return Normalize(queryText, outcome)
}
