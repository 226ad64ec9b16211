package normalize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/kgq/internal/domain"
)

func selectPayload(vars []string, n int, omit string) map[string]any {
	head := make([]any, 0, len(vars))
	for _, v := range vars {
		head = append(head, v)
	}
	bindings := make([]any, 0, n)
	for i := 0; i < n; i++ {
		row := map[string]any{}
		for _, v := range vars {
			if v == omit && i%2 == 1 {
				continue
			}
			row[v] = map[string]any{"type": "uri", "value": fmt.Sprintf("http://ex.org/%s%d", v, i)}
		}
		bindings = append(bindings, row)
	}
	return map[string]any{
		"head":    map[string]any{"vars": head},
		"results": map[string]any{"bindings": bindings},
	}
}

func TestNormalizeSelect(t *testing.T) {
	q := "SELECT ?s ?p ?o WHERE { ?s ?p ?o } LIMIT 10"
	res := Normalize(q, domain.Succeeded(selectPayload([]string{"s", "p", "o"}, 10, "o"), 42))

	require.Equal(t, domain.DisplayTabular, res.Class)
	require.NotNil(t, res.Tabular)
	assert.Equal(t, []string{"s", "p", "o"}, res.Tabular.Headers)
	assert.Equal(t, 10, res.Tabular.RowCount)
	assert.Len(t, res.Tabular.Rows, 10)
	assert.Equal(t, int64(42), res.ElapsedMs)
	assert.Equal(t, q, res.Query)
	assert.Nil(t, res.Boolean)
	assert.Nil(t, res.Graph)
	assert.Nil(t, res.Opaque)
	assert.Nil(t, res.Failure)

	for i, row := range res.Tabular.Rows {
		assert.Len(t, row, 3, "row %d", i)
		for _, h := range []string{"s", "p", "o"} {
			_, ok := row[h]
			assert.True(t, ok, "row %d missing %s", i, h)
		}
	}
	assert.Equal(t, "http://ex.org/o0", res.Tabular.Rows[0]["o"])
	assert.Equal(t, "", res.Tabular.Rows[1]["o"])
}

func TestNormalizeSelectEmptyBindings(t *testing.T) {
	res := Normalize("select ?x where {}", domain.Succeeded(selectPayload([]string{"x"}, 0, ""), 1))

	require.Equal(t, domain.DisplayTabular, res.Class)
	assert.Equal(t, []string{"x"}, res.Tabular.Headers)
	assert.Equal(t, 0, res.Tabular.RowCount)
	assert.NotNil(t, res.Tabular.Rows)
	assert.True(t, res.Succeeded())
}

func TestNormalizeSelectWithoutDeclaredVars(t *testing.T) {
	raw := map[string]any{
		"results": map[string]any{"bindings": []any{
			map[string]any{"b": map[string]any{"value": "2"}, "a": map[string]any{"value": "1"}},
			map[string]any{"c": map[string]any{"value": "3"}},
		}},
	}
	res := Normalize("SELECT * WHERE { ?a ?b ?c }", domain.Succeeded(raw, 0))

	require.Equal(t, domain.DisplayTabular, res.Class)
	assert.Equal(t, []string{"a", "b", "c"}, res.Tabular.Headers)
	assert.Equal(t, map[string]string{"a": "", "b": "", "c": "3"}, res.Tabular.Rows[1])
}

func TestNormalizeSelectLiteralValues(t *testing.T) {
	raw := map[string]any{
		"head": map[string]any{"vars": []any{"count"}},
		"results": map[string]any{"bindings": []any{
			map[string]any{"count": map[string]any{"type": "literal", "value": "1234"}},
			map[string]any{"count": map[string]any{"type": "literal", "value": 7.0}},
		}},
	}
	res := Normalize("SELECT (COUNT(*) AS ?count) WHERE { ?s ?p ?o }", domain.Succeeded(raw, 0))

	assert.Equal(t, "1234", res.Tabular.Rows[0]["count"])
	assert.Equal(t, "7", res.Tabular.Rows[1]["count"])
}

func TestNormalizeAsk(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want bool
	}{
		{name: "true", raw: map[string]any{"head": map[string]any{}, "boolean": true}, want: true},
		{name: "false", raw: map[string]any{"boolean": false}, want: false},
		{name: "missing field", raw: map[string]any{"head": map[string]any{}}, want: false},
		{name: "wrong type", raw: map[string]any{"boolean": "yes"}, want: false},
		{name: "nil payload", raw: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize("ASK { ?s a <Type> }", domain.Succeeded(tt.raw, 3))
			require.Equal(t, domain.DisplayBoolean, res.Class)
			require.NotNil(t, res.Boolean)
			assert.Equal(t, tt.want, res.Boolean.Value)
			assert.Equal(t, 1, res.ItemCount())
		})
	}
}

func TestNormalizeGraph(t *testing.T) {
	triples := []any{
		map[string]any{"@id": "http://ex.org/a"},
		map[string]any{"@id": "http://ex.org/b"},
	}

	t.Run("sequence", func(t *testing.T) {
		res := Normalize("CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }", domain.Succeeded(triples, 0))
		require.Equal(t, domain.DisplayGraph, res.Class)
		assert.Equal(t, 2, res.Graph.TripleCount)
		assert.Len(t, res.Graph.Triples, 2)
		assert.True(t, res.Graph.Ordered())
	})

	t.Run("json-ld graph", func(t *testing.T) {
		raw := map[string]any{"@context": map[string]any{}, "@graph": triples}
		res := Normalize("DESCRIBE <http://ex.org/a>", domain.Succeeded(raw, 0))
		require.Equal(t, domain.DisplayGraph, res.Class)
		assert.Equal(t, 2, res.Graph.TripleCount)
	})

	t.Run("single object", func(t *testing.T) {
		raw := map[string]any{"@id": "http://ex.org/a", "name": "a"}
		res := Normalize("describe <http://ex.org/a>", domain.Succeeded(raw, 0))
		require.Equal(t, domain.DisplayGraph, res.Class)
		assert.Equal(t, 0, res.Graph.TripleCount)
		assert.Empty(t, res.Graph.Triples)
		assert.False(t, res.Graph.Ordered())
		assert.Equal(t, raw, res.Graph.Payload)
	})
}

func TestNormalizeOpaque(t *testing.T) {
	raw := map[string]any{"updated": true}
	for _, q := range []string{"INSERT DATA { <a> <b> <c> }", "LOAD <http://ex.org/data.ttl>"} {
		res := Normalize(q, domain.Succeeded(raw, 0))
		require.Equal(t, domain.DisplayOpaque, res.Class, q)
		assert.Equal(t, raw, res.Opaque.Payload)
		assert.Equal(t, 0, res.ItemCount())
	}
}

func TestNormalizeFailure(t *testing.T) {
	failure := domain.NewError(domain.KindTransport, "connection failed")
	res := Normalize("SELECT * WHERE { ?s ?p ?o }", domain.Failed(failure, 3000))

	assert.Equal(t, domain.DisplayError, res.Class)
	assert.False(t, res.Succeeded())
	assert.Same(t, failure, res.Failure)
	assert.Equal(t, int64(3000), res.ElapsedMs)
	assert.Nil(t, res.Tabular)
	assert.Equal(t, 0, res.ItemCount())
}

func TestNormalizeIsIdempotent(t *testing.T) {
	q := "SELECT ?s ?p ?o WHERE { ?s ?p ?o }"
	outcome := domain.Succeeded(selectPayload([]string{"s", "p", "o"}, 5, "p"), 9)

	first := Normalize(q, outcome)
	second := Normalizer{}.Normalize(q, outcome)
	assert.Equal(t, first, second)
}
