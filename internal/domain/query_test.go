package domain_test

import (
	"testing"

	"github.com/doeshing/kgq/internal/domain"
)

func TestInferForm(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  domain.QueryForm
	}{
		{"select", "SELECT ?s ?p ?o WHERE { ?s ?p ?o } LIMIT 10", domain.FormSelect},
		{"lowercase select", "select * where { ?s ?p ?o }", domain.FormSelect},
		{"mixed case with leading whitespace", "  \n\tSeLeCt ?x {}", domain.FormSelect},
		{"select star without space", "SELECT* WHERE {}", domain.FormSelect},
		{"ask with brace", "ASK{ ?s a <Type> }", domain.FormAsk},
		{"construct", "CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }", domain.FormConstruct},
		{"describe", "DESCRIBE <http://example.org/a>", domain.FormDescribe},
		{"insert", "INSERT DATA { <a> <b> <c> }", domain.FormInsert},
		{"delete", "DELETE WHERE { ?s ?p ?o }", domain.FormDelete},
		{"prefix prologue", "PREFIX ex: <http://example.org/>\nSELECT ?s WHERE { ?s a ex:T }", domain.FormSelect},
		{"base and prefix", "BASE <http://x/> PREFIX : <http://y/> ASK {}", domain.FormAsk},
		{"comment before keyword", "# find things\nSELECT ?s {}", domain.FormSelect},
		{"unknown keyword", "LOAD <http://example.org/data.ttl>", domain.FormUnknown},
		{"empty", "", domain.FormUnknown},
		{"only comment", "# nothing", domain.FormUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.InferForm(tt.query); got != tt.want {
				t.Errorf("InferForm(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func TestIsUpdateRequest(t *testing.T) {
	updates := []string{
		"INSERT DATA { <a> <b> <c> }",
		"delete where { ?s ?p ?o }",
		"WITH <http://ex.org/g> DELETE { ?s ?p ?o } WHERE { ?s ?p ?o }",
		"CLEAR GRAPH <http://ex.org/g>",
		"PREFIX ex: <http://ex.org/>\nDROP SILENT GRAPH ex:g",
		"LOAD <http://ex.org/data.ttl>",
		"CREATE GRAPH <http://ex.org/g>",
		"COPY DEFAULT TO <http://ex.org/g>",
		"MOVE <http://ex.org/a> TO <http://ex.org/b>",
		"ADD <http://ex.org/a> TO <http://ex.org/b>",
	}
	for _, q := range updates {
		if !domain.IsUpdateRequest(q) {
			t.Errorf("%q should be an update request", q)
		}
	}
	for _, q := range []string{"SELECT * WHERE { ?s ?p ?o }", "ASK {}", "", "# comment only"} {
		if domain.IsUpdateRequest(q) {
			t.Errorf("%q should not be an update request", q)
		}
	}
}

func TestErrorKindHelpers(t *testing.T) {
	err := domain.WrapError(domain.KindTransport, "connection failed", domain.ErrEmptyQuery)
	if domain.KindOf(err) != domain.KindTransport {
		t.Fatalf("KindOf() = %s", domain.KindOf(err))
	}
	if !domain.IsKind(err, domain.KindTransport) {
		t.Fatal("IsKind should match")
	}
	if domain.IsKind(nil, domain.KindTransport) {
		t.Fatal("nil error should not match any kind")
	}
}
