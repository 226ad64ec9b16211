package domain

import (
	"strings"
	"unicode"
)

// QueryForm is the syntactic category of a SPARQL query, taken from its leading keyword.
type QueryForm string

const (
	FormSelect    QueryForm = "select"
	FormConstruct QueryForm = "construct"
	FormAsk       QueryForm = "ask"
	FormDescribe  QueryForm = "describe"
	FormInsert    QueryForm = "insert"
	FormDelete    QueryForm = "delete"
	FormUnknown   QueryForm = "unknown"
)

var knownForms = map[string]QueryForm{
	"select":    FormSelect,
	"construct": FormConstruct,
	"ask":       FormAsk,
	"describe":  FormDescribe,
	"insert":    FormInsert,
	"delete":    FormDelete,
}

// InferForm returns the form named by the first keyword of the query.
// Matching is case-insensitive. PREFIX and BASE declarations and # comments
// are skipped so a prologue does not hide the form.
func InferForm(text string) QueryForm {
	if form, ok := knownForms[leadingKeyword(text)]; ok {
		return form
	}
	return FormUnknown
}

// updateKeywords open SPARQL 1.1 Update operations.
var updateKeywords = map[string]bool{
	"insert": true, "delete": true, "with": true, "load": true, "clear": true,
	"drop": true, "create": true, "copy": true, "move": true, "add": true,
}

// IsUpdateRequest reports whether text is a SPARQL Update request, including
// graph management operations that InferForm reports as FormUnknown.
func IsUpdateRequest(text string) bool {
	return updateKeywords[leadingKeyword(text)]
}

// leadingKeyword returns the lowercased first keyword after the prologue.
func leadingKeyword(text string) string {
	rest := text
	for {
		rest = skipSpaceAndComments(rest)
		word, tail := nextWord(rest)
		switch word = strings.ToLower(word); word {
		case "prefix":
			// PREFIX ex: <iri>
			_, tail = nextWord(skipSpaceAndComments(tail))
			rest = skipIRI(skipSpaceAndComments(tail))
		case "base":
			rest = skipIRI(skipSpaceAndComments(tail))
		default:
			return word
		}
	}
}

func skipSpaceAndComments(s string) string {
	for {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if !strings.HasPrefix(s, "#") {
			return s
		}
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
			continue
		}
		return ""
	}
}

func nextWord(s string) (string, string) {
	end := strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '{' || r == '(' || r == '<' || r == '*'
	})
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}

func skipIRI(s string) string {
	if !strings.HasPrefix(s, "<") {
		return s
	}
	if idx := strings.IndexByte(s, '>'); idx >= 0 {
		return s[idx+1:]
	}
	return ""
}

// ResponseFormat is the result serialization requested from the proxy.
type ResponseFormat string

const (
	FormatJSON ResponseFormat = "json"
)

// Credentials is an optional username/password pair for the backing store.
type Credentials struct {
	Username string `json:"username,omitempty"`
	Password string `json:"-"`
}

// Empty reports whether no usable credential pair is present.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// Endpoint identifies the store a query runs against.
type Endpoint struct {
	URL         string      `json:"url"`
	Repository  string      `json:"repository"`
	Credentials Credentials `json:"credentials"`
}

// Key is the stable identity used for credential lookups.
func (e Endpoint) Key() string {
	return strings.TrimRight(e.URL, "/") + "/repositories/" + e.Repository
}

// QueryRequest is one submitted query. It is not modified after submission.
type QueryRequest struct {
	Text     string
	Format   ResponseFormat
	Endpoint Endpoint
}

// Form infers the request's query form.
func (r QueryRequest) Form() QueryForm {
	return InferForm(r.Text)
}
