package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/ports"
	"github.com/doeshing/kgq/internal/testutil"
)

func TestQuerySendsEnvelope(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success": true, "results": {"head": {"vars": ["s"]}, "results": {"bindings": []}}}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL+"/", time.Second, testutil.NewTestLogger(t))
	resp, err := tr.Query(context.Background(), domain.QueryRequest{
		Text:   "SELECT ?s WHERE { ?s ?p ?o }",
		Format: domain.FormatJSON,
		Endpoint: domain.Endpoint{
			URL:         "http://localhost:7200",
			Repository:  "kgsde-proj",
			Credentials: domain.Credentials{Username: "admin", Password: "pw"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Payload)

	assert.Equal(t, "SELECT ?s WHERE { ?s ?p ?o }", got["sparql"])
	assert.Equal(t, "json", got["format"])
	assert.Equal(t, "http://localhost:7200", got["endpoint"])
	assert.Equal(t, "kgsde-proj", got["repository"])
	assert.Equal(t, "admin", got["username"])
	assert.Equal(t, "pw", got["password"])
}

func TestQueryOmitsPartialCredentials(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"success": true, "results": {}}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL, time.Second, nil)
	_, err := tr.Query(context.Background(), domain.QueryRequest{
		Text:     "ASK {}",
		Endpoint: domain.Endpoint{URL: "http://x", Repository: "r", Credentials: domain.Credentials{Username: "admin"}},
	})
	require.NoError(t, err)
	assert.NotContains(t, got, "username")
	assert.NotContains(t, got, "password")
}

func TestQueryResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantSuccess bool
		wantDetail  string
		wantErrCat  string
	}{
		{name: "store error", status: 400, body: `{"detail": "GraphDB query failed: MALFORMED QUERY"}`, wantStatus: 400, wantDetail: "GraphDB query failed: MALFORMED QUERY"},
		{name: "validation detail list", status: 422, body: `{"detail": [{"msg": "field required"}]}`, wantStatus: 422, wantDetail: `[{"msg": "field required"}]`},
		{name: "html error page", status: 502, body: `<html>Bad Gateway</html>`, wantStatus: 502, wantDetail: "<html>Bad Gateway</html>"},
		{name: "application failure", status: 200, body: `{"success": false, "message": "store said no"}`, wantStatus: 200, wantDetail: "store said no"},
		{name: "not json", status: 200, body: `ok`, wantErrCat: CategoryMalformed},
		{name: "no success flag", status: 200, body: `{"results": {}}`, wantErrCat: CategoryMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := NewHTTPTransport(srv.URL, time.Second, nil).Query(context.Background(), domain.QueryRequest{Text: "SELECT 1"})
			if tt.wantErrCat != "" {
				var ce ports.ClassifiedError
				require.True(t, errors.As(err, &ce))
				assert.Equal(t, tt.wantErrCat, ce.Category())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Equal(t, tt.wantDetail, resp.Detail)
		})
	}
}

func TestQueryTimeoutIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewHTTPTransport(srv.URL, 50*time.Millisecond, nil).Query(context.Background(), domain.QueryRequest{Text: "SELECT 1"})
	var ce ports.ClassifiedError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CategoryTimeout, ce.Category())
}

func TestQueryRefusedIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewHTTPTransport(addr, time.Second, nil).Query(context.Background(), domain.QueryRequest{Text: "SELECT 1"})
	var ce ports.ClassifiedError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CategoryRefused, ce.Category())
}

func TestTestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/test-connection", r.URL.Path)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "kgsde-proj", body["repository"])
		_, _ = w.Write([]byte(`{"success": true, "message": "Connection successful", "test_result": {"results": {"bindings": [{"count": {"value": "42"}}]}}}`))
	}))
	defer srv.Close()

	resp, err := NewHTTPTransport(srv.URL, time.Second, nil).TestConnection(context.Background(), domain.Endpoint{URL: "http://localhost:7200", Repository: "kgsde-proj"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Connection successful", resp.Detail)
	assert.NotNil(t, resp.Payload)
}

func TestListRepositories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/repositories", r.URL.Path)
		assert.Equal(t, "http://graphdb:7200", r.URL.Query().Get("endpoint"))
		_, _ = w.Write([]byte(`{"success": true, "repositories": [{"id": "kgsde-proj"}]}`))
	}))
	defer srv.Close()

	resp, err := NewHTTPTransport(srv.URL, time.Second, nil).ListRepositories(context.Background(), "http://graphdb:7200")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []any{map[string]any{"id": "kgsde-proj"}}, resp.Payload)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, CategoryTimeout, Classify(context.DeadlineExceeded))
	assert.Equal(t, CategoryRefused, Classify(errors.New("dial tcp 127.0.0.1:1: connect: connection refused")))
	assert.Equal(t, CategoryTLS, Classify(errors.New("x509: certificate signed by unknown authority")))
	assert.Equal(t, CategoryNetwork, Classify(errors.New("EOF")))
}
