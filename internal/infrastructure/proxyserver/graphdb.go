package proxyserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/doeshing/kgq/internal/domain"
)

// Media types used against the store.
const (
	mediaSPARQLQuery   = "application/sparql-query"
	mediaSPARQLUpdate  = "application/sparql-update"
	mediaSPARQLResults = "application/sparql-results+json"
	mediaJSONLD        = "application/ld+json"
)

const maxStoreBody = 64 << 20

// Target is the store repository a request runs against.
type Target struct {
	Endpoint   string
	Repository string
	Username   string
	Password   string
}

func (t Target) repositoryURL() string {
	return strings.TrimRight(t.Endpoint, "/") + "/repositories/" + t.Repository
}

// StoreResponse is a raw store reply.
type StoreResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r StoreResponse) OK() bool { return r.Status >= 200 && r.Status <= 299 }

// GraphDB speaks the SPARQL 1.1 protocol to a GraphDB-style store.
type GraphDB struct {
	client *http.Client
}

// NewGraphDB creates a store client with a per-request timeout.
func NewGraphDB(timeout time.Duration) *GraphDB {
	if timeout <= 0 {
		timeout = domain.DefaultRequestTimeout
	}
	return &GraphDB{client: &http.Client{Timeout: timeout}}
}

// Query runs a read query. Graph forms ask for JSON-LD, everything else for
// SPARQL JSON results.
func (g *GraphDB) Query(ctx context.Context, target Target, sparql string, form domain.QueryForm) (StoreResponse, error) {
	accept := mediaSPARQLResults
	if form == domain.FormConstruct || form == domain.FormDescribe {
		accept = mediaJSONLD
	}
	return g.post(ctx, target, target.repositoryURL(), sparql, mediaSPARQLQuery, accept)
}

// Update runs an update request against the statements endpoint.
func (g *GraphDB) Update(ctx context.Context, target Target, sparql string) (StoreResponse, error) {
	return g.post(ctx, target, target.repositoryURL()+"/statements", sparql, mediaSPARQLUpdate, "*/*")
}

// Repositories lists the store's repositories.
func (g *GraphDB) Repositories(ctx context.Context, target Target) (StoreResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(target.Endpoint, "/")+"/rest/repositories", nil)
	if err != nil {
		return StoreResponse{}, err
	}
	req.Header.Set("Accept", "application/json")
	return g.do(req, target)
}

func (g *GraphDB) post(ctx context.Context, target Target, url, body, contentType, accept string) (StoreResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return StoreResponse{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", accept)
	return g.do(req, target)
}

func (g *GraphDB) do(req *http.Request, target Target) (StoreResponse, error) {
	if target.Username != "" && target.Password != "" {
		req.SetBasicAuth(target.Username, target.Password)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return StoreResponse{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStoreBody))
	if err != nil {
		return StoreResponse{}, fmt.Errorf("read store response: %w", err)
	}
	return StoreResponse{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
