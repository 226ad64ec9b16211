// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the query core and external
// adapters (infrastructure). The core normalizes query results, paginates
// and exports them, and keeps history; everything it needs from the outside
// world (the query proxy, durable storage, the download sink, credentials)
// is reached through the interfaces below.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., QueryTransport, KeyValueStore)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/kgq/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.kgq/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// TransportResponse is the envelope returned by the query proxy.
// Status is the HTTP status; Success is the proxy's own success flag.
type TransportResponse struct {
	Status  int
	Success bool
	Payload any
	Detail  string
}

// QueryTransport performs one request/response exchange with the query proxy.
// A returned error means no usable response was received.
type QueryTransport interface {
	Query(ctx context.Context, req domain.QueryRequest) (TransportResponse, error)
	TestConnection(ctx context.Context, endpoint domain.Endpoint) (TransportResponse, error)
	ListRepositories(ctx context.Context, endpointURL string) (TransportResponse, error)
}

// ClassifiedError is implemented by transport errors that know their network
// cause (timeout, dns, refused, tls, status, malformed, network).
type ClassifiedError interface {
	error
	Category() string
}

// KeyValueStore is the durable storage boundary used for history and the
// last-known endpoint. Get returns def when the key is absent.
type KeyValueStore interface {
	Get(key string, def []byte) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// ExportSink receives a finished export artifact. The core does not manage
// the resulting file after handoff.
type ExportSink interface {
	Save(filename, mimeType string, content []byte) (string, error)
}

// SampleCatalog supplies the static, ordered list of sample queries.
type SampleCatalog interface {
	Samples() []domain.SampleQuery
}

// CredentialStore keeps endpoint passwords outside the config file.
type CredentialStore interface {
	SavePassword(endpointKey, password string) error
	LoadPassword(endpointKey string) (string, error)
	ClearPassword(endpointKey string) error
}

// QueryEditor is the editing surface that owns the current query text.
type QueryEditor interface {
	CurrentQueryText() string
	SetCurrentQueryText(text string)
}

// QueryGuard evaluates query text against destructive-operation rules.
type QueryGuard interface {
	Evaluate(query string) (domain.GuardVerdict, error)
}

// ConfirmationPrompter asks the user before a guarded query is sent.
type ConfirmationPrompter interface {
	Confirm(verdict domain.GuardVerdict, query string) (bool, error)
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
