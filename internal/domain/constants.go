package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
	// ArtifactFilePermissions is the permission for exported files (rw-r--r--)
	ArtifactFilePermissions = 0o644
)

// Endpoint defaults
const (
	DefaultProxyURL    = "http://localhost:8000"
	DefaultGraphDBURL  = "http://localhost:7200"
	DefaultRepository  = "kgsde-proj"
	DefaultServerAddr  = ":8000"
	DefaultPasswordEnv = "KGQ_PASSWORD"
)

// Timeout constants
const (
	// DefaultRequestTimeout is passed to the transport; expiry surfaces as a transport error.
	DefaultRequestTimeout = 30 * time.Second
	// DefaultProbeTimeout bounds doctor's liveness check.
	DefaultProbeTimeout = 10 * time.Second
)

// Limit constants
const (
	// MaxHistoryEntries bounds the history log.
	MaxHistoryEntries = 50
	// DefaultPageSize is the tabular page size.
	DefaultPageSize = 50
	// DefaultMaxArtifacts is the number of exported files the sink retains.
	DefaultMaxArtifacts = 100
)

// Storage keys
const (
	HistoryStorageKey  = "kgq.query_history"
	EndpointStorageKey = "kgq.endpoint"
)

// ProbeQuery is the liveness query the proxy runs for a connection test.
const ProbeQuery = "SELECT (COUNT(*) as ?count) WHERE { ?s ?p ?o }"

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
	// ArtifactTimestampFormat is ISO-8601 with milliseconds, before colons are stripped.
	ArtifactTimestampFormat = "2006-01-02T15:04:05.000Z07:00"
)
