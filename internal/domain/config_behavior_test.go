package domain_test

import (
	"testing"
	"time"

	"github.com/doeshing/kgq/internal/domain"
)

// TestConfig_DefaultEndpoint tests endpoint resolution from configuration
func TestConfig_DefaultEndpoint(t *testing.T) {
	tests := []struct {
		name         string
		config       domain.Config
		env          string
		wantURL      string
		wantRepo     string
		wantPassword string
	}{
		{
			name:     "falls back to defaults",
			config:   domain.Config{},
			wantURL:  domain.DefaultGraphDBURL,
			wantRepo: domain.DefaultRepository,
		},
		{
			name: "uses configured values",
			config: domain.Config{
				Endpoint: domain.EndpointSettings{URL: "http://graph:7200", Repository: "films"},
			},
			wantURL:  "http://graph:7200",
			wantRepo: "films",
		},
		{
			name: "reads password from env when username set",
			config: domain.Config{
				Endpoint: domain.EndpointSettings{Username: "admin", PasswordEnv: "KGQ_TEST_PASSWORD"},
			},
			env:          "s3cret",
			wantURL:      domain.DefaultGraphDBURL,
			wantRepo:     domain.DefaultRepository,
			wantPassword: "s3cret",
		},
		{
			name:     "ignores password without username",
			config:   domain.Config{Endpoint: domain.EndpointSettings{PasswordEnv: "KGQ_TEST_PASSWORD"}},
			env:      "s3cret",
			wantURL:  domain.DefaultGraphDBURL,
			wantRepo: domain.DefaultRepository,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KGQ_TEST_PASSWORD", tt.env)
			ep := tt.config.DefaultEndpoint()

			if ep.URL != tt.wantURL {
				t.Errorf("got URL %s, want %s", ep.URL, tt.wantURL)
			}
			if ep.Repository != tt.wantRepo {
				t.Errorf("got repository %s, want %s", ep.Repository, tt.wantRepo)
			}
			if ep.Credentials.Password != tt.wantPassword {
				t.Errorf("got password %q, want %q", ep.Credentials.Password, tt.wantPassword)
			}
		})
	}
}

// TestConfig_Timeouts tests timeout defaults
func TestConfig_Timeouts(t *testing.T) {
	cfg := domain.Config{}
	if got := cfg.RequestTimeout(); got != domain.DefaultRequestTimeout {
		t.Errorf("RequestTimeout() = %v, want %v", got, domain.DefaultRequestTimeout)
	}

	cfg.Proxy.TimeoutSeconds = 3
	if got := cfg.RequestTimeout(); got != 3*time.Second {
		t.Errorf("RequestTimeout() = %v, want 3s", got)
	}
}

// TestConfig_PageSize tests page size defaults
func TestConfig_PageSize(t *testing.T) {
	cfg := domain.Config{}
	if got := cfg.PageSize(); got != domain.DefaultPageSize {
		t.Errorf("PageSize() = %d, want %d", got, domain.DefaultPageSize)
	}
	cfg.Query.PageSize = 25
	if got := cfg.PageSize(); got != 25 {
		t.Errorf("PageSize() = %d, want 25", got)
	}
}
