package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/kgq/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		Proxy:    domain.ProxySettings{URL: "http://localhost:8000", TimeoutSeconds: 30},
		Endpoint: domain.EndpointSettings{URL: "http://localhost:7200", Repository: "kgsde-proj"},
		Query:    domain.QuerySettings{DefaultFormat: "json", PageSize: 50},
		History:  domain.HistorySettings{Backend: "sqlite"},
		Security: domain.SecuritySettings{Enabled: true, RulesFile: "~/.kgq/guard.yaml"},
		Server:   domain.ServerSettings{Addr: ":8000", GraphDBURL: "http://localhost:7200"},
		Output:   domain.OutputSettings{Format: "table"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*domain.Config) {}},
		{name: "proxy scheme", mutate: func(c *domain.Config) { c.Proxy.URL = "ftp://proxy" }, wantErr: "proxy.url"},
		{name: "proxy missing", mutate: func(c *domain.Config) { c.Proxy.URL = "" }, wantErr: "proxy.url must be set"},
		{name: "endpoint host", mutate: func(c *domain.Config) { c.Endpoint.URL = "http://" }, wantErr: "endpoint.url has no host"},
		{name: "repository", mutate: func(c *domain.Config) { c.Endpoint.Repository = " " }, wantErr: "endpoint.repository"},
		{name: "page size", mutate: func(c *domain.Config) { c.Query.PageSize = 0 }, wantErr: "query.page_size"},
		{name: "format", mutate: func(c *domain.Config) { c.Query.DefaultFormat = "xml" }, wantErr: "query.default_format"},
		{name: "backend", mutate: func(c *domain.Config) { c.History.Backend = "redis" }, wantErr: "history.backend"},
		{name: "artifacts", mutate: func(c *domain.Config) { c.Export.MaxArtifacts = -1 }, wantErr: "export.max_artifacts"},
		{name: "rules file", mutate: func(c *domain.Config) { c.Security.RulesFile = "" }, wantErr: "security.rules_file"},
		{name: "rules file unused when disabled", mutate: func(c *domain.Config) {
			c.Security = domain.SecuritySettings{}
		}},
		{name: "server addr", mutate: func(c *domain.Config) { c.Server.Addr = "" }, wantErr: "server.addr"},
		{name: "output", mutate: func(c *domain.Config) { c.Output.Format = "xml" }, wantErr: "output.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Query.PageSize = -1
	cfg.Output.Format = "xml"

	err := Validate(cfg)
	assert.ErrorContains(t, err, "query.page_size")
	assert.ErrorContains(t, err, "output.format")
}
