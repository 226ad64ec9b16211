package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/doeshing/kgq/internal/domain"
)

// Validate ensures config structure is consistent. All problems are reported together.
func Validate(cfg domain.Config) error {
	var errs []error
	if err := validateURL("proxy.url", cfg.Proxy.URL); err != nil {
		errs = append(errs, err)
	}
	if cfg.Proxy.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("proxy.timeout_seconds must be >= 0"))
	}
	if err := validateEndpoint(cfg.Endpoint); err != nil {
		errs = append(errs, err)
	}
	if err := validateQuery(cfg.Query); err != nil {
		errs = append(errs, err)
	}
	if err := validateHistory(cfg.History); err != nil {
		errs = append(errs, err)
	}
	if cfg.Export.MaxArtifacts < 0 {
		errs = append(errs, fmt.Errorf("export.max_artifacts must be >= 0"))
	}
	if cfg.Security.Enabled && strings.TrimSpace(cfg.Security.RulesFile) == "" {
		errs = append(errs, fmt.Errorf("security.rules_file must be set when security is enabled"))
	}
	if err := validateServer(cfg.Server); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(cfg.Output.Format) {
	case "", "table", "json", "csv":
	default:
		errs = append(errs, fmt.Errorf("output.format must be table|json|csv, got %s", cfg.Output.Format))
	}
	return errors.Join(errs...)
}

func validateURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s must be set", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s invalid: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: %q", key, raw)
	}
	return nil
}

func validateEndpoint(ep domain.EndpointSettings) error {
	if err := validateURL("endpoint.url", ep.URL); err != nil {
		return err
	}
	if strings.TrimSpace(ep.Repository) == "" {
		return fmt.Errorf("endpoint.repository must be set")
	}
	return nil
}

func validateQuery(q domain.QuerySettings) error {
	if q.PageSize <= 0 {
		return fmt.Errorf("query.page_size must be > 0")
	}
	switch domain.ResponseFormat(q.DefaultFormat) {
	case "", domain.FormatJSON:
	default:
		return fmt.Errorf("query.default_format must be json, got %s", q.DefaultFormat)
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	switch strings.ToLower(history.Backend) {
	case "", "sqlite", "file", "memory":
		return nil
	default:
		return fmt.Errorf("history.backend must be sqlite|file|memory, got %s", history.Backend)
	}
}

func validateServer(s domain.ServerSettings) error {
	if s.Addr == "" {
		return fmt.Errorf("server.addr must be set")
	}
	if s.GraphDBURL != "" {
		if err := validateURL("server.graphdb_url", s.GraphDBURL); err != nil {
			return err
		}
	}
	if s.TimeoutSeconds < 0 {
		return fmt.Errorf("server.timeout_seconds must be >= 0")
	}
	return nil
}
