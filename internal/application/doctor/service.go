package doctor

import (
	"context"
	"errors"
	"fmt"

	appconfig "github.com/doeshing/kgq/internal/application/config"
	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/ports"
)

// Prober runs the proxy liveness query.
type Prober interface {
	TestConnection(ctx context.Context, endpoint domain.Endpoint) domain.ProbeResult
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider  ports.ConfigProvider
	Storage         ports.KeyValueStore
	StorageLocation string
	Credentials     ports.CredentialStore
	Catalog         ports.SampleCatalog
	Guard           ports.QueryGuard
	Prober          Prober
}

// Run executes checks and returns a report. Only a config load failure
// aborts the run; every other problem is recorded as a check.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, warn("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("loaded version %s", cfg.ConfigFormatVersion)))
	}

	checks = append(checks, s.storageCheck())

	endpoint := cfg.DefaultEndpoint()
	checks = append(checks, s.credentialCheck(endpoint))

	if s.Catalog != nil {
		checks = append(checks, ok("Sample catalog", fmt.Sprintf("%d samples", len(s.Catalog.Samples()))))
	} else {
		checks = append(checks, warn("Sample catalog", "not loaded"))
	}

	if !cfg.Security.Enabled {
		checks = append(checks, warn("Query guard", "disabled"))
	} else if s.Guard != nil {
		if _, err := s.Guard.Evaluate(domain.ProbeQuery); err != nil {
			checks = append(checks, fail("Query guard", err.Error()))
		} else {
			checks = append(checks, ok("Query guard", guardDetails(s.Guard)))
		}
	} else {
		checks = append(checks, warn("Query guard", "not initialized"))
	}

	if s.Prober != nil {
		checks = append(checks, s.proxyCheck(ctx, cfg, endpoint))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func guardDetails(guard ports.QueryGuard) string {
	if counter, isCounter := guard.(interface{ RuleCount() int }); isCounter {
		return fmt.Sprintf("%d rules loaded", counter.RuleCount())
	}
	return "rules loaded"
}

func (s *Service) storageCheck() domain.HealthCheck {
	if s.Storage == nil {
		return fail("History storage", "not configured")
	}
	if _, err := s.Storage.Get(domain.HistoryStorageKey, nil); err != nil {
		return fail("History storage", fmt.Sprintf("%s: %v", s.StorageLocation, err))
	}
	if lister, isLister := s.Storage.(interface{ Keys() ([]string, error) }); isLister {
		if keys, err := lister.Keys(); err == nil {
			return ok("History storage", fmt.Sprintf("%s (%d keys)", s.StorageLocation, len(keys)))
		}
	}
	return ok("History storage", s.StorageLocation)
}

func (s *Service) credentialCheck(endpoint domain.Endpoint) domain.HealthCheck {
	if s.Credentials == nil {
		return warn("Credential store", "unavailable; passwords are read from the environment only")
	}
	if endpoint.Credentials.Username == "" {
		return ok("Credential store", "available (anonymous endpoint)")
	}
	_, err := s.Credentials.LoadPassword(endpoint.Key())
	switch {
	case err == nil:
		return ok("Credential store", "password stored for "+endpoint.Key())
	case errors.Is(err, domain.ErrNoCredential):
		if endpoint.Credentials.Password != "" {
			return ok("Credential store", "password taken from environment")
		}
		return warn("Credential store", "no password for "+endpoint.Key())
	default:
		return fail("Credential store", err.Error())
	}
}

func (s *Service) proxyCheck(ctx context.Context, cfg domain.Config, endpoint domain.Endpoint) domain.HealthCheck {
	probe := s.Prober.TestConnection(ctx, endpoint)
	name := "Proxy " + cfg.Proxy.URL
	if !probe.Outcome.Success {
		return fail(name, fmt.Sprintf("%s (%dms)", probe.Message, probe.Outcome.ElapsedMs))
	}
	return ok(name, fmt.Sprintf("%s (%dms)", probe.Message, probe.Outcome.ElapsedMs))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
