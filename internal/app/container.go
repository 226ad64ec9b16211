package app

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/doeshing/kgq/internal/application/doctor"
	"github.com/doeshing/kgq/internal/application/export"
	"github.com/doeshing/kgq/internal/application/history"
	"github.com/doeshing/kgq/internal/application/pagination"
	"github.com/doeshing/kgq/internal/application/query"
	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/infrastructure/catalog"
	"github.com/doeshing/kgq/internal/infrastructure/config"
	exportsink "github.com/doeshing/kgq/internal/infrastructure/export"
	"github.com/doeshing/kgq/internal/infrastructure/keychain"
	"github.com/doeshing/kgq/internal/infrastructure/proxy"
	"github.com/doeshing/kgq/internal/infrastructure/security"
	"github.com/doeshing/kgq/internal/infrastructure/storage"
	"github.com/doeshing/kgq/internal/pkg/filesystem"
	"github.com/doeshing/kgq/internal/pkg/logger"
	"github.com/doeshing/kgq/internal/ports"
)

// Options controls how the container is built.
type Options struct {
	ConfigPath string
	Flags      *pflag.FlagSet
	Verbose    bool
	LogWriter  io.Writer
	Prompter   ports.ConfirmationPrompter
	// Credentials overrides the OS keyring, e.g. keyring.NewArrayKeyring in tests.
	Credentials ports.CredentialStore
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config       domain.Config
	ConfigLoader *config.Loader
	Logger       *logger.SlogLogger

	Store       storage.Store
	StorePath   string
	Credentials ports.CredentialStore
	Catalog     *catalog.Catalog
	Guard       ports.QueryGuard

	Transport *proxy.HTTPTransport
	Client    *query.Client
	History   *history.Store
	Exporter  *export.Engine
	Sink      *exportsink.DirSink
	Session   *query.Session
	Doctor    *doctor.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	w := opts.LogWriter
	if w == nil {
		w = os.Stderr
	}
	log := logger.New(w, opts.Verbose)

	cfgLoader := config.NewLoader(opts.ConfigPath, opts.Flags)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	store, storePath, err := storage.Open(cfg.History, log)
	if err != nil {
		return nil, err
	}

	creds := opts.Credentials
	if creds == nil {
		if manager, err := keychain.Open(); err == nil {
			creds = manager
		} else {
			log.Warn("credential store unavailable", map[string]interface{}{"error": err.Error()})
		}
	}

	samples, err := catalog.Load(cfg.Samples.File)
	if err != nil {
		log.Warn("sample catalog unreadable, using built-in samples", map[string]interface{}{
			"file":  cfg.Samples.File,
			"error": err.Error(),
		})
		samples = catalog.Default()
	}

	var guard ports.QueryGuard = security.AllowAll{}
	if cfg.Security.Enabled {
		guardrail, err := security.NewGuardrail(cfg.Security.RulesFile)
		if err != nil {
			log.Warn("guard rules invalid, using built-in rules", map[string]interface{}{
				"file":  cfg.Security.RulesFile,
				"error": err.Error(),
			})
			if guardrail, err = security.NewGuardrail(""); err != nil {
				return nil, err
			}
		}
		guard = guardrail
	}

	transport := proxy.NewHTTPTransport(cfg.Proxy.URL, cfg.RequestTimeout(), log)
	client := &query.Client{
		Transport: transport,
		Guard:     guard,
		Prompter:  opts.Prompter,
		Logger:    log,
		Strict:    cfg.Query.StrictValidation,
	}

	historyStore := history.New(store, log)
	engine := export.NewEngine()
	exportDir := filesystem.ExpandPath(cfg.Export.Dir)
	if exportDir == "" {
		exportDir = filesystem.AppDir("exports")
	}
	sink := exportsink.NewDirSink(exportDir, cfg.Export.MaxArtifacts)

	session, err := query.NewSession(query.SessionDeps{
		Client:    client,
		History:   historyStore,
		Pages:     pagination.New(cfg.PageSize()),
		Exporter:  engine,
		Sink:      sink,
		Catalog:   samples,
		Endpoints: &query.EndpointStore{KV: store, Credentials: creds, Logger: log},
		Endpoint:  cfg.DefaultEndpoint(),
		Format:    cfg.ResponseFormat(),
		Logger:    log,

		EndpointPinned: cfgLoader.EndpointPinned(),
	})
	if err != nil {
		return nil, err
	}

	doctorService := &doctor.Service{
		ConfigProvider:  cfgLoader,
		Storage:         store,
		StorageLocation: storePath,
		Credentials:     creds,
		Catalog:         samples,
		Guard:           guard,
		Prober:          client,
	}

	return &Container{
		Config:       cfg,
		ConfigLoader: cfgLoader,
		Logger:       log,
		Store:        store,
		StorePath:    storePath,
		Credentials:  creds,
		Catalog:      samples,
		Guard:        guard,
		Transport:    transport,
		Client:       client,
		History:      historyStore,
		Exporter:     engine,
		Sink:         sink,
		Session:      session,
		Doctor:       doctorService,
	}, nil
}

// Close releases the storage backend.
func (c *Container) Close() error {
	if c == nil || c.Store == nil {
		return nil
	}
	if closer, ok := c.Store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ErrNotBuilt is returned by commands that run before the container exists.
var ErrNotBuilt = errors.New("application container not initialized")
