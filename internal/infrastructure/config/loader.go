// Package config loads ~/.kgq/config.yaml layered with environment and flags.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/doeshing/kgq/assets"
	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/pkg/filesystem"
	"github.com/doeshing/kgq/internal/ports"
)

// EnvPrefix prefixes every configuration environment variable.
const EnvPrefix = "KGQ_"

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "KGQ_CONFIG"

// flagKeys maps persistent CLI flags onto config keys.
var flagKeys = map[string]string{
	"proxy":      "proxy.url",
	"endpoint":   "endpoint.url",
	"repository": "endpoint.repository",
	"username":   "endpoint.username",
	"page-size":  "query.page_size",
	"strict":     "query.strict_validation",
	"output":     "output.format",
	"history":    "history.backend",
}

// Loader resolves configuration from, lowest to highest precedence:
// embedded defaults, the YAML file, KGQ_* environment variables, flags.
type Loader struct {
	overridePath string
	flags        *pflag.FlagSet
	k            *koanf.Koanf
}

// NewLoader builds a loader. path and flags may be empty.
func NewLoader(path string, flags *pflag.FlagSet) *Loader {
	return &Loader{overridePath: path, flags: flags}
}

// Path returns the config file location.
func (l *Loader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filesystem.AppDir("config.yaml")
}

// Load implements ports.ConfigProvider. A missing file is created with defaults.
func (l *Loader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := ensureFile(path); err != nil {
		return domain.Config{}, err
	}

	k, err := l.layers(path, true)
	if err != nil {
		return domain.Config{}, err
	}
	l.k = k

	var cfg domain.Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return hydrateDefaults(cfg), nil
}

func (l *Loader) layers(path string, overrides bool) (*koanf.Koanf, error) {
	k := koanf.New(".")

	defaults, err := yaml.Parser().Unmarshal(assets.DefaultConfigYAML)
	if err != nil {
		return nil, fmt.Errorf("parse default config: %w", err)
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	if !overrides {
		return k, nil
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return envKey(k, s)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if l.flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(l.flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(l.flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}
	return k, nil
}

// envKey maps KGQ_ENDPOINT_URL to endpoint.url. Variables that do not name a
// known key (KGQ_CONFIG, KGQ_DEBUG, KGQ_PASSWORD) are ignored.
func envKey(k *koanf.Koanf, name string) string {
	rest := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	section, field, ok := strings.Cut(rest, "_")
	if !ok {
		return ""
	}
	key := section + "." + field
	if !k.Exists(key) {
		return ""
	}
	return key
}

// Get returns the effective value of a dotted key from the last Load.
func (l *Loader) Get(ctx context.Context, key string) (interface{}, error) {
	if l.k == nil {
		if _, err := l.Load(ctx); err != nil {
			return nil, err
		}
	}
	if !l.k.Exists(key) {
		return nil, fmt.Errorf("unknown config key %q", key)
	}
	return l.k.Get(key), nil
}

// Keys lists every known dotted key.
func (l *Loader) Keys() []string {
	keys := defaultLayer().Keys()
	sort.Strings(keys)
	return keys
}

// endpointKeys select the store a session talks to.
var endpointKeys = []string{"endpoint.url", "endpoint.repository", "endpoint.username"}

// EndpointPinned reports whether the last Load resolved an endpoint that
// differs from the embedded default, i.e. the file, the environment or a
// flag chose one.
func (l *Loader) EndpointPinned() bool {
	if l.k == nil {
		return false
	}
	defaults := defaultLayer()
	for _, key := range endpointKeys {
		if fmt.Sprint(l.k.Get(key)) != fmt.Sprint(defaults.Get(key)) {
			return true
		}
	}
	return false
}

func defaultLayer() *koanf.Koanf {
	k := koanf.New(".")
	defaults, err := yaml.Parser().Unmarshal(assets.DefaultConfigYAML)
	if err == nil {
		_ = k.Load(confmap.Provider(defaults, "."), nil)
	}
	return k
}

// Set writes one key to the config file. Environment and flag overrides are
// not persisted. The value is parsed as YAML so "true" and "50" keep their types.
func (l *Loader) Set(key, value string) error {
	path := l.Path()
	if err := ensureFile(path); err != nil {
		return err
	}
	k, err := l.layers(path, false)
	if err != nil {
		return err
	}
	if !k.Exists(key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	var parsed interface{}
	if err := yamlv3.Unmarshal([]byte(value), &parsed); err != nil || parsed == nil {
		parsed = value
	}
	if _, isMap := k.Get(key).(map[string]interface{}); isMap {
		return fmt.Errorf("config key %q is a section", key)
	}
	if err := k.Set(key, parsed); err != nil {
		return err
	}

	var cfg domain.Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	l.k = nil
	return l.Save(cfg)
}

// Save writes cfg to the config file.
func (l *Loader) Save(cfg domain.Config) error {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return err
	}
	raw, err := yamlv3.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// Reset overwrites the config file with the embedded defaults.
func (l *Loader) Reset() error {
	l.k = nil
	return writeDefault(l.Path())
}

// Default returns the embedded default configuration.
func Default() domain.Config {
	var cfg domain.Config
	_ = yamlv3.Unmarshal(assets.DefaultConfigYAML, &cfg)
	return hydrateDefaults(cfg)
}

func ensureFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return writeDefault(path)
		}
		return err
	}
	return nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return err
	}
	return os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Proxy.URL == "" {
		cfg.Proxy.URL = domain.DefaultProxyURL
	}
	if cfg.Proxy.TimeoutSeconds <= 0 {
		cfg.Proxy.TimeoutSeconds = int(domain.DefaultRequestTimeout.Seconds())
	}
	if cfg.Query.PageSize <= 0 {
		cfg.Query.PageSize = domain.DefaultPageSize
	}
	if cfg.Export.MaxArtifacts == 0 {
		cfg.Export.MaxArtifacts = domain.DefaultMaxArtifacts
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = domain.DefaultServerAddr
	}
	return cfg
}

var _ ports.ConfigProvider = (*Loader)(nil)
