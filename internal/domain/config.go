package domain

// Config mirrors ~/.kgq/config.yaml.
type Config struct {
	ConfigFormatVersion string           `koanf:"config_format_version" yaml:"config_format_version" json:"config_format_version"`
	Proxy               ProxySettings    `koanf:"proxy" yaml:"proxy" json:"proxy"`
	Endpoint            EndpointSettings `koanf:"endpoint" yaml:"endpoint" json:"endpoint"`
	Query               QuerySettings    `koanf:"query" yaml:"query" json:"query"`
	History             HistorySettings  `koanf:"history" yaml:"history" json:"history"`
	Export              ExportSettings   `koanf:"export" yaml:"export" json:"export"`
	Security            SecuritySettings `koanf:"security" yaml:"security" json:"security"`
	Samples             SampleSettings   `koanf:"samples" yaml:"samples" json:"samples"`
	Server              ServerSettings   `koanf:"server" yaml:"server" json:"server"`
	Output              OutputSettings   `koanf:"output" yaml:"output" json:"output"`
}

// ProxySettings locates the query proxy the client talks to.
type ProxySettings struct {
	URL            string `koanf:"url" yaml:"url" json:"url"`
	TimeoutSeconds int    `koanf:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
}

// EndpointSettings names the store and repository queries run against.
// Passwords are never written here; see PasswordEnv and the credential store.
type EndpointSettings struct {
	URL         string `koanf:"url" yaml:"url" json:"url"`
	Repository  string `koanf:"repository" yaml:"repository" json:"repository"`
	Username    string `koanf:"username" yaml:"username" json:"username"`
	PasswordEnv string `koanf:"password_env" yaml:"password_env" json:"password_env"`
}

// QuerySettings controls validation and paging.
type QuerySettings struct {
	DefaultFormat    string `koanf:"default_format" yaml:"default_format" json:"default_format"`
	StrictValidation bool   `koanf:"strict_validation" yaml:"strict_validation" json:"strict_validation"`
	PageSize         int    `koanf:"page_size" yaml:"page_size" json:"page_size"`
}

// HistorySettings selects the persistent key-value backend.
type HistorySettings struct {
	Backend string `koanf:"backend" yaml:"backend" json:"backend"`
	Path    string `koanf:"path" yaml:"path" json:"path"`
}

// ExportSettings configures the export directory sink.
type ExportSettings struct {
	Dir          string `koanf:"dir" yaml:"dir" json:"dir"`
	MaxArtifacts int    `koanf:"max_artifacts" yaml:"max_artifacts" json:"max_artifacts"`
}

// SecuritySettings defines guard behavior.
type SecuritySettings struct {
	Enabled   bool   `koanf:"enabled" yaml:"enabled" json:"enabled"`
	RulesFile string `koanf:"rules_file" yaml:"rules_file" json:"rules_file"`
}

// SampleSettings points at an optional sample catalog file.
type SampleSettings struct {
	File string `koanf:"file" yaml:"file" json:"file"`
}

// ServerSettings configures `kgq serve`.
type ServerSettings struct {
	Addr           string `koanf:"addr" yaml:"addr" json:"addr"`
	GraphDBURL     string `koanf:"graphdb_url" yaml:"graphdb_url" json:"graphdb_url"`
	Repository     string `koanf:"repository" yaml:"repository" json:"repository"`
	TimeoutSeconds int    `koanf:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
}

// OutputSettings selects how results are printed.
type OutputSettings struct {
	Format string `koanf:"format" yaml:"format" json:"format"`
}
