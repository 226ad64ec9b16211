package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultGuardYAML contains the embedded default query guard rules.
//
//go:embed defaults/guard.yaml
var DefaultGuardYAML []byte

// DefaultSamplesYAML contains the embedded sample query catalog.
//
//go:embed defaults/samples.yaml
var DefaultSamplesYAML []byte
