package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/kgq/internal/infrastructure/keychain"
	"github.com/doeshing/kgq/internal/infrastructure/security"
)

func buildTestContainer(t *testing.T) *Container {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("KGQ_HISTORY_BACKEND", "memory")
	t.Setenv("KGQ_EXPORT_DIR", filepath.Join(dir, "exports"))

	c, err := BuildContainer(context.Background(), Options{
		ConfigPath:  filepath.Join(dir, "config.yaml"),
		LogWriter:   io.Discard,
		Credentials: keychain.NewWithRing(keyring.NewArrayKeyring(nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBuildContainer(t *testing.T) {
	c := buildTestContainer(t)

	assert.Equal(t, "memory", c.StorePath)
	assert.NotNil(t, c.Session)
	assert.NotNil(t, c.Doctor)
	assert.Equal(t, "kgsde-proj", c.Session.Endpoint().Repository)
	assert.Equal(t, "http://localhost:8000", c.Transport.BaseURL())
	assert.NotEmpty(t, c.Session.Samples())
	assert.Equal(t, filepath.Join(filepath.Dir(c.ConfigLoader.Path()), "exports"), c.Sink.Dir())

	guard, ok := c.Guard.(*security.Guardrail)
	require.True(t, ok)
	assert.Positive(t, guard.RuleCount())
}

func TestBuildContainerSecurityDisabled(t *testing.T) {
	t.Setenv("KGQ_SECURITY_ENABLED", "false")
	c := buildTestContainer(t)

	_, ok := c.Guard.(security.AllowAll)
	assert.True(t, ok)
}

func TestEndpointPersistsAcrossContainers(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("KGQ_HISTORY_BACKEND", "file")
	t.Setenv("KGQ_HISTORY_PATH", filepath.Join(dir, "store.json"))
	opts := Options{
		ConfigPath:  filepath.Join(dir, "config.yaml"),
		LogWriter:   io.Discard,
		Credentials: keychain.NewWithRing(keyring.NewArrayKeyring(nil)),
	}

	first, err := BuildContainer(context.Background(), opts)
	require.NoError(t, err)
	ep := first.Session.Endpoint()
	ep.Repository = "films"
	ep.Credentials.Username = "admin"
	ep.Credentials.Password = "secret"
	require.NoError(t, first.Session.UseEndpoint(ep))
	require.NoError(t, first.Close())

	// same keyring, fresh container
	opts.Credentials = first.Credentials
	second, err := BuildContainer(context.Background(), opts)
	require.NoError(t, err)
	defer second.Close()

	got := second.Session.Endpoint()
	assert.Equal(t, "films", got.Repository)
	assert.Equal(t, "admin", got.Credentials.Username)
	assert.Equal(t, "secret", got.Credentials.Password)
}

func TestConfiguredEndpointWinsOverStored(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("KGQ_HISTORY_BACKEND", "file")
	t.Setenv("KGQ_HISTORY_PATH", filepath.Join(dir, "store.json"))
	opts := Options{
		ConfigPath:  filepath.Join(dir, "config.yaml"),
		LogWriter:   io.Discard,
		Credentials: keychain.NewWithRing(keyring.NewArrayKeyring(nil)),
	}

	first, err := BuildContainer(context.Background(), opts)
	require.NoError(t, err)
	ep := first.Session.Endpoint()
	ep.Repository = "films"
	require.NoError(t, first.Session.UseEndpoint(ep))
	require.NoError(t, first.Close())

	t.Setenv("KGQ_ENDPOINT_REPOSITORY", "override")
	second, err := BuildContainer(context.Background(), opts)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, "override", second.Config.Endpoint.Repository)
	assert.Equal(t, "override", second.Session.Endpoint().Repository)
}
