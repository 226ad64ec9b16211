// Package keychain stores endpoint passwords in the OS credential store.
package keychain

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/99designs/keyring"

	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/ports"
)

// ServiceName identifies our keychain namespace.
const ServiceName = "kgq"

const passwordPrefix = "endpoint_password:"

// ErrNotFound is returned when no password is stored for an endpoint.
var ErrNotFound = domain.ErrNoCredential

// Manager implements ports.CredentialStore on a keyring.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// Open opens the native keyring for the current platform.
func Open() (*Manager, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:              ServiceName,
		AllowedBackends:          allowedBackends(),
		KeychainTrustApplication: true,
		PassPrefix:               ServiceName,
		WinCredPrefix:            ServiceName,
		LibSecretCollectionName:  ServiceName,
		KWalletAppID:             ServiceName,
		KWalletFolder:            ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return &Manager{ring: ring}, nil
}

// NewWithRing wraps an existing keyring, e.g. keyring.NewArrayKeyring in tests.
func NewWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

func allowedBackends() []keyring.BackendType {
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend}
	default:
		return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	}
}

// SavePassword stores the password for an endpoint key.
func (m *Manager) SavePassword(endpointKey, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{
		Key:         passwordPrefix + endpointKey,
		Data:        []byte(password),
		Label:       "kgq " + endpointKey,
		Description: "SPARQL endpoint password",
	})
}

// LoadPassword returns ErrNotFound when nothing is stored.
func (m *Manager) LoadPassword(endpointKey string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, err := m.ring.Get(passwordPrefix + endpointKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if len(item.Data) == 0 {
		return "", ErrNotFound
	}
	return string(item.Data), nil
}

// ClearPassword removes a stored password. Missing entries are not an error.
func (m *Manager) ClearPassword(endpointKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.ring.Remove(passwordPrefix + endpointKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// Endpoints lists the endpoint keys that have a stored password.
func (m *Manager) Endpoints() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys, err := m.ring.Keys()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		if len(k) > len(passwordPrefix) && k[:len(passwordPrefix)] == passwordPrefix {
			out = append(out, k[len(passwordPrefix):])
		}
	}
	return out, nil
}

var _ ports.CredentialStore = (*Manager)(nil)
