package query

import (
	"encoding/json"
	"strings"

	"github.com/doeshing/kgq/internal/domain"
	"github.com/doeshing/kgq/internal/ports"
)

// EndpointStore persists the last-used endpoint under a fixed key. The
// password is never written; it is resolved from Credentials on load.
type EndpointStore struct {
	KV          ports.KeyValueStore
	Credentials ports.CredentialStore
	Logger      ports.Logger
}

// Load returns the persisted endpoint, or def when none is stored or the
// stored value cannot be read.
func (e *EndpointStore) Load(def domain.Endpoint) domain.Endpoint {
	ep := def
	if e.KV != nil {
		data, err := e.KV.Get(domain.EndpointStorageKey, nil)
		switch {
		case err != nil:
			e.warn("endpoint read failed", err)
		case len(data) > 0:
			var stored domain.Endpoint
			if err := json.Unmarshal(data, &stored); err != nil {
				e.warn("endpoint payload corrupt", err)
			} else if strings.TrimSpace(stored.URL) != "" {
				ep = stored
				if ep.Credentials.Username == def.Credentials.Username {
					ep.Credentials.Password = def.Credentials.Password
				}
			}
		}
	}
	return e.Resolve(ep)
}

// Save stores ep without its password. A non-empty password is handed to
// the credential store.
func (e *EndpointStore) Save(ep domain.Endpoint) error {
	if e.Credentials != nil && ep.Credentials.Username != "" && ep.Credentials.Password != "" {
		if err := e.Credentials.SavePassword(ep.Key(), ep.Credentials.Password); err != nil {
			e.warn("credential save failed", err)
		}
	}
	if e.KV == nil {
		return nil
	}
	data, err := json.Marshal(ep)
	if err != nil {
		return err
	}
	return e.KV.Set(domain.EndpointStorageKey, data)
}

// Resolve fills in a missing password from the credential store.
func (e *EndpointStore) Resolve(ep domain.Endpoint) domain.Endpoint {
	if ep.Credentials.Username == "" || ep.Credentials.Password != "" || e.Credentials == nil {
		return ep
	}
	pw, err := e.Credentials.LoadPassword(ep.Key())
	if err != nil {
		e.debug("no stored password", map[string]interface{}{"endpoint": ep.Key()})
		return ep
	}
	ep.Credentials.Password = pw
	return ep
}

func (e *EndpointStore) warn(msg string, err error) {
	if e.Logger != nil {
		e.Logger.Warn(msg, map[string]interface{}{"error": err.Error()})
	}
}

func (e *EndpointStore) debug(msg string, fields map[string]interface{}) {
	if e.Logger != nil {
		e.Logger.Debug(msg, fields)
	}
}
