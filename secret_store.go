package fastedge

import (
	"fmt"

	"fastedge.dev/hostapi"
)

// SecretLookupFunc retrieves a secret's plaintext by name from a secret store, and whether it
// was found.
type SecretLookupFunc func(key string) ([]byte, bool)

// MapSecrets returns a SecretLookupFunc backed by a plain map.
func MapSecrets(m map[string]string) SecretLookupFunc {
	return func(key string) ([]byte, bool) {
		v, ok := m[key]
		if !ok {
			return nil, false
		}
		return []byte(v), true
	}
}

type secretStore struct {
	name   string
	lookup SecretLookupFunc
}

func (i *Instance) addSecretStore(name string, lookup SecretLookupFunc) {
	for _, s := range i.secretStores {
		if s.name == name {
			s.lookup = lookup
			return
		}
	}
	i.secretStores = append(i.secretStores, &secretStore{name: name, lookup: lookup})
}

// OpenSecretStore resolves a secret store name to a fresh handle.
func (i *Instance) OpenSecretStore(name string) (hostapi.Handle, error) {
	if err := i.authorize(CapabilitySecretStore, name); err != nil {
		return hostapi.InvalidHandle, err
	}

	for _, s := range i.secretStores {
		if s.name == name {
			h, err := i.secretStoreHandles.New(s)
			i.abilog.Printf("secret_store_open: name=%s handle=%d", name, h)
			return h, err
		}
	}

	i.abilog.Printf("secret_store_open: store '%s' not found", name)
	return hostapi.InvalidHandle, fmt.Errorf("%s %q: %w", CapabilitySecretStore, name, hostapi.ErrNameNotFound)
}

// LookupSecret finds key in the store behind h and issues a handle to its plaintext.
func (i *Instance) LookupSecret(h hostapi.Handle, key string) (hostapi.Maybe[hostapi.Handle], error) {
	store, ok := i.secretStoreHandles.Get(h)
	if !ok {
		return hostapi.None[hostapi.Handle](), fmt.Errorf("%s handle %d: %w", CapabilitySecretStore, h, hostapi.ErrInvalidHandle)
	}

	plaintext, found := store.lookup(key)
	i.abilog.Printf("secret_store_get: store_handle=%d key=%s found=%t", h, key, found)
	if !found {
		return hostapi.None[hostapi.Handle](), nil
	}

	secret, err := i.newSecret(plaintext)
	if err != nil {
		return hostapi.None[hostapi.Handle](), err
	}
	return hostapi.Some(secret), nil
}

// SecretPlaintext returns the bytes behind a secret handle.
func (i *Instance) SecretPlaintext(h hostapi.Handle) ([]byte, error) {
	secret, ok := i.secretHandles.Get(h)
	if !ok {
		return nil, fmt.Errorf("secret handle %d: %w", h, hostapi.ErrInvalidHandle)
	}
	return secret.Plaintext(), nil
}

// newSecret issues a handle for plaintext that may not belong to any store.
func (i *Instance) newSecret(plaintext []byte) (hostapi.Handle, error) {
	return i.secretHandles.New(&Secret{plaintext: plaintext})
}
