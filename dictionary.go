package fastedge

import (
	"errors"
	"fmt"

	"fastedge.dev/hostapi"
)

// LookupFunc retrieves a value by key from a dictionary or config store. found is false when the
// key has no value. A non-nil error means the backing source could not be consulted at all; it
// surfaces to the guest as a host error, never as a miss.
type LookupFunc func(key string) (value string, found bool, err error)

// MapLookup returns a LookupFunc backed by a plain map. The map is not copied.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool, error) {
		v, ok := m[key]
		return v, ok, nil
	}
}

// namedLookup is a registered dictionary or config store.
type namedLookup struct {
	name string
	get  LookupFunc
}

// addLookup registers fn under name, replacing any earlier registration with the same name.
func addLookup(stores []*namedLookup, name string, fn LookupFunc) []*namedLookup {
	for _, s := range stores {
		if s.name == name {
			s.get = fn
			return stores
		}
	}
	return append(stores, &namedLookup{name: name, get: fn})
}

func (i *Instance) addDictionary(name string, fn LookupFunc) {
	i.dictionaries = addLookup(i.dictionaries, name, fn)
}

// OpenDictionary resolves a dictionary name to a fresh handle.
func (i *Instance) OpenDictionary(name string) (hostapi.Handle, error) {
	h, err := i.openLookup(CapabilityDictionary, name, i.dictionaries, &i.dictionaryHandles)
	i.abilog.Printf("dictionary_open: name=%s handle=%d err=%v", name, h, err)
	return h, err
}

// LookupDictionary reads key from the dictionary behind h.
func (i *Instance) LookupDictionary(h hostapi.Handle, key string) (hostapi.Value, error) {
	v, err := i.lookup(CapabilityDictionary, &i.dictionaryHandles, h, key)
	i.abilog.Printf("dictionary_get: handle=%d key=%s found=%t err=%v", h, key, !v.IsAbsent(), err)
	return v, err
}

func (i *Instance) openLookup(kind Capability, name string, stores []*namedLookup, handles *handleTable[*namedLookup]) (hostapi.Handle, error) {
	if err := i.authorize(kind, name); err != nil {
		return hostapi.InvalidHandle, err
	}

	for _, s := range stores {
		if s.name == name {
			return handles.New(s)
		}
	}

	return hostapi.InvalidHandle, fmt.Errorf("%s %q: %w", kind, name, hostapi.ErrNameNotFound)
}

func (i *Instance) lookup(kind Capability, handles *handleTable[*namedLookup], h hostapi.Handle, key string) (hostapi.Value, error) {
	store, ok := handles.Get(h)
	if !ok {
		return hostapi.None[string](), fmt.Errorf("%s handle %d: %w", kind, h, hostapi.ErrInvalidHandle)
	}

	v, found, err := store.get(key)
	if err != nil {
		i.log.Printf("%s %q: lookup failed: %v", kind, store.name, err)
		if errors.Is(err, hostapi.ErrHostUnavailable) {
			return hostapi.None[string](), fmt.Errorf("%s %q: %w", kind, store.name, err)
		}
		return hostapi.None[string](), fmt.Errorf("%s %q: %w: %v", kind, store.name, hostapi.ErrHostUnavailable, err)
	}
	if !found {
		return hostapi.None[string](), nil
	}
	return hostapi.Some(v), nil
}
