package fastedge

import "fastedge.dev/hostapi"

func (i *Instance) addConfigStore(name string, fn LookupFunc) {
	i.configStores = addLookup(i.configStores, name, fn)
}

// OpenConfigStore resolves a config store name to a fresh handle.
func (i *Instance) OpenConfigStore(name string) (hostapi.Handle, error) {
	h, err := i.openLookup(CapabilityConfigStore, name, i.configStores, &i.configStoreHandles)
	i.abilog.Printf("config_store_open: name=%s handle=%d err=%v", name, h, err)
	return h, err
}

// LookupConfigStore reads key from the config store behind h.
func (i *Instance) LookupConfigStore(h hostapi.Handle, key string) (hostapi.Value, error) {
	v, err := i.lookup(CapabilityConfigStore, &i.configStoreHandles, h, key)
	i.abilog.Printf("config_store_get: handle=%d key=%s found=%t err=%v", h, key, !v.IsAbsent(), err)
	return v, err
}
