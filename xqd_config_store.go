package fastedge

import "fastedge.dev/hostapi"

// xqd_config_store_open opens a named config store and writes a fresh handle to addr.
func (i *Instance) xqd_config_store_open(name_addr int32, name_size int32, addr int32) int32 {
	name, err := i.readString(name_addr, name_size)
	if err != nil {
		return XqdError
	}

	h, err := i.OpenConfigStore(name)
	return i.writeHandle(h, err, addr)
}

// xqd_config_store_get behaves like xqd_dictionary_get, against a config store handle.
func (i *Instance) xqd_config_store_get(handle int32, key_addr int32, key_size int32, addr int32, size int32, nwritten_out int32) int32 {
	key, err := i.readString(key_addr, key_size)
	if err != nil {
		return XqdError
	}

	v, err := i.LookupConfigStore(hostapi.Handle(uint32(handle)), key)
	if err != nil {
		return xqdStatus(err)
	}

	return i.writeValue(v, addr, size, nwritten_out)
}
