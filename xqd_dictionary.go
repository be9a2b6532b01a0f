package fastedge

import "fastedge.dev/hostapi"

// xqd_dictionary_open opens a named dictionary and writes a fresh handle to addr.
// Returns XqdErrNone with HandleInvalid written if no dictionary has that name.
func (i *Instance) xqd_dictionary_open(name_addr int32, name_size int32, addr int32) int32 {
	name, err := i.readString(name_addr, name_size)
	if err != nil {
		return XqdError
	}

	h, err := i.OpenDictionary(name)
	return i.writeHandle(h, err, addr)
}

// xqd_dictionary_get retrieves a value from a dictionary by key.
// Reads the key from guest memory and writes the corresponding value to addr.
// Writes the number of bytes written to nwritten_out.
// Returns XqdErrInvalidHandle if the handle is invalid, XqdErrBufferLength if the buffer is too small,
// or XqdErrNone with nwritten_out=0 if the key does not exist.
func (i *Instance) xqd_dictionary_get(handle int32, key_addr int32, key_size int32, addr int32, size int32, nwritten_out int32) int32 {
	key, err := i.readString(key_addr, key_size)
	if err != nil {
		return XqdError
	}

	v, err := i.LookupDictionary(hostapi.Handle(uint32(handle)), key)
	if err != nil {
		return xqdStatus(err)
	}

	return i.writeValue(v, addr, size, nwritten_out)
}
