package fastedge

import (
	"errors"

	"fastedge.dev/hostapi"
)

func (i *Instance) xqd_init(abiv int64) int32 {
	i.abilog.Printf("init: abiv=%d", abiv)
	if abiv != 1 {
		return XqdErrUnsupported
	}

	return XqdStatusOK
}

// xqdStatus maps a host API error onto the status code a wasm guest expects.
//
// A missing name is not an error on this ABI: the guest gets XqdErrNone and an invalid handle.
func xqdStatus(err error) int32 {
	switch {
	case err == nil:
		return XqdStatusOK
	case errors.Is(err, hostapi.ErrNameNotFound):
		return XqdErrNone
	case errors.Is(err, hostapi.ErrCapabilityDenied):
		return XqdErrInvalidArgument
	case errors.Is(err, hostapi.ErrInvalidHandle):
		return XqdErrInvalidHandle
	case errors.Is(err, hostapi.ErrHostUnavailable):
		return XqdErrAgain
	}
	return XqdError
}

// readString copies size bytes at addr out of guest memory.
func (i *Instance) readString(addr int32, size int32) (string, error) {
	if size < 0 {
		return "", ErrOutOfBounds
	}
	buf := make([]byte, size)
	if _, err := i.memory.ReadAt(buf, int64(addr)); err != nil {
		return "", err
	}
	return string(buf), nil
}

// writeHandle reports the outcome of an open: the handle on success, HandleInvalid otherwise.
func (i *Instance) writeHandle(h hostapi.Handle, err error, addr int32) int32 {
	if err != nil {
		i.memory.PutUint32(HandleInvalid, int64(addr))
		return xqdStatus(err)
	}

	i.memory.PutUint32(uint32(h), int64(addr))
	return XqdStatusOK
}

// writeValue copies a lookup result into the guest buffer at addr. A miss writes nothing and
// reports XqdErrNone. If the buffer is too small, the required size is written to nwritten_out
// so the guest can retry with a larger one.
func (i *Instance) writeValue(v hostapi.Value, addr int32, size int32, nwritten_out int32) int32 {
	value, ok := v.Get()
	if !ok {
		i.memory.PutUint32(0, int64(nwritten_out))
		return XqdErrNone
	}

	return i.writeBytes([]byte(value), addr, size, nwritten_out)
}

func (i *Instance) writeBytes(value []byte, addr int32, size int32, nwritten_out int32) int32 {
	if len(value) > int(size) {
		i.memory.PutUint32(uint32(len(value)), int64(nwritten_out))
		return XqdErrBufferLength
	}

	nwritten, err := i.memory.WriteAt(value, int64(addr))
	if err != nil {
		return XqdError
	}

	i.memory.PutUint32(uint32(nwritten), int64(nwritten_out))
	return XqdStatusOK
}
