package fastedge

import "fastedge.dev/hostapi"

func (i *Instance) xqd_log_endpoint_get(name_addr int32, name_size int32, addr int32) int32 {
	name, err := i.readString(name_addr, name_size)
	if err != nil {
		return XqdError
	}

	h, err := i.OpenLogEndpoint(name)
	return i.writeHandle(h, err, addr)
}

func (i *Instance) xqd_log_write(handle int32, addr int32, size int32, nwritten_out int32) int32 {
	if size < 0 {
		return XqdError
	}
	msg := make([]byte, size)
	if _, err := i.memory.ReadAt(msg, int64(addr)); err != nil {
		return XqdError
	}

	if err := i.WriteLog(hostapi.Handle(uint32(handle)), msg); err != nil {
		return xqdStatus(err)
	}

	// Write out how many bytes we copied
	i.memory.PutUint32(uint32(size), int64(nwritten_out))

	return XqdStatusOK
}
