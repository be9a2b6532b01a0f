package fastedge

import (
	"encoding/binary"
	"errors"

	"github.com/bytecodealliance/wasmtime-go"
)

// MemorySlice represents an underlying slice of memory from a wasm program.
// An implementation of MemorySlice is most often wrapped with a Memory, which provides convenience
// functions to read and write different values.
type MemorySlice interface {
	Data() []byte
	Len() int
	Cap() int
}

// ByteMemory is a MemorySlice mostly used for tests, where you want to be able to write directly into
// the memory slice and read it out
type ByteMemory []byte

// Data returns the underlying byte slice
func (m ByteMemory) Data() []byte {
	return m
}

// Len is the current length of the memory slice
func (m ByteMemory) Len() int {
	return len(m)
}

// Cap is the total capacity of the memory slice
func (m ByteMemory) Cap() int {
	return cap(m)
}

// ErrOutOfBounds is returned when a guest pointer and length fall outside of its memory.
var ErrOutOfBounds = errors.New("memory access out of bounds")

// wasmMemory is a MemorySlice implementation that wraps a wasmtime.Memory. The memory can only
// be accessed through the store that owns it.
type wasmMemory struct {
	store wasmtime.Storelike
	mem   *wasmtime.Memory
	slice []byte
}

func (m *wasmMemory) Len() int {
	return len(m.Data())
}

func (m *wasmMemory) Cap() int {
	return cap(m.Data())
}

func (m *wasmMemory) Data() []byte {
	// If we have a pre-built slice and that slice capacity is the same as the current data size,
	// return it. Otherwise, rebuild the slice.
	if m.slice != nil && cap(m.slice) == int(m.mem.DataSize(m.store)) {
		return m.slice
	}

	m.slice = m.mem.UnsafeData(m.store)
	return m.slice
}

// Memory is a wrapper around a MemorySlice that adds convenience functions for reading and writing
type Memory struct {
	MemorySlice
}

// Uint32 reads a little-endian uint32 at offset. Out of bounds reads return 0.
func (m *Memory) Uint32(offset int64) uint32 {
	if !m.inBounds(offset, 4) {
		return 0
	}
	return binary.LittleEndian.Uint32(m.Data()[offset:])
}

// PutUint32 writes v little-endian at offset. Out of bounds writes are dropped; a guest that
// passes a bad out-pointer gets nothing back.
func (m *Memory) PutUint32(v uint32, offset int64) {
	if !m.inBounds(offset, 4) {
		return
	}
	binary.LittleEndian.PutUint32(m.Data()[offset:], v)
}

// ReadAt reads len(p) bytes at offset, failing if any of them lie outside of memory.
func (m *Memory) ReadAt(p []byte, offset int64) (int, error) {
	if !m.inBounds(offset, len(p)) {
		return 0, ErrOutOfBounds
	}
	n := copy(p, m.Data()[offset:])
	return n, nil
}

// WriteAt writes p at offset, failing if any of it would land outside of memory.
func (m *Memory) WriteAt(p []byte, offset int64) (int, error) {
	if !m.inBounds(offset, len(p)) {
		return 0, ErrOutOfBounds
	}
	n := copy(m.Data()[offset:], p)
	return n, nil
}

func (m *Memory) inBounds(offset int64, size int) bool {
	return offset >= 0 && size >= 0 && offset+int64(size) <= int64(m.Len())
}
