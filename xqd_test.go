package fastedge

import (
	"testing"

	"fastedge.dev/hostapi"
)

// abiInstance returns an instance backed by plain byte memory, with name written at offset 0.
func abiInstance(opts ...Option) *Instance {
	i := NewInstance(opts...)
	i.memory = &Memory{make(ByteMemory, 1024)}
	return i
}

func (i *Instance) put(s string, addr int32) int32 {
	i.memory.WriteAt([]byte(s), int64(addr))
	return int32(len(s))
}

func TestXqdDictionary(t *testing.T) {
	i := abiInstance(WithDictionary("colors", MapLookup(map[string]string{"color": "blue"})))

	const handleOut, keyAt, valueAt, nwrittenOut = 100, 200, 300, 400

	n := i.put("colors", 0)
	if status := i.xqd_dictionary_open(0, n, handleOut); status != XqdStatusOK {
		t.Fatalf("open: status %d", status)
	}
	handle := int32(i.memory.Uint32(handleOut))

	keyLen := i.put("color", keyAt)
	if status := i.xqd_dictionary_get(handle, keyAt, keyLen, valueAt, 64, nwrittenOut); status != XqdStatusOK {
		t.Fatalf("get: status %d", status)
	}
	nwritten := i.memory.Uint32(nwrittenOut)
	if got := string(i.memory.Data()[valueAt : valueAt+nwritten]); got != "blue" {
		t.Errorf("expected blue, got %q", got)
	}

	// Too small a buffer reports the size it needs
	if status := i.xqd_dictionary_get(handle, keyAt, keyLen, valueAt, 2, nwrittenOut); status != XqdErrBufferLength {
		t.Errorf("expected XqdErrBufferLength, got %d", status)
	}
	if got := i.memory.Uint32(nwrittenOut); got != 4 {
		t.Errorf("expected required size 4, got %d", got)
	}

	keyLen = i.put("nope", keyAt)
	if status := i.xqd_dictionary_get(handle, keyAt, keyLen, valueAt, 64, nwrittenOut); status != XqdErrNone {
		t.Errorf("expected XqdErrNone for a miss, got %d", status)
	}
	if got := i.memory.Uint32(nwrittenOut); got != 0 {
		t.Errorf("expected nothing written for a miss, got %d", got)
	}

	if status := i.xqd_dictionary_get(77, keyAt, keyLen, valueAt, 64, nwrittenOut); status != XqdErrInvalidHandle {
		t.Errorf("expected XqdErrInvalidHandle, got %d", status)
	}

	n = i.put("unknown", 0)
	if status := i.xqd_dictionary_open(0, n, handleOut); status != XqdErrNone {
		t.Errorf("expected XqdErrNone for an unknown name, got %d", status)
	}
	if got := i.memory.Uint32(handleOut); got != HandleInvalid {
		t.Errorf("expected HandleInvalid, got %d", got)
	}

	// Pointers outside of memory are errors, not panics
	if status := i.xqd_dictionary_open(1020, 64, handleOut); status != XqdError {
		t.Errorf("expected XqdError, got %d", status)
	}
}

func TestXqdStatusMapping(t *testing.T) {
	i := abiInstance(
		WithConfigStore("settings", MapLookup(map[string]string{"mode": "fast"})),
		WithDeniedCapability(CapabilityConfigStore, "settings"),
	)

	n := i.put("settings", 0)
	if status := i.xqd_config_store_open(0, n, 100); status != XqdErrInvalidArgument {
		t.Errorf("expected XqdErrInvalidArgument for a denied store, got %d", status)
	}

	i = abiInstance(WithConfigStore("settings", MapLookup(map[string]string{"mode": "fast"})))
	i.Close()
	n = i.put("settings", 0)
	if status := i.xqd_config_store_open(0, n, 100); status != XqdErrAgain {
		t.Errorf("expected XqdErrAgain on a closed instance, got %d", status)
	}
}

func TestXqdSecretStore(t *testing.T) {
	i := abiInstance(WithSecretStore("vault", MapSecrets(map[string]string{"api_key": "s3cr3t"})))

	n := i.put("vault", 0)
	if status := i.xqd_secret_store_open(0, n, 100); status != XqdStatusOK {
		t.Fatalf("open: status %d", status)
	}
	store := int32(i.memory.Uint32(100))

	n = i.put("api_key", 200)
	if status := i.xqd_secret_store_get(store, 200, n, 104); status != XqdStatusOK {
		t.Fatalf("get: status %d", status)
	}
	secret := int32(i.memory.Uint32(104))

	if status := i.xqd_secret_store_plaintext(secret, 300, 64, 400); status != XqdStatusOK {
		t.Fatalf("plaintext: status %d", status)
	}
	if got := string(i.memory.Data()[300 : 300+i.memory.Uint32(400)]); got != "s3cr3t" {
		t.Errorf("expected s3cr3t, got %q", got)
	}

	n = i.put("injected", 500)
	if status := i.xqd_secret_store_from_bytes(500, n, 108); status != XqdStatusOK {
		t.Fatalf("from_bytes: status %d", status)
	}
	plaintext, err := i.SecretPlaintext(hostapi.Handle(i.memory.Uint32(108)))
	if err != nil || string(plaintext) != "injected" {
		t.Errorf("expected injected, got %q, %v", plaintext, err)
	}

	n = i.put("missing", 200)
	if status := i.xqd_secret_store_get(store, 200, n, 104); status != XqdErrNone {
		t.Errorf("expected XqdErrNone, got %d", status)
	}
}

func TestXqdLog(t *testing.T) {
	var lines []string
	i := abiInstance(WithLogger("access", writerFunc(func(p []byte) (int, error) {
		lines = append(lines, string(p))
		return len(p), nil
	})))

	n := i.put("access", 0)
	if status := i.xqd_log_endpoint_get(0, n, 100); status != XqdStatusOK {
		t.Fatalf("endpoint_get: status %d", status)
	}

	n = i.put("hello", 200)
	if status := i.xqd_log_write(int32(i.memory.Uint32(100)), 200, n, 104); status != XqdStatusOK {
		t.Fatalf("write: status %d", status)
	}
	if i.memory.Uint32(104) != 5 || len(lines) != 1 || lines[0] != "hello" {
		t.Errorf("unexpected log output %v", lines)
	}
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func TestMemoryBounds(t *testing.T) {
	m := &Memory{make(ByteMemory, 8)}
	m.PutUint32(7, 4)

	if got := m.Uint32(4); got != 7 {
		t.Errorf("expected 7 at offset 4, got %d", got)
	}
	for _, offset := range []int64{-1, 5, 8, 1 << 40} {
		if got := m.Uint32(offset); got != 0 {
			t.Errorf("expected out of bounds read at %d to return 0, got %d", offset, got)
		}
	}
	if _, err := m.ReadAt(make([]byte, 4), 6); err != ErrOutOfBounds {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}
