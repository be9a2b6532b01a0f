package fastedge

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"fastedge.dev/hostapi"
)

func TestLineWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewPrefixWriter("access", LineWriter{&buf})

	n, err := w.Write([]byte("one\ntwo\n"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Errorf("expected the original length to be reported, got %d", n)
	}
	if got := buf.String(); got != "access: one\\ntwo\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestLogEndpoints(t *testing.T) {
	var access, fallback bytes.Buffer
	i := NewInstance(
		WithLogger("access", &access),
		WithDefaultLogger(func(name string) io.Writer { return &fallback }),
	)

	h, err := i.OpenLogEndpoint("access")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := i.WriteLog(h, []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if access.String() != "hello" {
		t.Errorf("unexpected access log %q", access.String())
	}

	h, err = i.OpenLogEndpoint("other")
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	i.WriteLog(h, []byte("fallback"))
	if fallback.String() != "fallback" {
		t.Errorf("unexpected fallback log %q", fallback.String())
	}
}

func TestLogEndpointWithoutDefault(t *testing.T) {
	i := NewInstance(WithDefaultLogger(nil))

	if _, err := i.OpenLogEndpoint("missing"); !errors.Is(err, hostapi.ErrNameNotFound) {
		t.Errorf("expected ErrNameNotFound, got %v", err)
	}
	if err := i.WriteLog(7, []byte("x")); !errors.Is(err, hostapi.ErrInvalidHandle) {
		t.Errorf("expected ErrInvalidHandle, got %v", err)
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	i := NewInstance(WithConsole(&buf))
	i.Console("warn", "careful")
	if got := buf.String(); got != "warn: careful\n" {
		t.Errorf("unexpected console output %q", got)
	}

	// A nil console discards output
	NewInstance(WithConsole(nil)).Console("log", "dropped")
}
