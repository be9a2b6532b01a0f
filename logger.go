package fastedge

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"fastedge.dev/hostapi"
)

func (i *Instance) addLogger(name string, w io.Writer) *logger {
	for _, l := range i.loggers {
		if l.name == name {
			l.w = w
			return l
		}
	}

	l := &logger{name, w}
	i.loggers = append(i.loggers, l)
	return l
}

// OpenLogEndpoint resolves a log endpoint name to a fresh handle. Names that weren't registered
// with WithLogger are created on the fly through the default logger, if there is one.
func (i *Instance) OpenLogEndpoint(name string) (hostapi.Handle, error) {
	if err := i.authorize(CapabilityLogEndpoint, name); err != nil {
		return hostapi.InvalidHandle, err
	}

	i.mu.Lock()
	var l *logger
	for _, candidate := range i.loggers {
		if candidate.name == name {
			l = candidate
			break
		}
	}
	if l == nil && i.defaultLogger != nil {
		l = i.addLogger(name, i.defaultLogger(name))
	}
	i.mu.Unlock()

	if l == nil {
		return hostapi.InvalidHandle, fmt.Errorf("%s %q: %w", CapabilityLogEndpoint, name, hostapi.ErrNameNotFound)
	}

	h, err := i.logHandles.New(l)
	i.abilog.Printf("log_endpoint_get: name=%s handle=%d", name, h)
	return h, err
}

// WriteLog writes one message to the endpoint behind h.
func (i *Instance) WriteLog(h hostapi.Handle, msg []byte) error {
	i.abilog.Printf("log_write: handle=%d size=%d", h, len(msg))

	l, ok := i.logHandles.Get(h)
	if !ok {
		return fmt.Errorf("%s handle %d: %w", CapabilityLogEndpoint, h, hostapi.ErrInvalidHandle)
	}

	if _, err := l.Write(msg); err != nil {
		i.log.Printf("log endpoint %q: write failed: %v", l.name, err)
		return fmt.Errorf("%s %q: %w: %v", CapabilityLogEndpoint, l.name, hostapi.ErrHostUnavailable, err)
	}
	return nil
}

// Console writes a guest console message at the given level.
func (i *Instance) Console(level string, msg string) {
	if i.console == nil {
		return
	}
	NewPrefixWriter(level, LineWriter{i.console}).Write([]byte(msg))
}

func defaultLogger(name string) io.Writer {
	return NewPrefixWriter(name, LineWriter{os.Stdout})
}

type logger struct {
	name string
	w    io.Writer
}

func (l *logger) Write(data []byte) (int, error) {
	return l.w.Write(data)
}

// LineWriter takes a writer and returns a new writer that ensures each Write call ends with
// a newline
type LineWriter struct{ io.Writer }

// Write implements io.Writer for LineWriter
func (lw LineWriter) Write(data []byte) (int, error) {
	l := len(data)
	// Interior newlines are escaped so one write is always one line
	data = bytes.TrimRight(data, "\n")
	data = bytes.ReplaceAll(data, []byte("\n"), []byte("\\n"))

	line := make([]byte, 0, len(data)+1)
	line = append(line, data...)
	line = append(line, '\n')
	if n, err := lw.Writer.Write(line); err != nil {
		return n, err
	}

	return l, nil
}

// PrefixWriter prepends "prefix: " to every write.
type PrefixWriter struct {
	io.Writer
	prefix string
}

func (w *PrefixWriter) Write(data []byte) (n int, err error) {
	l := len(data)
	msg := make([]byte, 0, len(w.prefix)+2+len(data))
	msg = append(msg, w.prefix...)
	msg = append(msg, ": "...)
	msg = append(msg, data...)

	if n, err := w.Writer.Write(msg); err != nil {
		return n, err
	}

	return l, nil
}

func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{Writer: w, prefix: prefix}
}
