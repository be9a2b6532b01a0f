package fastedge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
)

// ErrNoScript is returned when running an instance that has no guest script attached, such as
// one backing a wasm guest.
var ErrNoScript = errors.New("instance has no script")

// Instance is the host side of one guest: the registered stores, the handles the guest has
// been issued, and the script engine the guest runs in. It implements every capability in
// fastedge.dev/hostapi.
//
// An Instance serves one guest. Close it when the guest is done; every handle it issued becomes
// invalid.
type Instance struct {
	vm      *goja.Runtime
	program *goja.Program

	// memory is only set for wasm guests
	memory *Memory

	mu            sync.Mutex
	dictionaries  []*namedLookup
	configStores  []*namedLookup
	secretStores  []*secretStore
	loggers       []*logger
	defaultLogger func(name string) io.Writer
	console       io.Writer
	policy        CapabilityPolicy
	timeout       time.Duration

	dictionaryHandles  handleTable[*namedLookup]
	configStoreHandles handleTable[*namedLookup]
	secretStoreHandles handleTable[*secretStore]
	secretHandles      handleTable[*Secret]
	logHandles         handleTable[*logger]

	closed atomic.Bool

	log    *log.Logger
	abilog *log.Logger
}

// NewInstance returns a host with no guest attached, configured by opts. It is useful for
// driving the host API directly.
func NewInstance(opts ...Option) *Instance {
	i := &Instance{
		defaultLogger: defaultLogger,
		console:       os.Stdout,
		log:           log.New(io.Discard, "[fastedge] ", log.Lmicroseconds),
		abilog:        log.New(io.Discard, "[fastedge abi] ", log.Lmicroseconds),
	}

	for _, o := range opts {
		o(i)
	}

	return i
}

// Run executes the guest script from the top and returns its completion value.
func (i *Instance) Run(ctx context.Context) (any, error) {
	if i.program == nil {
		return nil, ErrNoScript
	}
	v, err := i.exec(ctx, func() (goja.Value, error) {
		return i.vm.RunProgram(i.program)
	})
	if err != nil {
		return nil, err
	}
	return export(v), nil
}

// Eval evaluates src in the guest's global scope, after or instead of Run.
func (i *Instance) Eval(ctx context.Context, src string) (any, error) {
	if i.vm == nil {
		return nil, ErrNoScript
	}
	v, err := i.exec(ctx, func() (goja.Value, error) {
		return i.vm.RunString(src)
	})
	if err != nil {
		return nil, err
	}
	return export(v), nil
}

// Close tears the instance down. Outstanding handles become invalid and further opens fail.
func (i *Instance) Close() error {
	if i.closed.Swap(true) {
		return nil
	}

	i.dictionaryHandles.Close()
	i.configStoreHandles.Close()
	i.secretStoreHandles.Close()
	i.secretHandles.Close()
	i.logHandles.Close()
	i.log.Printf("instance closed")
	return nil
}

// exec runs fn under the caller's context and the instance's timeout, interrupting the guest if
// either expires first.
func (i *Instance) exec(ctx context.Context, fn func() (goja.Value, error)) (goja.Value, error) {
	if i.closed.Load() {
		return nil, fmt.Errorf("instance closed")
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	done, stopped := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			i.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	v, err := fn()
	close(done)
	<-stopped
	i.vm.ClearInterrupt()

	if err != nil {
		return nil, guestError(err)
	}
	return v, nil
}

// guestError unwraps interrupts so callers can match the context error that caused them.
func guestError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return fmt.Errorf("guest interrupted: %w", cause)
		}
		return fmt.Errorf("guest interrupted: %v", interrupted.Value())
	}
	return err
}

func export(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.Export()
}

// ServeHTTP runs the guest for one request. The request is exposed to the guest as the global
// `request` ({method, url, headers}). If the script defines a global handleRequest function it is
// called with that object and its return value becomes the response; otherwise the script's
// completion value does. A response is either a string body or an object with status, headers
// and body. Requests that already passed through a fastedge host are rejected with 508 Loop
// Detected. This is not safe to call twice.
func (i *Instance) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(strings.Join(r.Header.Values("cdn-loop"), "\x00"), "fastedge") {
		// immediately respond with a loop detection
		w.WriteHeader(http.StatusLoopDetected)
		w.Write([]byte("Loop detected! This request has already come through your guest program."))
		return
	}

	if i.program == nil {
		http.Error(w, ErrNoScript.Error(), http.StatusInternalServerError)
		return
	}

	req := i.vm.NewObject()
	req.Set("method", r.Method)
	req.Set("url", r.URL.String())
	headers := map[string]any{}
	for k, vs := range r.Header {
		headers[strings.ToLower(k)] = strings.Join(vs, ", ")
	}
	req.Set("headers", headers)
	i.vm.Set("request", req)

	res, err := i.exec(r.Context(), func() (goja.Value, error) {
		return i.vm.RunProgram(i.program)
	})
	if err == nil {
		if handler, ok := goja.AssertFunction(i.vm.Get("handleRequest")); ok {
			res, err = i.exec(r.Context(), func() (goja.Value, error) {
				return handler(goja.Undefined(), req)
			})
		}
	}

	if err != nil {
		i.log.Printf("guest failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	i.writeResponse(w, res)
}

func (i *Instance) writeResponse(w http.ResponseWriter, v goja.Value) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	obj, ok := v.(*goja.Object)
	if !ok || (obj.Get("status") == nil && obj.Get("body") == nil) {
		w.Write([]byte(v.String()))
		return
	}

	status := http.StatusOK
	if s := obj.Get("status"); s != nil && !goja.IsUndefined(s) {
		status = int(s.ToInteger())
	}
	if status < 100 || status > 999 {
		i.log.Printf("guest returned invalid status %d", status)
		http.Error(w, fmt.Sprintf("guest returned invalid status %d", status), http.StatusInternalServerError)
		return
	}

	if h := obj.Get("headers"); h != nil && !goja.IsUndefined(h) && !goja.IsNull(h) {
		ho := h.ToObject(i.vm)
		keys := ho.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			w.Header().Set(k, ho.Get(k).String())
		}
	}

	w.WriteHeader(status)

	if b := obj.Get("body"); b != nil && !goja.IsUndefined(b) && !goja.IsNull(b) {
		w.Write([]byte(b.String()))
	}
}
