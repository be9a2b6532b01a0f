package fastedge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bytecodealliance/wasmtime-go"
)

// WasmRuntime carries a compiled wasm module that imports the fastly_* host modules, and runs it
// against instances configured with the same options as script guests.
//
// Runs are serialized: a timeout interrupts through the engine's epoch, which every store on the
// engine shares.
type WasmRuntime struct {
	mu     sync.Mutex
	engine *wasmtime.Engine
	module *wasmtime.Module

	instanceOpts []Option
}

func newEngine() (*wasmtime.Engine, error) {
	config := wasmtime.NewConfig()
	if err := config.CacheConfigLoadDefault(); err != nil {
		return nil, err
	}
	config.SetEpochInterruption(true)
	return wasmtime.NewEngineWithConfig(config), nil
}

// NewWasm returns a new WasmRuntime for the module in wasmfile
func NewWasm(wasmfile string, instanceOpts ...Option) (*WasmRuntime, error) {
	engine, err := newEngine()
	if err != nil {
		return nil, err
	}

	module, err := wasmtime.NewModuleFromFile(engine, wasmfile)
	if err != nil {
		return nil, err
	}

	return &WasmRuntime{engine: engine, module: module, instanceOpts: instanceOpts}, nil
}

// NewWasmFromBytes returns a new WasmRuntime using the wasm bytes supplied
func NewWasmFromBytes(wasm []byte, instanceOpts ...Option) (*WasmRuntime, error) {
	engine, err := newEngine()
	if err != nil {
		return nil, err
	}

	module, err := wasmtime.NewModule(engine, wasm)
	if err != nil {
		return nil, err
	}

	return &WasmRuntime{engine: engine, module: module, instanceOpts: instanceOpts}, nil
}

// Run instantiates the module against a fresh instance and calls its _start export. A guest that
// exits through WASI with status 0 is a success.
func (w *WasmRuntime) Run(ctx context.Context, opts ...Option) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	all := make([]Option, 0, len(w.instanceOpts)+len(opts))
	all = append(all, w.instanceOpts...)
	all = append(all, opts...)

	i := NewInstance(all...)
	defer i.Close()

	store := wasmtime.NewStore(w.engine)

	// These options ensure our wasm module can write to stdout/stderr
	wasicfg := wasmtime.NewWasiConfig()
	wasicfg.InheritStdout()
	wasicfg.InheritStderr()
	store.SetWasi(wasicfg)
	store.SetEpochDeadline(1)

	linker := wasmtime.NewLinker(w.engine)
	if err := linker.DefineWasi(); err != nil {
		return err
	}
	if err := i.link(store, linker); err != nil {
		return err
	}

	inst, err := linker.Instantiate(store, w.module)
	if err != nil {
		return err
	}

	mem := inst.GetExport(store, "memory")
	if mem == nil || mem.Memory() == nil {
		return errors.New("wasm module does not export its memory")
	}
	i.memory = &Memory{&wasmMemory{store: store, mem: mem.Memory()}}

	start := inst.GetFunc(store, "_start")
	if start == nil {
		return errors.New("wasm module has no _start export")
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
			w.engine.IncrementEpoch()
		case <-done:
		}
	}()

	_, err = start.Call(store)
	close(done)
	<-stopped

	if err == nil {
		return nil
	}

	if status, ok := exitStatus(err); ok {
		if status == 0 {
			return nil
		}
		return fmt.Errorf("guest exited with status %d", status)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("guest interrupted: %w", ctx.Err())
	}
	return err
}

// exitStatus extracts the status a guest passed to WASI proc_exit. wasmtime reports the exit as a
// trap whose message carries the status.
func exitStatus(err error) (int32, bool) {
	var trap *wasmtime.Trap
	if !errors.As(err, &trap) {
		return 0, false
	}

	var status int32
	if _, serr := fmt.Sscanf(trap.Message(), "Exited with i32 exit status %d", &status); serr != nil {
		return 0, false
	}
	return status, true
}

// link binds the host modules the guest may import. Every function is instance specific, so a
// linker is built per run.
func (i *Instance) link(store wasmtime.Storelike, linker *wasmtime.Linker) error {
	for _, f := range []struct {
		module, name string
		fn           interface{}
	}{
		// xqd.go
		{"fastly_abi", "init", i.xqd_init},

		// xqd_dictionary.go
		{"fastly_dictionary", "open", i.xqd_dictionary_open},
		{"fastly_dictionary", "get", i.xqd_dictionary_get},

		// xqd_config_store.go
		{"fastly_config_store", "open", i.xqd_config_store_open},
		{"fastly_config_store", "get", i.xqd_config_store_get},

		// xqd_secret_store.go
		{"fastly_secret_store", "open", i.xqd_secret_store_open},
		{"fastly_secret_store", "get", i.xqd_secret_store_get},
		{"fastly_secret_store", "plaintext", i.xqd_secret_store_plaintext},
		{"fastly_secret_store", "from_bytes", i.xqd_secret_store_from_bytes},

		// xqd_log.go
		{"fastly_log", "endpoint_get", i.xqd_log_endpoint_get},
		{"fastly_log", "write", i.xqd_log_write},
	} {
		if err := linker.DefineFunc(store, f.module, f.name, f.fn); err != nil {
			return fmt.Errorf("linking %s.%s: %w", f.module, f.name, err)
		}
	}
	return nil
}
