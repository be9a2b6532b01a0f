package fastedge

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/dop251/goja"

	"fastedge.dev/bindings"
)

// installer is built once per process; installing it into each guest is cheap.
var installer = sync.OnceValues(bindings.NewInstaller)

// Runtime carries a compiled guest script and is capable of creating new instances ready to run
// it or serve requests
type Runtime struct {
	name    string
	program *goja.Program

	instanceOpts []Option
}

// New returns a new Runtime for the script in scriptfile
func New(scriptfile string, instanceOpts ...Option) (*Runtime, error) {
	src, err := os.ReadFile(scriptfile)
	if err != nil {
		return nil, err
	}
	return NewFromSource(scriptfile, string(src), instanceOpts...)
}

// NewFromSource returns a new Runtime using the script source supplied. name is only used in
// error messages and stack traces.
func NewFromSource(name, src string, instanceOpts ...Option) (*Runtime, error) {
	if _, err := installer(); err != nil {
		return nil, fmt.Errorf("bindings: %w", err)
	}

	program, err := goja.Compile(name, src, true)
	if err != nil {
		return nil, err
	}

	return &Runtime{name: name, program: program, instanceOpts: instanceOpts}, nil
}

// Instantiate returns a new Instance with the bindings installed and the script loaded but not
// yet run. opts are applied after the Runtime's own options.
func (r *Runtime) Instantiate(opts ...Option) (*Instance, error) {
	in, err := installer()
	if err != nil {
		return nil, err
	}

	all := make([]Option, 0, len(r.instanceOpts)+len(opts))
	all = append(all, r.instanceOpts...)
	all = append(all, opts...)

	i := NewInstance(all...)
	i.vm = goja.New()
	i.program = r.program
	if err := in.Install(i.vm, i); err != nil {
		return nil, fmt.Errorf("%s: installing bindings: %w", r.name, err)
	}

	return i, nil
}

// ServeHTTP serves each request with a fresh instance.
func (r *Runtime) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	i, err := r.Instantiate()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer i.Close()

	i.ServeHTTP(w, req)
}
