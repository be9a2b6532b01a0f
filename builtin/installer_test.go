package builtin

import (
	"fmt"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastedge.dev/hostapi"
)

// boxHost counts how often the constructor reached the "host".
type boxHost struct {
	opens int
}

var itemDescriptor = &Descriptor{
	Name:  "Item",
	Slots: 1,
	Methods: []Method{{
		Name: "value",
		Fn: func(c *Call, self *Slots) (any, error) {
			return self.Get(0), nil
		},
	}},
}

var boxDescriptor = &Descriptor{
	Name: "Box",
	Constructor: &Constructor{
		Args: []Arg{{Name: "name", Kind: StringArg, Check: func(s string) error {
			if s == "" {
				return fmt.Errorf("can not be empty")
			}
			return nil
		}}},
		Fn: func(c *Call, self *Slots) error {
			c.Host().(*boxHost).opens++
			name := c.String(0)
			if name == "missing" {
				return fmt.Errorf("box %q: %w", name, hostapi.ErrNameNotFound)
			}
			if name == "flaky" {
				return hostapi.ErrHostUnavailable
			}
			return self.Set(0, name)
		},
	},
	Slots: 1,
	Methods: []Method{
		{
			Name: "get",
			Args: []Arg{{Name: "key", Kind: StringArg}},
			Fn: func(c *Call, self *Slots) (any, error) {
				if c.String(0) == "none" {
					return hostapi.None[string](), nil
				}
				return hostapi.Some(self.Get(0).(string) + ":" + c.String(0)), nil
			},
		},
		{
			Name: "rebind",
			Fn: func(c *Call, self *Slots) (any, error) {
				return nil, self.Set(0, "other")
			},
		},
		{
			Name: "item",
			Args: []Arg{{Name: "value", Kind: AnyArg}},
			Fn: func(c *Call, self *Slots) (any, error) {
				if c.String(0) == "null" {
					return Absent, nil
				}
				return c.Construct("Item", c.String(0))
			},
		},
	},
	Properties: []Property{{
		Name: "name",
		Get: func(c *Call, self *Slots) (any, error) {
			return self.Get(0), nil
		},
	}},
}

var echoDescriptor = &Descriptor{
	Name:      "echo",
	Namespace: true,
	Methods: []Method{{
		Name:     "join",
		Variadic: true,
		Fn: func(c *Call, self *Slots) (any, error) {
			return c.Join("-"), nil
		},
	}},
}

func newVM(t *testing.T, host any) *goja.Runtime {
	t.Helper()
	in, err := NewInstaller(boxDescriptor, itemDescriptor, echoDescriptor)
	require.NoError(t, err)

	vm := goja.New()
	require.NoError(t, in.Install(vm, host))
	return vm
}

func run(t *testing.T, vm *goja.Runtime, src string) any {
	t.Helper()
	v, err := vm.RunString(src)
	require.NoError(t, err, src)
	return v.Export()
}

func TestInstallClass(t *testing.T) {
	host := &boxHost{}
	vm := newVM(t, host)

	assert.Equal(t, "function", run(t, vm, `typeof Box`))
	assert.EqualValues(t, 1, run(t, vm, `Box.length`))
	assert.Equal(t, "Box", run(t, vm, `Box.name`))
	assert.Equal(t, true, run(t, vm, `new Box("a") instanceof Box`))
	assert.Equal(t, "[object Box]", run(t, vm, `Object.prototype.toString.call(new Box("a"))`))
	assert.Equal(t, "a:k", run(t, vm, `new Box("a").get("k")`))
	assert.Equal(t, "a", run(t, vm, `new Box("a").name`))
	assert.Equal(t, 0, len(run(t, vm, `Object.keys(new Box("a"))`).([]any)))
	assert.Equal(t, 5, host.opens)
}

func TestInstallAbsentIsNull(t *testing.T) {
	vm := newVM(t, &boxHost{})
	assert.Equal(t, true, run(t, vm, `new Box("a").get("none") === null`))
	assert.Equal(t, true, run(t, vm, `new Box("a").item("null") === null`))
}

func TestInstallArgumentErrors(t *testing.T) {
	host := &boxHost{}
	vm := newVM(t, host)

	for _, src := range []string{
		`new Box()`,
		`new Box("a", "b")`,
		`new Box(42)`,
		`new Box("")`,
	} {
		got := run(t, vm, `try { `+src+`; "no error" } catch (e) { e.name }`)
		assert.Equal(t, "TypeError", got, src)
	}
	assert.Equal(t, 0, host.opens, "argument errors must not reach the host")

	got := run(t, vm, `var b = new Box("a"); try { b.get(1); "no error" } catch (e) { e.name + ": " + e.message }`)
	assert.Equal(t, "TypeError: Box.get: key must be a string", got)
}

func TestInstallHostErrors(t *testing.T) {
	vm := newVM(t, &boxHost{})

	got := run(t, vm, `try { new Box("missing"); "no error" } catch (e) { [e.name, e.code, e instanceof CapabilityError, e instanceof Error].join(",") }`)
	assert.Equal(t, "CapabilityError,ERR_NAME_NOT_FOUND,true,true", got)

	got = run(t, vm, `try { new Box("flaky"); "no error" } catch (e) { [e.name, e.code].join(",") }`)
	assert.Equal(t, "HostError,ERR_HOST_UNAVAILABLE", got)

	// A failed construction leaves nothing behind for the guest to observe
	got = run(t, vm, `var leaked; try { leaked = new Box("missing") } catch (e) {} typeof leaked`)
	assert.Equal(t, "undefined", got)
}

func TestInstallSlotsSealed(t *testing.T) {
	vm := newVM(t, &boxHost{})
	got := run(t, vm, `var b = new Box("a"); try { b.rebind() } catch (e) {} b.get("k")`)
	assert.Equal(t, "a:k", got)
}

func TestInstallReceiverAndNew(t *testing.T) {
	vm := newVM(t, &boxHost{})

	got := run(t, vm, `try { Box.prototype.get.call({}, "k"); "no error" } catch (e) { e.name }`)
	assert.Equal(t, "TypeError", got)

	got = run(t, vm, `try { Box("a"); "no error" } catch (e) { e.name }`)
	assert.Equal(t, "TypeError", got)

	got = run(t, vm, `try { new Item("a"); "no error" } catch (e) { e.message }`)
	assert.Equal(t, "Illegal constructor", got)
}

func TestInstallPlainNew(t *testing.T) {
	host := &boxHost{}
	vm := newVM(t, host)

	run(t, vm, `var plain = new Box("a")`)
	assert.Equal(t, "a:k", run(t, vm, `plain.get("k")`))
	assert.Equal(t, 1, host.opens)
}

func TestInstallSubclass(t *testing.T) {
	vm := newVM(t, &boxHost{})
	got := run(t, vm, `
		class Labelled extends Box {
			constructor() { super("sub") }
			label() { return "label:" + this.get("k") }
		}
		var l = new Labelled();
		[l instanceof Labelled, l instanceof Box, l.label(), l.name].join(",")
	`)
	assert.Equal(t, "true,true,label:sub:k,sub", got)
}

func TestInstallConstruct(t *testing.T) {
	vm := newVM(t, &boxHost{})
	got := run(t, vm, `var i = new Box("a").item("v"); [i instanceof Item, i.value()].join(",")`)
	assert.Equal(t, "true,v", got)
}

func TestInstallNamespace(t *testing.T) {
	vm := newVM(t, &boxHost{})
	assert.Equal(t, "a-1-true", run(t, vm, `echo.join("a", 1, true)`))
	assert.Equal(t, "", run(t, vm, `echo.join()`))
}

func TestInstallSupports(t *testing.T) {
	gated := &Descriptor{
		Name:     "Gated",
		Supports: func(host any) bool { _, ok := host.(*boxHost); return ok },
		Methods:  []Method{{Name: "ping", Fn: func(*Call, *Slots) (any, error) { return "pong", nil }}},
	}
	in, err := NewInstaller(gated)
	require.NoError(t, err)

	vm := goja.New()
	require.NoError(t, in.Install(vm, struct{}{}))
	assert.Equal(t, "undefined", run(t, vm, `typeof Gated`))
	assert.Equal(t, "function", run(t, vm, `typeof CapabilityError`))
}

func TestNewInstallerValidates(t *testing.T) {
	_, err := NewInstaller(boxDescriptor, boxDescriptor)
	assert.Error(t, err)

	_, err = NewInstaller(&Descriptor{Name: "HostError"})
	assert.Error(t, err)

	_, err = NewInstaller(&Descriptor{Name: "Bad", Methods: []Method{{Name: "x"}}})
	assert.Error(t, err)

	_, err = NewInstaller(&Descriptor{Name: "Bad", Namespace: true, Slots: 1})
	assert.Error(t, err)

	_, err = NewInstaller(&Descriptor{Name: "Bad", Constructor: &Constructor{}})
	assert.Error(t, err)

	_, err = NewInstaller(&Descriptor{Name: "Bad", Methods: []Method{
		{Name: "x", Fn: func(*Call, *Slots) (any, error) { return nil, nil }},
	}, Properties: []Property{
		{Name: "x", Get: func(*Call, *Slots) (any, error) { return nil, nil }},
	}})
	assert.Error(t, err)
}
