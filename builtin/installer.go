// Package builtin installs capability descriptors into a goja runtime.
//
// A capability is declared once as a static Descriptor and handed to NewInstaller at startup.
// Each guest context then gets its own Install call, which wires the descriptors to that
// runtime's object model: constructors, prototypes, argument checks, reserved instance slots and
// the translation of handler errors into guest exceptions. Handlers never touch goja directly.
package builtin

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"fastedge.dev/hostapi"
)

// Guest error classes defined by every Install. Argument errors are thrown as TypeError.
const (
	CapabilityErrorClass = "CapabilityError"
	HostErrorClass       = "HostError"
)

// Absent is returned by handlers for the guest's no-value marker (null).
var Absent any = absentValue{}

type absentValue struct{}

// Installer holds a validated set of descriptors.
type Installer struct {
	descs []*Descriptor
}

// NewInstaller validates descs. The result is read-only and safe to share between goroutines.
func NewInstaller(descs ...*Descriptor) (*Installer, error) {
	names := map[string]bool{CapabilityErrorClass: true, HostErrorClass: true}
	for _, d := range descs {
		if d == nil {
			return nil, fmt.Errorf("builtin: nil descriptor")
		}
		if err := d.validate(); err != nil {
			return nil, fmt.Errorf("builtin: %w", err)
		}
		if names[d.Name] {
			return nil, fmt.Errorf("builtin: name %q registered twice", d.Name)
		}
		names[d.Name] = true
	}
	return &Installer{descs: append([]*Descriptor(nil), descs...)}, nil
}

// Descriptors returns the installer's descriptors in registration order.
func (in *Installer) Descriptors() []*Descriptor {
	return append([]*Descriptor(nil), in.descs...)
}

// Install defines every descriptor supported by host as a global of vm. host is handed to every
// handler through Call.Host.
func (in *Installer) Install(vm *goja.Runtime, host any) error {
	e := &env{vm: vm, host: host, classes: map[string]*class{}, errors: map[Kind]goja.Value{}}
	if err := e.defineErrorClasses(); err != nil {
		return err
	}

	for _, d := range in.descs {
		if d.Supports != nil && !d.Supports(host) {
			continue
		}

		var (
			v   *goja.Object
			err error
		)
		if d.Namespace {
			v, err = e.defineNamespace(d)
		} else {
			v, err = e.defineClass(d)
		}
		if err != nil {
			return fmt.Errorf("builtin: install %s: %w", d.Name, err)
		}
		if err := vm.Set(d.Name, v); err != nil {
			return fmt.Errorf("builtin: install %s: %w", d.Name, err)
		}
	}
	return nil
}

// env is the per-runtime side of an installation.
type env struct {
	vm      *goja.Runtime
	host    any
	classes map[string]*class
	errors  map[Kind]goja.Value
}

type class struct {
	desc  *Descriptor
	ctor  *goja.Object
	proto *goja.Object
}

// native is what a guest instance wraps. It has no exported fields or methods, so reflection
// exposes nothing of it to the guest.
type native struct {
	class *class
	slots *Slots
}

func (e *env) defineErrorClasses() error {
	for kind, name := range map[Kind]string{CapabilityError: CapabilityErrorClass, HostError: HostErrorClass} {
		src := fmt.Sprintf(`(class %[1]s extends Error {
	constructor(message, code) {
		super(message);
		this.name = %[1]q;
		this.code = code;
	}
})`, name)
		v, err := e.vm.RunString(src)
		if err != nil {
			return fmt.Errorf("builtin: define %s: %w", name, err)
		}
		if err := e.vm.Set(name, v); err != nil {
			return err
		}
		e.errors[kind] = v
	}
	return nil
}

// classShim wraps a native constructor in a guest class. Calling it without new throws a
// TypeError, and new.target is handed to the native side so subclasses keep their prototype.
const classShim = `(function (construct) {
	return class {
		constructor(...args) {
			return construct(new.target, ...args);
		}
	};
})`

func (e *env) defineClass(d *Descriptor) (*goja.Object, error) {
	vm := e.vm
	c := &class{desc: d}

	shim, err := vm.RunString(classShim)
	if err != nil {
		return nil, err
	}
	factory, ok := goja.AssertFunction(shim)
	if !ok {
		return nil, fmt.Errorf("class shim is not a function")
	}

	native := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		newTarget, _ := call.Argument(0).(*goja.Object)
		var args []goja.Value
		if len(call.Arguments) > 1 {
			args = call.Arguments[1:]
		}
		return e.construct(c, newTarget, args)
	})

	v, err := factory(goja.Undefined(), native)
	if err != nil {
		return nil, err
	}
	ctor := v.ToObject(vm)

	proto, _ := ctor.Get("prototype").(*goja.Object)
	if proto == nil {
		return nil, fmt.Errorf("class %s has no prototype", d.Name)
	}
	c.ctor, c.proto = ctor, proto

	if err := e.nameFunc(ctor, d.Name, d.Arity()); err != nil {
		return nil, err
	}

	for _, m := range d.Methods {
		fn, err := e.method(c, m)
		if err != nil {
			return nil, err
		}
		if err := proto.DefineDataProperty(m.Name, fn, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			return nil, err
		}
	}
	for _, p := range d.Properties {
		if err := proto.DefineAccessorProperty(p.Name, e.getter(c, p), nil, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
			return nil, err
		}
	}
	if err := proto.DefineDataPropertySymbol(goja.SymToStringTag, vm.ToValue(d.Name), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		return nil, err
	}

	e.classes[d.Name] = c
	return ctor, nil
}

func (e *env) defineNamespace(d *Descriptor) (*goja.Object, error) {
	obj := e.vm.NewObject()
	c := &class{desc: d, proto: obj}
	for _, m := range d.Methods {
		fn, err := e.method(c, m)
		if err != nil {
			return nil, err
		}
		if err := obj.DefineDataProperty(m.Name, fn, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
			return nil, err
		}
	}
	if err := obj.DefineDataPropertySymbol(goja.SymToStringTag, e.vm.ToValue(d.Name), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		return nil, err
	}
	return obj, nil
}

func (e *env) nameFunc(fn *goja.Object, name string, length int) error {
	if err := fn.DefineDataProperty("name", e.vm.ToValue(name), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE); err != nil {
		return err
	}
	return fn.DefineDataProperty("length", e.vm.ToValue(length), goja.FLAG_FALSE, goja.FLAG_TRUE, goja.FLAG_FALSE)
}

func (e *env) construct(c *class, newTarget *goja.Object, args []goja.Value) *goja.Object {
	d := c.desc
	op := d.Name + " constructor"

	if d.Constructor == nil {
		panic(e.vm.NewTypeError("Illegal constructor"))
	}
	if newTarget == nil {
		panic(e.vm.NewTypeError(op + ": must be called with new"))
	}
	if err := checkArgs(d.Constructor.Args, false, args); err != nil {
		e.throw(op, err)
	}

	self := newSlots(d.Slots)
	if err := d.Constructor.Fn(e.call(op, args), self); err != nil {
		e.throw(op, err)
	}

	// new.target decides the prototype, so subclasses of the binding keep working
	proto := c.proto
	if p, ok := newTarget.Get("prototype").(*goja.Object); ok {
		proto = p
	}
	return e.wrap(c, self, proto)
}

// wrap seals self and returns the guest object for it. Nothing reaches the guest before this.
func (e *env) wrap(c *class, self *Slots, proto *goja.Object) *goja.Object {
	self.seal()
	obj := e.vm.ToValue(&native{class: c, slots: self}).ToObject(e.vm)
	if err := obj.SetPrototype(proto); err != nil {
		panic(e.vm.NewGoError(err))
	}
	return obj
}

func (e *env) method(c *class, m Method) (goja.Value, error) {
	op := c.desc.Name + "." + m.Name
	fn := e.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		var self *Slots
		if !c.desc.Namespace {
			self = e.receiver(c, call.This, op)
		}
		if err := checkArgs(m.Args, m.Variadic, call.Arguments); err != nil {
			e.throw(op, err)
		}
		res, err := m.Fn(e.call(op, call.Arguments), self)
		if err != nil {
			e.throw(op, err)
		}
		return e.toGuest(res)
	})
	if err := e.nameFunc(fn.ToObject(e.vm), m.Name, len(m.Args)); err != nil {
		return nil, err
	}
	return fn, nil
}

func (e *env) getter(c *class, p Property) goja.Value {
	op := c.desc.Name + "." + p.Name
	return e.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		self := e.receiver(c, call.This, op)
		res, err := p.Get(e.call(op, nil), self)
		if err != nil {
			e.throw(op, err)
		}
		return e.toGuest(res)
	})
}

// receiver returns the slots behind this, throwing a TypeError unless this is a ready instance
// of c.
func (e *env) receiver(c *class, this goja.Value, op string) *Slots {
	if obj, ok := this.(*goja.Object); ok {
		if n, ok := obj.Export().(*native); ok && n.class == c && n.slots.Ready() {
			return n.slots
		}
	}
	panic(e.vm.NewTypeError(fmt.Sprintf("%s: receiver is not a %s", op, c.desc.Name)))
}

func (e *env) call(op string, args []goja.Value) *Call {
	return &Call{Op: op, env: e, args: args}
}

func (e *env) toGuest(res any) goja.Value {
	switch v := res.(type) {
	case nil:
		return goja.Undefined()
	case absentValue:
		return goja.Null()
	case goja.Value:
		return v
	case hostapi.Value:
		if s, ok := v.Get(); ok {
			return e.vm.ToValue(s)
		}
		return goja.Null()
	case []byte:
		return e.vm.ToValue(string(v))
	default:
		return e.vm.ToValue(v)
	}
}

// throw raises err in the guest as the exception its kind maps to.
func (e *env) throw(op string, err error) {
	msg := op + ": " + err.Error()

	kind := Classify(err)
	if kind == ArgumentError {
		panic(e.vm.NewTypeError(msg))
	}

	obj, nerr := e.vm.New(e.errors[kind], e.vm.ToValue(msg), e.vm.ToValue(Code(err)))
	if nerr != nil {
		panic(e.vm.NewGoError(err))
	}
	panic(obj)
}

func checkArgs(schema []Arg, variadic bool, args []goja.Value) error {
	switch {
	case variadic && len(args) < len(schema):
		return Argumentf("expected at least %d %s, got %d", len(schema), plural(len(schema)), len(args))
	case !variadic && len(args) != len(schema):
		return Argumentf("expected %d %s, got %d", len(schema), plural(len(schema)), len(args))
	}

	for i, a := range schema {
		if a.Kind != StringArg {
			continue
		}
		s, ok := args[i].Export().(string)
		if !ok {
			return Argumentf("%s must be a string", a.Name)
		}
		if a.Check != nil {
			if err := a.Check(s); err != nil {
				return &Error{Kind: ArgumentError, Msg: a.Name, Err: err}
			}
		}
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return "argument"
	}
	return "arguments"
}

// Call is what a handler sees of one guest call.
type Call struct {
	// Op names the entry point, e.g. "Dictionary.get".
	Op string

	env  *env
	args []goja.Value
}

// Host returns the host passed to Install.
func (c *Call) Host() any {
	return c.env.host
}

// Len is the number of arguments passed by the guest.
func (c *Call) Len() int {
	return len(c.args)
}

// String returns argument i converted to a string, or "" if it is missing.
func (c *Call) String(i int) string {
	if i < 0 || i >= len(c.args) {
		return ""
	}
	return c.args[i].String()
}

// Strings returns every argument from i on, converted to strings.
func (c *Call) Strings(i int) []string {
	var out []string
	for ; i < len(c.args); i++ {
		out = append(out, c.args[i].String())
	}
	return out
}

// Join is Strings(0) joined by sep.
func (c *Call) Join(sep string) string {
	return strings.Join(c.Strings(0), sep)
}

// Construct creates a ready instance of an installed class from the host side, filling its slots
// in order. It is how classes without a guest constructor get instances.
func (c *Call) Construct(className string, slots ...any) (any, error) {
	cl, ok := c.env.classes[className]
	if !ok {
		return nil, fmt.Errorf("builtin: class %s is not installed", className)
	}
	if len(slots) != cl.desc.Slots {
		return nil, fmt.Errorf("builtin: %s has %d slots, got %d values", className, cl.desc.Slots, len(slots))
	}

	self := newSlots(cl.desc.Slots)
	for i, v := range slots {
		if err := self.Set(i, v); err != nil {
			return nil, err
		}
	}
	return c.env.wrap(cl, self, cl.proto), nil
}
