package builtin

import (
	"errors"
	"fmt"
)

// ArgKind is the shape a guest argument must have before a handler sees it.
type ArgKind int

const (
	// AnyArg accepts any guest value. Handlers read it with Call.String.
	AnyArg ArgKind = iota
	// StringArg accepts primitive strings only.
	StringArg
)

// Arg describes one positional argument.
type Arg struct {
	Name string
	Kind ArgKind
	// Check optionally validates a StringArg. Its error becomes an ArgumentError.
	Check func(s string) error
}

// Constructor is the native entry point behind `new Name(...)`. Fn fills the reserved slots of
// the instance under construction; the instance only becomes guest visible if Fn returns nil.
type Constructor struct {
	Args []Arg
	Fn   func(c *Call, self *Slots) error
}

// Method is a native-backed method. For namespaces self is nil.
type Method struct {
	Name string
	Args []Arg
	// Variadic methods accept any number of arguments beyond Args.
	Variadic bool
	Fn       func(c *Call, self *Slots) (any, error)
}

// Property is a native-backed read-only accessor on the prototype.
type Property struct {
	Name string
	Get  func(c *Call, self *Slots) (any, error)
}

// Descriptor declares the shape of one capability type to the engine: its name, constructor
// arity and argument schema, method and property tables, and how many internal slots each
// instance reserves. Descriptors are static and shared by every engine they are installed into.
type Descriptor struct {
	Name string

	// Constructor is nil for classes whose instances are only created by the host (see
	// Call.Construct). Guest `new` on such a class throws a TypeError.
	Constructor *Constructor

	// Namespace installs Name as a plain object holding Methods, with no instances.
	Namespace bool

	Methods    []Method
	Properties []Property
	Slots      int

	// Supports reports whether a host provides the capability. Unsupported descriptors are not
	// installed, so the guest sees no such global. A nil Supports accepts every host.
	Supports func(host any) bool
}

// Arity is the exact number of arguments the constructor takes.
func (d *Descriptor) Arity() int {
	if d.Constructor == nil {
		return 0
	}
	return len(d.Constructor.Args)
}

func (d *Descriptor) validate() error {
	if d.Name == "" {
		return errors.New("descriptor has no name")
	}
	if d.Slots < 0 {
		return fmt.Errorf("%s: negative slot count %d", d.Name, d.Slots)
	}
	if d.Namespace {
		if d.Constructor != nil || d.Slots != 0 || len(d.Properties) != 0 {
			return fmt.Errorf("%s: a namespace has no constructor, slots or properties", d.Name)
		}
	}
	if d.Constructor != nil && d.Constructor.Fn == nil {
		return fmt.Errorf("%s: constructor has no handler", d.Name)
	}

	seen := map[string]bool{}
	for _, m := range d.Methods {
		if m.Name == "" || m.Fn == nil {
			return fmt.Errorf("%s: method %q has no name or handler", d.Name, m.Name)
		}
		if seen[m.Name] {
			return fmt.Errorf("%s: duplicate member %q", d.Name, m.Name)
		}
		seen[m.Name] = true
	}
	for _, p := range d.Properties {
		if p.Name == "" || p.Get == nil {
			return fmt.Errorf("%s: property %q has no name or getter", d.Name, p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("%s: duplicate member %q", d.Name, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
