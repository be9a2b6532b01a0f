package fastedge

import (
	"io"
	"os"
	"time"
)

// Option is a functional option applied to an Instance at creation time
type Option func(*Instance)

// WithDictionary registers a new dictionary with a corresponding lookup function
func WithDictionary(name string, fn LookupFunc) Option {
	return func(i *Instance) {
		i.addDictionary(name, fn)
	}
}

// WithConfigStore registers a new config store with a corresponding lookup function
func WithConfigStore(name string, fn LookupFunc) Option {
	return func(i *Instance) {
		i.addConfigStore(name, fn)
	}
}

// WithSecretStore registers a new secret store with a corresponding lookup function
func WithSecretStore(name string, fn SecretLookupFunc) Option {
	return func(i *Instance) {
		i.addSecretStore(name, fn)
	}
}

// WithLogger registers a new log endpoint usable from a guest
func WithLogger(name string, w io.Writer) Option {
	return func(i *Instance) {
		i.addLogger(name, w)
	}
}

// WithDefaultLogger sets a fallback logger for log endpoints not registered with WithLogger.
// The function receives the log endpoint name and returns an io.Writer. Passing nil disables the
// fallback, so opening an unregistered endpoint fails with a name-not-found error.
func WithDefaultLogger(fn func(name string) io.Writer) Option {
	return func(i *Instance) {
		i.defaultLogger = fn
	}
}

// WithConsole redirects the guest's console output. Passing nil discards it.
func WithConsole(w io.Writer) Option {
	return func(i *Instance) {
		i.console = w
	}
}

// WithCapabilityPolicy replaces the capability policy. The default allows everything.
func WithCapabilityPolicy(p CapabilityPolicy) Option {
	return func(i *Instance) {
		i.policy = p
	}
}

// WithDeniedCapability denies opening the named resources of the given kind, on top of whatever
// policy is already configured. With no names, every resource of that kind is denied.
func WithDeniedCapability(kind Capability, names ...string) Option {
	return func(i *Instance) {
		prev := i.policy
		i.policy = func(k Capability, name string) bool {
			if k == kind {
				if len(names) == 0 {
					return false
				}
				for _, n := range names {
					if n == name {
						return false
					}
				}
			}
			return prev == nil || prev(k, name)
		}
	}
}

// WithExecutionTimeout bounds how long a single guest run may take. Zero means no limit beyond
// the caller's context.
func WithExecutionTimeout(d time.Duration) Option {
	return func(i *Instance) {
		i.timeout = d
	}
}

// WithVerbosity controls logging verbosity for host calls and system-level operations.
//   - Level 0 (default): No logging
//   - Level 1: System-level logs to stderr
//   - Level 2: All guest to host calls logged to stderr
func WithVerbosity(v int) Option {
	return func(i *Instance) {
		if v >= 2 {
			i.abilog.SetOutput(os.Stderr)
		}
		if v >= 1 {
			i.log.SetOutput(os.Stderr)
		}
	}
}
