package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"fastedge.dev"
	"fastedge.dev/bindings"
	"fastedge.dev/source"
)

// store represents a configured dictionary or config store with its lookup function
type store struct {
	filename string
	fn       fastedge.LookupFunc
	closer   io.Closer
}

// storeFlags implements flag.Value for parsing -dictionary and -config-store flags
type storeFlags map[string]store

func (f *storeFlags) String() string {
	results := make([]string, 0, len(*f))
	for name, s := range *f {
		results = append(results, fmt.Sprintf("%s=%s", name, s.filename))
	}
	return strings.Join(results, ", ")
}

func (f *storeFlags) Set(v string) error {
	parts := strings.SplitN(v, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid store %s specified, expected name=file", v)
	}

	name, filename := parts[0], parts[1]
	fn, closer, err := source.Open(name, filename)
	if err != nil {
		return fmt.Errorf("error loading %s: %s", filename, err.Error())
	}

	if prev, ok := (*f)[name]; ok {
		prev.closer.Close()
	}
	(*f)[name] = store{filename: filename, fn: fn, closer: closer}
	return nil
}

// Close releases any databases opened for the stores.
func (f storeFlags) Close() {
	for _, s := range f {
		s.closer.Close()
	}
}

// secretStoreEntry represents a configured secret store
type secretStoreEntry struct {
	filename string
	fn       fastedge.SecretLookupFunc
}

// secretStoreFlags implements flag.Value for parsing -secret-store flags
type secretStoreFlags map[string]secretStoreEntry

func (f *secretStoreFlags) String() string {
	results := make([]string, 0, len(*f))
	for name, ss := range *f {
		results = append(results, fmt.Sprintf("%s=%s", name, ss.filename))
	}
	return strings.Join(results, ", ")
}

func (f *secretStoreFlags) Set(v string) error {
	parts := strings.SplitN(v, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid secret store %s specified, expected name=file", v)
	}

	name, filename := parts[0], parts[1]
	fn, err := source.Secrets(filename)
	if err != nil {
		return fmt.Errorf("error loading secret store file %s: %s", filename, err.Error())
	}

	(*f)[name] = secretStoreEntry{filename: filename, fn: fn}
	return nil
}

// loggerEntry represents a configured logger
type loggerEntry struct {
	filename string
	writer   io.Writer
}

// loggerFlags implements flag.Value for parsing -logger flags
type loggerFlags map[string]loggerEntry

func (f *loggerFlags) String() string {
	results := make([]string, 0, len(*f))
	for name, l := range *f {
		if l.filename != "" {
			results = append(results, fmt.Sprintf("%s=%s", name, l.filename))
		} else {
			results = append(results, name)
		}
	}
	return strings.Join(results, ", ")
}

func (f *loggerFlags) Set(v string) error {
	parts := strings.SplitN(v, "=", 2)
	name := parts[0]
	filename := ""
	var writer io.Writer = fastedge.NewPrefixWriter(name, fastedge.LineWriter{Writer: os.Stdout})

	if len(parts) == 2 {
		filename = parts[1]
		fd, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("error opening logger file %s: %s", filename, err.Error())
		}
		writer = fastedge.LineWriter{Writer: fd}
	}

	(*f)[name] = loggerEntry{filename: filename, writer: writer}
	return nil
}

type denial struct {
	kind fastedge.Capability
	name string
}

// denyFlags implements flag.Value for parsing -deny flags
type denyFlags []denial

func (f *denyFlags) String() string {
	results := make([]string, 0, len(*f))
	for _, d := range *f {
		if d.name == "" {
			results = append(results, string(d.kind))
		} else {
			results = append(results, string(d.kind)+":"+d.name)
		}
	}
	return strings.Join(results, ", ")
}

func (f *denyFlags) Set(v string) error {
	kind, name, _ := strings.Cut(v, ":")
	c, err := fastedge.ParseCapability(kind)
	if err != nil {
		return err
	}

	*f = append(*f, denial{kind: c, name: name})
	return nil
}

// checkScriptNames rejects configured resources that a script guest could never open by name.
// Wasm guests pass names through the host ABI and are not held to these rules.
func checkScriptNames(dictionaries, configStores storeFlags, secretStores secretStoreFlags, loggers loggerFlags) error {
	for flagName, names := range map[string][]string{
		"dictionary":   keys(dictionaries),
		"config-store": keys(configStores),
	} {
		for _, name := range names {
			if err := bindings.ValidateStoreName(name); err != nil {
				return fmt.Errorf("-%s %q: %w", flagName, name, err)
			}
		}
	}
	for flagName, names := range map[string][]string{
		"secret-store": keys(secretStores),
		"logger":       keys(loggers),
	} {
		for _, name := range names {
			if err := bindings.ValidateEndpointName(name); err != nil {
				return fmt.Errorf("-%s %q: %w", flagName, name, err)
			}
		}
	}
	return nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
