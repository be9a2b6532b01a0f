// Package bindings declares the host capabilities guest scripts can reach, one descriptor per
// guest-visible type. Each binding keeps its host resource handle in a reserved instance slot
// and never mutates the resource it reads from.
package bindings

import "fastedge.dev/builtin"

// Descriptors returns every binding in installation order.
func Descriptors() []*builtin.Descriptor {
	return []*builtin.Descriptor{
		Dictionary,
		ConfigStore,
		SecretStore,
		SecretStoreEntry,
		Logger,
		Console,
	}
}

// NewInstaller returns an installer for every binding.
func NewInstaller() (*builtin.Installer, error) {
	return builtin.NewInstaller(Descriptors()...)
}
