package fastedge

import (
	"fmt"

	"fastedge.dev/hostapi"
)

// Capability names a kind of host resource a guest can open.
type Capability string

const (
	CapabilityDictionary  Capability = "dictionary"
	CapabilityConfigStore Capability = "config-store"
	CapabilitySecretStore Capability = "secret-store"
	CapabilityLogEndpoint Capability = "log-endpoint"
)

// ParseCapability parses one of the Capability names.
func ParseCapability(s string) (Capability, error) {
	switch c := Capability(s); c {
	case CapabilityDictionary, CapabilityConfigStore, CapabilitySecretStore, CapabilityLogEndpoint:
		return c, nil
	}
	return "", fmt.Errorf("unknown capability %q", s)
}

// CapabilityPolicy decides whether the guest may open the named resource. It is consulted on
// every open, before the name is resolved, so a denied guest can't probe which names exist.
type CapabilityPolicy func(kind Capability, name string) bool

// authorize checks the instance state and the policy before an open.
func (i *Instance) authorize(kind Capability, name string) error {
	if i.closed.Load() {
		return fmt.Errorf("%s %q: instance torn down: %w", kind, name, hostapi.ErrHostUnavailable)
	}
	if i.policy != nil && !i.policy(kind, name) {
		i.log.Printf("denied %s %q", kind, name)
		return fmt.Errorf("%s %q: %w", kind, name, hostapi.ErrCapabilityDenied)
	}
	return nil
}
