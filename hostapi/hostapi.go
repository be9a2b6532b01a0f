// Package hostapi is the contract between capability bindings and the host that owns the
// underlying resources.
//
// Guest code never reaches host state directly. A binding opens a named resource through one of
// the interfaces below, keeps the returned Handle, and addresses the resource with it on every
// later call. Handles are tokens only: the host decides what they point at and when they stop
// being valid (usually at the end of a request).
package hostapi

import "errors"

// Handle is an opaque token referencing a host-owned resource.
type Handle uint32

// InvalidHandle is never issued by a host. ABI layers write it when an open fails.
const InvalidHandle Handle = 4294967295 - 1

// Errors a host reports at the capability boundary. Bindings translate each of them 1:1 into a
// guest-visible exception.
var (
	// ErrNameNotFound is returned by Open* when no resource is configured under the name.
	ErrNameNotFound = errors.New("name not found")

	// ErrCapabilityDenied is returned by Open* when the resource exists but the guest was not
	// granted access to it.
	ErrCapabilityDenied = errors.New("capability denied")

	// ErrInvalidHandle is returned when a handle was never issued or the resource behind it has
	// been torn down.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrHostUnavailable is a transient host failure. Retrying is up to the guest.
	ErrHostUnavailable = errors.New("host unavailable")
)

// DictionaryAPI serves read-only named dictionaries.
type DictionaryAPI interface {
	OpenDictionary(name string) (Handle, error)
	LookupDictionary(h Handle, key string) (Value, error)
}

// ConfigStoreAPI serves read-only named config stores.
type ConfigStoreAPI interface {
	OpenConfigStore(name string) (Handle, error)
	LookupConfigStore(h Handle, key string) (Value, error)
}

// SecretStoreAPI serves named secret stores. A successful lookup yields a handle to the secret
// rather than its plaintext, which is fetched separately.
type SecretStoreAPI interface {
	OpenSecretStore(name string) (Handle, error)
	LookupSecret(store Handle, key string) (Maybe[Handle], error)
	SecretPlaintext(secret Handle) ([]byte, error)
}

// LogAPI serves named log endpoints.
type LogAPI interface {
	OpenLogEndpoint(name string) (Handle, error)
	WriteLog(h Handle, msg []byte) error
}

// ConsoleAPI is the guest's diagnostic output.
type ConsoleAPI interface {
	Console(level string, msg string)
}
