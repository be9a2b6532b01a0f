// Package fastedge is a local host for edge guest programs: scripts that run in an embedded
// JavaScript engine, and WebAssembly modules that speak the fastly_* host ABI.
//
// Both kinds of guest reach the same host capabilities: read-only dictionaries and config
// stores, secret stores, named log endpoints and a console. An Instance holds the registered
// stores and the handles the guest has been issued, and implements every interface in
// fastedge.dev/hostapi. The guest-facing classes a script sees are declared in
// fastedge.dev/bindings.
//
// The main entry points are:
//   - New() / NewFromSource(): compile a script into a Runtime
//   - Runtime.Instantiate(): a fresh Instance for one run, with Run and Eval
//   - Runtime.ServeHTTP(): serve each request with a fresh Instance
//   - NewWasm(): compile a wasm module into a WasmRuntime, then Run it
//
// Stores are configured with options such as WithDictionary, WithConfigStore and
// WithSecretStore. Which stores a guest may open is decided by a CapabilityPolicy.
//
// # Handles
//
// Opening a store always issues a new handle, even for a name that was opened before. Handles
// are only meaningful to the Instance that issued them, and become invalid when it is closed.
//
// # Wasm ABI
//
// The wasm host functions are implemented in xqd*.go files and linked by Instance.link. Each
// function intentionally follows the C-style signatures of the Fastly Rust crate for easier
// comparison.
package fastedge
