package fastedge

import "fastedge.dev/hostapi"

// XQD ABI status codes returned from host functions to wasm guests.
// These match the fastly-shared Rust crate definitions.
const (
	XqdStatusOK           int32 = 0  // Success
	XqdError              int32 = 1  // Generic error
	XqdErrInvalidArgument int32 = 2  // Invalid argument passed
	XqdErrInvalidHandle   int32 = 3  // Invalid handle ID
	XqdErrBufferLength    int32 = 4  // Buffer too small
	XqdErrUnsupported     int32 = 5  // Operation not supported
	XqdErrNone            int32 = 10 // No value/data available
	XqdErrAgain           int32 = 11 // Operation would block (try again)
)

// HandleInvalid is written to the guest when opening a resource fails.
//
// This is distinct from XqdErrInvalidHandle, which is returned when using a handle that was
// never issued or has been torn down.
const HandleInvalid = uint32(hostapi.InvalidHandle)
