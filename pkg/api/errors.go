package api

import "errors"

// Sentinel errors for the failure modes the automation engine distinguishes.
// Anything else degrades to "skip this item, continue the sweep".
var (
	// ErrMalformedInput marks a command whose amount or date could not be
	// parsed. The command is discarded whole, never partially applied.
	ErrMalformedInput = errors.New("malformed input")

	// ErrStoreUnavailable marks a persistence read or write failure. It is
	// surfaced to the caller of the triggering operation; sweeps skip the
	// affected item and continue.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("record not found")
)
