package decoder

import "errors"

// Per-row decode outcomes. These are diagnostics: Decode logs and counts
// them but never returns them, since a row failing is not fatal to the
// scan. Use errors.Is() when inspecting them in tests or tooling.
var (
	// ErrNoPreamble indicates the 12-bit preamble was not found in a row.
	ErrNoPreamble = errors.New("decoder: no preamble")

	// ErrShortMessage indicates too few bits remained after the preamble
	// to hold a full payload.
	ErrShortMessage = errors.New("decoder: short message")

	// ErrBadMessage indicates the command and inverse-command fields
	// failed the complement check.
	ErrBadMessage = errors.New("decoder: bad message")

	// ErrUnknownRevision is returned by ProfileFor for a revision name
	// that is not "A" or "B". This is a configuration error, not a
	// runtime decode outcome.
	ErrUnknownRevision = errors.New("decoder: unknown protocol revision")
)
