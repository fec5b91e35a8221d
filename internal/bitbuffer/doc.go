// Package bitbuffer provides bit-level storage for demodulated RF
// transmissions.
//
// A Matrix holds one row per transmission attempt. Each row is an ordered
// sequence of bits packed MSB-first into bytes, with an exact bit length.
// Rows are independent: a remote repeats its message several times and the
// demodulator emits one row per repeat, so a single Matrix typically
// contains several (possibly truncated or corrupted) copies of the same
// logical message.
//
// The operations here are the primitives a frame decoder needs:
//
//   - Search: locate a bit pattern at an arbitrary bit offset
//   - Extract: pull an arbitrary-offset, arbitrary-width bit field
//   - Invert: flip capture polarity for the whole matrix
//
// All offsets and widths are in bits, never bytes.
package bitbuffer
