// Package decoder turns demodulated bit rows into validated Hunter
// ceiling-fan remote commands.
//
// The decode path is a straight-line filter per row:
//
//  1. Locate the 12-bit all-ones preamble (the capture may carry leading
//     garbage, so the preamble can start at any bit offset).
//  2. Extract the remote id, command and inverse-command fields at the
//     offsets of the configured protocol revision.
//  3. Validate the command against its inverse via the revision's
//     complement rule.
//  4. Map the validated command code to a target (fan/light) and a
//     human-readable action label.
//
// Rows are independent transmissions of the same logical message; a row
// that fails any step is logged and skipped, never fatal to the scan.
// The decoder holds no state between calls — the remote's transmit
// redundancy is the caller's concern, and duplicate rows simply produce
// duplicate records.
//
// Two protocol revisions coexist in the field. They differ in field
// widths, offsets and the strictness of the complement rule, and are
// modelled as static Profile values, never detected from frame content.
package decoder
