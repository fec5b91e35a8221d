// Package pulse slices demodulated PWM pulse trains into bit rows.
//
// The external receiver demodulates the 433MHz carrier into alternating
// mark/space durations (microseconds of signal high, then signal low).
// This package owns the Hunter remote's fixed timing profile and turns
// those durations into a bitbuffer.Matrix for the decoder:
//
//   - a mark near the short width is a 1
//   - a mark near the long width is a 0
//   - a space at or beyond the reset gap ends the current row
//   - a mark matching neither width ends the current row (noise)
//
// The timing thresholds are a property of the remote's protocol, fixed at
// registration time. There is no runtime calibration.
package pulse
