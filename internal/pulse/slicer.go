package pulse

import (
	"github.com/nerrad567/hunter-rf-core/internal/bitbuffer"
)

// maxRows caps how many rows a single pulse train may produce.
// A burst from the remote carries at most a handful of repeats; anything
// beyond this is noise and gets dropped rather than ballooning memory.
const maxRows = 25

// Timing is the PWM timing profile of a remote, in microseconds.
//
// These values select which physical pulses group into which bits and are
// exposed to the host scheduler so the external demodulator can be
// configured to match.
type Timing struct {
	// ShortUS is the mark width of a logical 1.
	ShortUS int

	// LongUS is the mark width of a logical 0.
	LongUS int

	// ResetGapUS is the inter-frame gap. A space at or beyond this width
	// terminates the current row.
	ResetGapUS int

	// ToleranceUS is the accepted deviation when classifying a mark.
	ToleranceUS int
}

// HunterTiming returns the timing profile of the Hunter ceiling-fan
// remote, as measured from the original device registration.
func HunterTiming() Timing {
	return Timing{
		ShortUS:     412,
		LongUS:      812,
		ResetGapUS:  12004,
		ToleranceUS: 160,
	}
}

// Slicer converts mark/space pulse trains into bit matrices using a fixed
// timing profile.
//
// A Slicer holds no per-train state; the same instance may slice any
// number of trains.
type Slicer struct {
	timing Timing
}

// NewSlicer creates a Slicer for the given timing profile.
func NewSlicer(t Timing) *Slicer {
	return &Slicer{timing: t}
}

// Timing returns the slicer's timing profile.
func (s *Slicer) Timing() Timing {
	return s.timing
}

// Slice converts a pulse train into a bit matrix.
//
// The train alternates mark and space durations in microseconds, starting
// with a mark. A missing trailing space is treated as end of transmission.
// Rows that would exceed maxRows are discarded.
func (s *Slicer) Slice(train []int) *bitbuffer.Matrix {
	m := &bitbuffer.Matrix{}
	rowOpen := false

	for i := 0; i < len(train); i += 2 {
		mark := train[i]
		space := 0
		if i+1 < len(train) {
			space = train[i+1]
		}

		bit, ok := s.classify(mark)
		if !ok {
			// Unclassifiable mark: demod noise, close the row.
			rowOpen = false
			continue
		}

		if !rowOpen {
			if m.NumRows() >= maxRows {
				break
			}
			m.NewRow()
			rowOpen = true
		}
		m.AppendBit(bit)

		if space >= s.timing.ResetGapUS {
			rowOpen = false
		}
	}

	return m
}

// classify maps a mark width to a bit value: short means 1, long means 0.
func (s *Slicer) classify(mark int) (byte, bool) {
	if within(mark, s.timing.ShortUS, s.timing.ToleranceUS) {
		return 1, true
	}
	if within(mark, s.timing.LongUS, s.timing.ToleranceUS) {
		return 0, true
	}
	return 0, false
}

func within(v, target, tolerance int) bool {
	d := v - target
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
