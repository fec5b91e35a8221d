package decoder

import "fmt"

// Frame constants shared by both protocol revisions.
const (
	// PreambleBits is the length of the frame preamble.
	PreambleBits = 12

	// MinPayloadBits is the minimum number of bits that must follow the
	// preamble for a row to be decodable.
	MinPayloadBits = 66
)

// preamblePattern is the canonical all-ones preamble, packed MSB-first.
// Captures taken with opposite slicer polarity show its complement; those
// are normalised by inverting the whole matrix, not by searching for the
// complemented pattern.
var preamblePattern = []byte{0xFF, 0xF0}

// Revision names a protocol revision of the Hunter remote.
type Revision string

// Known protocol revisions.
const (
	// RevisionA is the original layout: 42-bit id, 12-bit command and
	// inverse with no padding, disjointness complement rule.
	RevisionA Revision = "A"

	// RevisionB is the later layout: 40-bit id behind a guard bit,
	// 10-bit command and inverse padded to byte alignment, exact
	// bitwise-complement rule.
	RevisionB Revision = "B"
)

// Profile is the static configuration of one protocol revision: field
// widths and offsets (relative to the first post-preamble bit), the
// command padding shift, the complement rule, and which output field set
// the revision emits.
//
// Profiles are fixed data. Which one applies to a deployment is a
// configuration choice, never inferred from frame content.
type Profile struct {
	Revision Revision

	// Inverted marks captures whose slicer polarity is flipped, making
	// the preamble appear all-zero. The decoder normalises such a matrix
	// by inverting it once before locating the preamble.
	Inverted bool

	// IDBits and IDOffset locate the remote id field.
	IDBits   int
	IDOffset int

	// CmdBits is the significant width of the command and inverse
	// fields; CmdOffset and InvOffset locate them.
	CmdBits   int
	CmdOffset int
	InvOffset int

	// CmdShift is the right shift that strips byte-alignment padding
	// from the extracted command and inverse values.
	CmdShift uint

	// ExactComplement selects the stricter validation rule: besides
	// command AND inverse being zero, command OR inverse must equal the
	// all-ones value of CmdBits width.
	ExactComplement bool

	// EmitSemantic selects the output field set: true emits target and
	// action from the command table, false emits the raw payload hex.
	EmitSemantic bool
}

// ProfileA returns the Revision A protocol profile.
func ProfileA() Profile {
	return Profile{
		Revision:  RevisionA,
		IDBits:    42,
		IDOffset:  0,
		CmdBits:   12,
		CmdOffset: 42,
		InvOffset: 54,
	}
}

// ProfileB returns the Revision B protocol profile.
func ProfileB() Profile {
	return Profile{
		Revision:        RevisionB,
		IDBits:          40,
		IDOffset:        1,
		CmdBits:         10,
		CmdOffset:       43,
		InvOffset:       55,
		CmdShift:        6,
		ExactComplement: true,
		EmitSemantic:    true,
	}
}

// ProfileFor returns the profile for a revision name ("A" or "B").
func ProfileFor(name string) (Profile, error) {
	switch Revision(name) {
	case RevisionA:
		return ProfileA(), nil
	case RevisionB:
		return ProfileB(), nil
	default:
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownRevision, name)
	}
}

// cmdMask returns the all-ones value of CmdBits width, used by the exact
// complement rule.
func (p Profile) cmdMask() int {
	return (1 << p.CmdBits) - 1
}

// valid applies the revision's complement rule to an extracted
// command/inverse pair.
func (p Profile) valid(cmd, inv int) bool {
	if cmd&inv != 0 {
		return false
	}
	if p.ExactComplement && cmd|inv != p.cmdMask() {
		return false
	}
	return true
}
