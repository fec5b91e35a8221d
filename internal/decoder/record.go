package decoder

// Model is the device model name carried on every record.
const Model = "Hunter"

// Target is the coarse device category a command addresses.
type Target string

// Target values.
const (
	TargetFan     Target = "Fan"
	TargetLight   Target = "Light"
	TargetUnknown Target = "Unknown"
)

// Record is one validated, decoded remote command.
//
// A record is constructed immediately after validation and handed to the
// output sink; the decoder retains nothing across rows or invocations.
//
// Field presence follows the configured revision: Revision B populates
// Target and Action from the command table, Revision A populates Data
// with the raw payload hex instead. Both field sets exist so downstream
// consumers keying on field presence keep working across revisions.
type Record struct {
	// Model is always "Hunter".
	Model string `json:"model"`

	// RemoteID is the remote's identifier as uppercase hex, one byte per
	// two digits, most-significant byte first.
	RemoteID string `json:"id"`

	// Command is the validated numeric command code.
	Command int `json:"command"`

	// Target and Action are the semantic mapping of Command
	// (Revision B output set).
	Target Target `json:"target,omitempty"`
	Action string `json:"action,omitempty"`

	// Data is the raw post-preamble payload as uppercase hex
	// (Revision A output set).
	Data string `json:"data,omitempty"`

	// Row is the matrix row this record was decoded from. Emission
	// order always follows row order.
	Row int `json:"row"`
}

// Stats summarises one Decode invocation for monitoring. The per-row
// failure counters mirror the three non-fatal decode outcomes.
type Stats struct {
	Rows         int
	Decoded      int
	NoPreamble   int
	ShortMessage int
	BadMessage   int
}
