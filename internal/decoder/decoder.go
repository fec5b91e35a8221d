package decoder

import (
	"fmt"

	"github.com/nerrad567/hunter-rf-core/internal/bitbuffer"
)

// Logger is the diagnostic sink the decoder writes to. Debug carries the
// per-row failure reasons ("no preamble", "short message", "bad
// message"); Trace carries raw bit dumps for deep tracing. Both are
// advisory and never affect control flow.
//
// Compatible with logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Trace(msg string, args ...any)
}

// nopLogger discards all diagnostics.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Trace(string, ...any) {}

// Decoder decodes bit matrices against one fixed protocol profile.
//
// A Decoder is stateless between calls: each Decode receives a fresh
// matrix and retains nothing afterwards. Safe for concurrent use as long
// as each call owns its matrix.
type Decoder struct {
	profile Profile
	log     Logger
}

// New creates a Decoder for the given profile. A nil logger disables
// diagnostics.
func New(profile Profile, log Logger) *Decoder {
	if log == nil {
		log = nopLogger{}
	}
	return &Decoder{profile: profile, log: log}
}

// Profile returns the decoder's protocol profile.
func (d *Decoder) Profile() Profile {
	return d.profile
}

// Decode scans every row of the matrix for a valid frame and returns the
// decoded records in row order, together with per-invocation statistics.
//
// Rows are processed independently: a row failing any step is counted,
// logged at debug level and skipped. An empty result is "no valid frame
// in this capture", not an error.
//
// If the profile marks the capture polarity as inverted, the matrix is
// normalised in place (flipped exactly once) before scanning.
func (d *Decoder) Decode(m *bitbuffer.Matrix) ([]Record, Stats) {
	if d.profile.Inverted {
		m.Invert()
	}

	stats := Stats{Rows: m.NumRows()}
	var records []Record

	for r := 0; r < m.NumRows(); r++ {
		d.log.Trace("row bits",
			"row", r,
			"len", m.RowLen(r),
			"bits", fmt.Sprintf("%X", m.Extract(r, 0, m.RowLen(r))),
		)

		rec, err := d.decodeRow(m, r)
		switch err {
		case nil:
			records = append(records, rec)
			stats.Decoded++
		case ErrNoPreamble:
			d.log.Debug("no preamble", "row", r)
			stats.NoPreamble++
		case ErrShortMessage:
			d.log.Debug("short message", "row", r)
			stats.ShortMessage++
		case ErrBadMessage:
			d.log.Debug("bad message", "row", r)
			stats.BadMessage++
		}
	}

	return records, stats
}

// decodeRow runs the locate/extract/validate/map pipeline on one row.
func (d *Decoder) decodeRow(m *bitbuffer.Matrix, r int) (Record, error) {
	p := d.profile

	pos := m.Search(r, 0, preamblePattern, PreambleBits)
	if pos == bitbuffer.NotFound {
		return Record{}, ErrNoPreamble
	}
	start := pos + PreambleBits

	if m.RowLen(r)-start < MinPayloadBits {
		return Record{}, ErrShortMessage
	}

	// Command and inverse command mask each other out in a good message.
	cmd, ok := d.extractValue(m, r, start+p.CmdOffset, p.CmdBits)
	if !ok {
		return Record{}, ErrShortMessage
	}
	inv, ok := d.extractValue(m, r, start+p.InvOffset, p.CmdBits)
	if !ok {
		return Record{}, ErrShortMessage
	}
	if !p.valid(cmd, inv) {
		return Record{}, ErrBadMessage
	}

	id := m.Extract(r, start+p.IDOffset, p.IDBits)
	if id == nil {
		return Record{}, ErrShortMessage
	}

	rec := Record{
		Model:    Model,
		RemoteID: fmt.Sprintf("%X", id),
		Command:  cmd,
		Row:      r,
	}

	if p.EmitSemantic {
		rec.Target, rec.Action = Classify(cmd)
	} else {
		rec.Data = fmt.Sprintf("%X", m.Extract(r, start, MinPayloadBits))
	}

	return rec, nil
}

// extractValue pulls a bit field into an integer, MSB first, and strips
// the profile's byte-alignment padding.
func (d *Decoder) extractValue(m *bitbuffer.Matrix, r, start, bits int) (int, bool) {
	raw := m.Extract(r, start, bits)
	if raw == nil {
		return 0, false
	}
	v := 0
	for _, b := range raw {
		v = v<<8 | int(b)
	}
	return v >> d.profile.CmdShift, true
}
