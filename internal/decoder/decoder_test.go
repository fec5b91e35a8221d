package decoder

import (
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/hunter-rf-core/internal/bitbuffer"
)

// appendBits fills the most recent row from a '0'/'1' string.
func appendBits(m *bitbuffer.Matrix, s string) {
	for _, c := range s {
		if c == '1' {
			m.AppendBit(1)
		} else {
			m.AppendBit(0)
		}
	}
}

// bits renders the low n bits of v as a '0'/'1' string, MSB first.
func bits(v uint64, n int) string {
	var sb strings.Builder
	for i := n - 1; i >= 0; i-- {
		if v&(1<<uint(i)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

const preamble = "111111111111"

// payloadB lays out a Revision B payload: guard bit, 40-bit id, 2 guard
// bits, 10-bit command, 2 guard bits, 10-bit inverse, 1 trailing pad.
func payloadB(id uint64, cmd, inv int) string {
	return "0" + bits(id, 40) + "00" + bits(uint64(cmd), 10) + "00" + bits(uint64(inv), 10) + "0"
}

// payloadA lays out a Revision A payload: 42-bit id, 12-bit command,
// 12-bit inverse, no padding.
func payloadA(id uint64, cmd, inv int) string {
	return bits(id, 42) + bits(uint64(cmd), 12) + bits(uint64(inv), 12)
}

// invert flips a '0'/'1' string bit-for-bit.
func invert(s string) string {
	var sb strings.Builder
	for _, c := range s {
		if c == '1' {
			sb.WriteByte('0')
		} else {
			sb.WriteByte('1')
		}
	}
	return sb.String()
}

func TestDecodeScenarioFanSpeed(t *testing.T) {
	// 40-bit id 0x0102030405, command 4 with exact 10-bit complement.
	var m bitbuffer.Matrix
	appendBits(&m, preamble+payloadB(0x0102030405, 4, 0x3FB))

	d := New(ProfileB(), nil)
	records, stats := d.Decode(&m)

	if len(records) != 1 {
		t.Fatalf("Decode() produced %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Model != "Hunter" {
		t.Errorf("Model = %q, want Hunter", rec.Model)
	}
	if rec.RemoteID != "0102030405" {
		t.Errorf("RemoteID = %q, want 0102030405", rec.RemoteID)
	}
	if rec.Command != 4 {
		t.Errorf("Command = %d, want 4", rec.Command)
	}
	if rec.Target != TargetFan {
		t.Errorf("Target = %q, want Fan", rec.Target)
	}
	if rec.Action != "Speed 33%" {
		t.Errorf("Action = %q, want Speed 33%%", rec.Action)
	}
	if rec.Data != "" {
		t.Errorf("Data = %q, want empty under Revision B", rec.Data)
	}
	if stats.Decoded != 1 || stats.Rows != 1 {
		t.Errorf("Stats = %+v, want 1 row 1 decoded", stats)
	}
}

func TestDecodeScenarioBadMessage(t *testing.T) {
	// Identical frame but command and inverse overlap.
	var m bitbuffer.Matrix
	appendBits(&m, preamble+payloadB(0x0102030405, 4, 0x3FF))

	var log capturingLogger
	d := New(ProfileB(), &log)
	records, stats := d.Decode(&m)

	if len(records) != 0 {
		t.Fatalf("Decode() produced %d records, want 0", len(records))
	}
	if stats.BadMessage != 1 {
		t.Errorf("Stats.BadMessage = %d, want 1", stats.BadMessage)
	}
	if !log.sawDebug("bad message") {
		t.Errorf("expected a 'bad message' diagnostic, got %v", log.debugMsgs)
	}
}

func TestDecodeScenarioMultiRow(t *testing.T) {
	// Row 0 garbled, rows 1 and 2 carry light command 138 ("On").
	valid := preamble + payloadB(0xAABBCCDDEE, 138, 0x375)

	var m bitbuffer.Matrix
	appendBits(&m, "010010110100101101001011")
	m.NewRow()
	appendBits(&m, valid)
	m.NewRow()
	appendBits(&m, valid)

	d := New(ProfileB(), nil)
	records, stats := d.Decode(&m)

	if len(records) != 2 {
		t.Fatalf("Decode() produced %d records, want 2", len(records))
	}
	for i, rec := range records {
		if rec.Target != TargetLight || rec.Action != "On" {
			t.Errorf("record %d = (%s, %s), want (Light, On)", i, rec.Target, rec.Action)
		}
	}
	if records[0].Row != 1 || records[1].Row != 2 {
		t.Errorf("row order = (%d, %d), want (1, 2)", records[0].Row, records[1].Row)
	}
	if stats.NoPreamble != 1 {
		t.Errorf("Stats.NoPreamble = %d, want 1", stats.NoPreamble)
	}
}

func TestDecodePreambleAfterLeadingGarbage(t *testing.T) {
	// The preamble must not be assumed to start at offset 0.
	var m bitbuffer.Matrix
	appendBits(&m, "00101"+preamble+payloadB(0x0000000001, 4, 0x3FB))

	d := New(ProfileB(), nil)
	records, _ := d.Decode(&m)

	if len(records) != 1 {
		t.Fatalf("Decode() produced %d records, want 1", len(records))
	}
	if records[0].Command != 4 {
		t.Errorf("Command = %d, want 4", records[0].Command)
	}
}

func TestDecodeShortMessage(t *testing.T) {
	// Preamble present but payload truncated below 66 bits.
	var m bitbuffer.Matrix
	appendBits(&m, preamble+"010101010101010101010101")

	var log capturingLogger
	d := New(ProfileB(), &log)
	records, stats := d.Decode(&m)

	if len(records) != 0 {
		t.Fatalf("Decode() produced %d records, want 0", len(records))
	}
	if stats.ShortMessage != 1 {
		t.Errorf("Stats.ShortMessage = %d, want 1", stats.ShortMessage)
	}
	if !log.sawDebug("short message") {
		t.Errorf("expected a 'short message' diagnostic, got %v", log.debugMsgs)
	}
}

func TestDecodeInvertedCapture(t *testing.T) {
	// The same frame captured with flipped slicer polarity: the whole
	// row, preamble included, arrives complemented.
	p := ProfileB()
	p.Inverted = true

	var m bitbuffer.Matrix
	appendBits(&m, invert(preamble+payloadB(0x0102030405, 4, 0x3FB)))

	d := New(p, nil)
	records, _ := d.Decode(&m)

	if len(records) != 1 {
		t.Fatalf("Decode() produced %d records, want 1", len(records))
	}
	if records[0].Command != 4 || records[0].RemoteID != "0102030405" {
		t.Errorf("record = %+v, want command 4 from 0102030405", records[0])
	}
}

func TestDecodeRevisionA(t *testing.T) {
	// Revision A emits the raw payload hex instead of target/action, and
	// its command value keeps the original byte-aligned form
	// (12 extracted bits left-aligned in 16).
	var m bitbuffer.Matrix
	appendBits(&m, preamble+payloadA(0x0102030405A, 0x042, 0xF81))

	d := New(ProfileA(), nil)
	records, _ := d.Decode(&m)

	if len(records) != 1 {
		t.Fatalf("Decode() produced %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Command != 0x042<<4 {
		t.Errorf("Command = %d, want %d", rec.Command, 0x042<<4)
	}
	if rec.Target != "" || rec.Action != "" {
		t.Errorf("Target/Action = (%q, %q), want empty under Revision A", rec.Target, rec.Action)
	}
	if len(rec.RemoteID) != 12 {
		t.Errorf("RemoteID = %q, want 6 bytes of hex", rec.RemoteID)
	}
	if len(rec.Data) != 18 {
		t.Errorf("Data = %q, want 9 bytes of hex", rec.Data)
	}
}

func TestComplementRuleRevisionA(t *testing.T) {
	// Revision A only requires disjointness, not an exact complement.
	tests := []struct {
		name   string
		cmd    int
		inv    int
		accept bool
	}{
		{"exact complement", 0x042, 0xFBD, true},
		{"disjoint but not exact", 0x042, 0xF81, true},
		{"both zero", 0x000, 0x000, true},
		{"overlapping bit", 0x042, 0x043, false},
		{"identical", 0x042, 0x042, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m bitbuffer.Matrix
			appendBits(&m, preamble+payloadA(0x3FF00FF00, tt.cmd, tt.inv))

			records, _ := New(ProfileA(), nil).Decode(&m)
			if got := len(records) == 1; got != tt.accept {
				t.Errorf("accepted = %v, want %v", got, tt.accept)
			}
		})
	}
}

func TestComplementRuleRevisionB(t *testing.T) {
	// Revision B requires disjointness AND an exact 10-bit complement.
	tests := []struct {
		name   string
		cmd    int
		inv    int
		accept bool
	}{
		{"exact complement", 4, 0x3FB, true},
		{"disjoint only", 5, 2, false},
		{"overlapping bit", 4, 0x3FF, false},
		{"all ones inverse of zero", 0, 0x3FF, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m bitbuffer.Matrix
			appendBits(&m, preamble+payloadB(0x1122334455, tt.cmd, tt.inv))

			records, _ := New(ProfileB(), nil).Decode(&m)
			if got := len(records) == 1; got != tt.accept {
				t.Errorf("accepted = %v, want %v", got, tt.accept)
			}
		})
	}
}

func TestProfileFor(t *testing.T) {
	a, err := ProfileFor("A")
	if err != nil || a.Revision != RevisionA {
		t.Errorf("ProfileFor(A) = (%v, %v)", a.Revision, err)
	}
	b, err := ProfileFor("B")
	if err != nil || b.Revision != RevisionB {
		t.Errorf("ProfileFor(B) = (%v, %v)", b.Revision, err)
	}
	if _, err := ProfileFor("C"); !errors.Is(err, ErrUnknownRevision) {
		t.Errorf("ProfileFor(C) err = %v, want ErrUnknownRevision", err)
	}
}

// capturingLogger records diagnostics for assertions.
type capturingLogger struct {
	debugMsgs []string
	traceMsgs []string
}

func (l *capturingLogger) Debug(msg string, _ ...any) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *capturingLogger) Trace(msg string, _ ...any) {
	l.traceMsgs = append(l.traceMsgs, msg)
}

func (l *capturingLogger) sawDebug(msg string) bool {
	for _, m := range l.debugMsgs {
		if m == msg {
			return true
		}
	}
	return false
}
