package bitbuffer

// bitsPerByte is the packing density of a row's backing store.
const bitsPerByte = 8

// NotFound is returned by Search when the pattern does not occur.
const NotFound = -1

// row is one demodulated transmission attempt, packed MSB-first.
type row struct {
	bits   []byte
	length int
}

// Matrix is an ordered collection of candidate bit rows.
//
// The zero value is an empty matrix ready for use.
type Matrix struct {
	rows []row
}

// NumRows returns the number of rows in the matrix.
func (m *Matrix) NumRows() int {
	return len(m.rows)
}

// RowLen returns the bit length of the given row.
// Returns 0 for an out-of-range row index.
func (m *Matrix) RowLen(r int) int {
	if r < 0 || r >= len(m.rows) {
		return 0
	}
	return m.rows[r].length
}

// NewRow starts a new empty row. Subsequent AppendBit calls fill it.
func (m *Matrix) NewRow() {
	m.rows = append(m.rows, row{})
}

// AppendBit appends a single bit (0 or 1) to the most recent row,
// creating the first row if the matrix is empty. Any non-zero value
// is stored as 1.
func (m *Matrix) AppendBit(bit byte) {
	if len(m.rows) == 0 {
		m.NewRow()
	}
	r := &m.rows[len(m.rows)-1]
	if r.length%bitsPerByte == 0 {
		r.bits = append(r.bits, 0)
	}
	if bit != 0 {
		r.bits[r.length/bitsPerByte] |= 0x80 >> (r.length % bitsPerByte)
	}
	r.length++
}

// Bit returns the bit at the given position, or 0 if out of range.
func (m *Matrix) Bit(r, pos int) byte {
	if r < 0 || r >= len(m.rows) {
		return 0
	}
	rw := m.rows[r]
	if pos < 0 || pos >= rw.length {
		return 0
	}
	if rw.bits[pos/bitsPerByte]&(0x80>>(pos%bitsPerByte)) != 0 {
		return 1
	}
	return 0
}

// Search scans row r from bit offset `from` for the first occurrence of
// the most-significant patternBits of pattern (packed MSB-first).
//
// Returns the bit index of the first match, or NotFound. The pattern may
// start at any bit offset; leading garbage before it is expected.
func (m *Matrix) Search(r, from int, pattern []byte, patternBits int) int {
	if r < 0 || r >= len(m.rows) || patternBits <= 0 {
		return NotFound
	}
	if patternBits > len(pattern)*bitsPerByte {
		return NotFound
	}
	if from < 0 {
		from = 0
	}
	last := m.rows[r].length - patternBits
	for pos := from; pos <= last; pos++ {
		if m.matchAt(r, pos, pattern, patternBits) {
			return pos
		}
	}
	return NotFound
}

// matchAt reports whether the pattern occurs at exactly bit offset pos.
func (m *Matrix) matchAt(r, pos int, pattern []byte, patternBits int) bool {
	for i := 0; i < patternBits; i++ {
		want := byte(0)
		if pattern[i/bitsPerByte]&(0x80>>(i%bitsPerByte)) != 0 {
			want = 1
		}
		if m.Bit(r, pos+i) != want {
			return false
		}
	}
	return true
}

// Extract copies numBits bits of row r starting at bit offset start into
// a fresh byte slice, packed MSB-first. A trailing partial byte is
// left-aligned with zero padding in its low bits.
//
// Returns nil if the requested range does not lie fully inside the row.
func (m *Matrix) Extract(r, start, numBits int) []byte {
	if r < 0 || r >= len(m.rows) || start < 0 || numBits <= 0 {
		return nil
	}
	if start+numBits > m.rows[r].length {
		return nil
	}
	out := make([]byte, (numBits+bitsPerByte-1)/bitsPerByte)
	for i := 0; i < numBits; i++ {
		if m.Bit(r, start+i) != 0 {
			out[i/bitsPerByte] |= 0x80 >> (i % bitsPerByte)
		}
	}
	return out
}

// Invert flips every bit of every row in place.
//
// Applying Invert twice restores the matrix bit-for-bit. Bits beyond a
// row's length are kept zero so backing bytes stay canonical.
func (m *Matrix) Invert() {
	for i := range m.rows {
		r := &m.rows[i]
		for j := range r.bits {
			r.bits[j] = ^r.bits[j]
		}
		// Clear padding bits in the trailing partial byte.
		if rem := r.length % bitsPerByte; rem != 0 {
			r.bits[len(r.bits)-1] &= ^byte(0) << (bitsPerByte - rem)
		}
	}
}

// Equal reports whether two matrices hold identical rows bit-for-bit.
func (m *Matrix) Equal(other *Matrix) bool {
	if m.NumRows() != other.NumRows() {
		return false
	}
	for r := 0; r < m.NumRows(); r++ {
		if m.RowLen(r) != other.RowLen(r) {
			return false
		}
		for i := 0; i < m.RowLen(r); i++ {
			if m.Bit(r, i) != other.Bit(r, i) {
				return false
			}
		}
	}
	return true
}
