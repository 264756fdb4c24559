package obs

// History is a bounded ring of past observation rows, sized to the largest
// configured lookback plus one. The first insertion pre-fills every slot, so
// a lookback deeper than the number of insertions reads as a repeat of the
// oldest available row rather than an undefined value.
type History struct {
	rows [][]float64
	size int
	pos  int
	used bool
}

// NewHistory returns a buffer able to serve lookbacks up to maxOffset.
func NewHistory(maxOffset int) *History {
	return &History{
		rows: make([][]float64, maxOffset+1),
		size: maxOffset + 1,
		pos:  -1,
	}
}

// Insert appends a copy of row, evicting the oldest slot on overflow.
func (h *History) Insert(row []float64) {
	c := append([]float64(nil), row...)
	if !h.used {
		for i := range h.rows {
			h.rows[i] = c
		}
		h.pos = 0
		h.used = true
		return
	}
	h.pos = (h.pos + 1) % h.size
	h.rows[h.pos] = c
}

// Build concatenates the rows at the requested lookbacks, in the order the
// offsets are configured. Offset 0 is the most recent insertion.
func (h *History) Build(offsets []int) []float64 {
	if !h.used {
		return nil
	}
	var out []float64
	for _, off := range offsets {
		idx := ((h.pos-off)%h.size + h.size) % h.size
		out = append(out, h.rows[idx]...)
	}
	return out
}
