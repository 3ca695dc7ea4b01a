package kvconf

type Stats struct {
	Mode     Mode
	Lines    int
	Capacity int

	KeySize   int
	ValueSize int
	Quoted    int // values Render writes in quotes
	LineAlloc int // bytes allocated for line text
	Alloc     int // total bytes reserved, index included
}

// TotalSize is the number of bytes Render would produce.
func (st *Stats) TotalSize() int {
	return st.KeySize + st.ValueSize + 2*st.Lines + 2*st.Quoted
}

// Utilization is the share of line allocations holding text.
func (st *Stats) Utilization() float64 {
	if st.LineAlloc == 0 {
		return 0
	}
	return float64(st.KeySize+st.ValueSize+st.Lines) / float64(st.LineAlloc)
}

func (s *Store) Stats() Stats {
	s.checkOpen()
	st := Stats{
		Mode:     s.mode,
		Lines:    s.lines.Len(),
		Capacity: s.lines.Cap(),
		Alloc:    s.lines.Footprint(),
	}
	for i := 0; i < st.Lines; i++ {
		voff := s.lines.ValueOffset(i)
		st.KeySize += voff - 1
		st.ValueSize += len(s.lines.Line(i)) - voff
		if needsQuotes(s.value(i)) {
			st.Quoted++
		}
		st.LineAlloc += s.lines.Alloc(i)
	}
	return st
}
