package kvconf

import (
	"fmt"
	"strings"
)

type DumpFlags uint64

const (
	DumpLines = DumpFlags(1 << iota)
	DumpStats

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var dumpSep = strings.Repeat("-", 60)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump describes the storage layout: per line, the value offset, the
// allocation and the text.
func (s *Store) Dump(f DumpFlags) string {
	s.checkOpen()
	var buf strings.Builder
	if f.Contains(DumpStats) {
		st := s.Stats()
		fmt.Fprintf(&buf, "%s store: lines = %d, cap = %d, key_size = %d, value_size = %d, line_alloc = %d, alloc = %d\n", st.Mode, st.Lines, st.Capacity, st.KeySize, st.ValueSize, st.LineAlloc, st.Alloc)
	}
	if f.Contains(DumpLines) {
		if f.Contains(DumpStats) {
			fmt.Fprintln(&buf, dumpSep)
		}
		for i := 0; i < s.lines.Len(); i++ {
			fmt.Fprintf(&buf, "%d: off=%d alloc=%d %s\n", i, s.lines.ValueOffset(i), s.lines.Alloc(i), s.lines.Line(i))
		}
	}
	return buf.String()
}
