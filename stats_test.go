package kvconf

import (
	"strings"
	"testing"
)

func TestStats(t *testing.T) {
	s := parse(t, "name=main.c\nport=8080\n", Options{InitialCapacity: 4})
	st := s.Stats()
	want := Stats{
		Mode:      Dynamic,
		Lines:     2,
		Capacity:  4,
		KeySize:   8,
		ValueSize: 10,
		LineAlloc: 2 * DefaultLineSize,
		Alloc:     4*indexSlotSize + 2*DefaultLineSize,
	}
	deepEqual(t, st, want)
	if n := st.TotalSize(); n != len(s.Render()) {
		t.Fatalf("TotalSize = %d, wanted %d", n, len(s.Render()))
	}
	if u := st.Utilization(); u != 20.0/100.0 {
		t.Fatalf("Utilization = %v, wanted 0.2", u)
	}

	var empty Stats
	if empty.Utilization() != 0 {
		t.Fatalf("empty Utilization = %v, wanted 0", empty.Utilization())
	}
}

func TestStats_Slab(t *testing.T) {
	s := parse(t, "a=1\n", Options{Mode: FixedSlab, MaxLines: 4, SlotSize: 32})
	st := s.Stats()
	if st.Capacity != 4 || st.Alloc != 128 || st.LineAlloc != 32-slabHeaderSize {
		t.Fatalf("Stats = %+v", st)
	}
}

func TestDump(t *testing.T) {
	s := parse(t, "name=main.c\nport=8080\n", Options{})

	lines := s.Dump(DumpLines)
	want := "0: off=5 alloc=50 name=main.c\n1: off=5 alloc=50 port=8080\n"
	if lines != want {
		t.Fatalf("Dump(DumpLines) = %q, wanted %q", lines, want)
	}

	all := s.Dump(DumpAll)
	if !strings.HasPrefix(all, "dynamic store: lines = 2, cap = 20,") {
		t.Fatalf("Dump(DumpAll) = %q", all)
	}
	if !strings.HasSuffix(all, dumpSep+"\n"+want) {
		t.Fatalf("Dump(DumpAll) = %q, wanted lines after separator", all)
	}
	if !DumpAll.Contains(DumpStats) || DumpLines.Contains(DumpStats) {
		t.Fatalf("DumpFlags.Contains is wrong")
	}
}

func TestModePolicyStrings(t *testing.T) {
	if Dynamic.String() != "dynamic" || FixedSlab.String() != "slab" || Mode(7).String() != "invalid" {
		t.Fatalf("Mode.String is wrong")
	}
	if Lenient.String() != "lenient" || Strict.String() != "strict" {
		t.Fatalf("Policy.String is wrong")
	}
}
