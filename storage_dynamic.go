package kvconf

import "fmt"

// indexSlotSize approximates the bytes one index slot costs: a slice header
// for the line plus an int offset.
const indexSlotSize = 32

// dynamicStorage keeps every record in its own buffer. The index is a pair
// of parallel slices that grows by a fixed increment.
type dynamicStorage struct {
	lines    [][]byte
	offsets  []int
	growBy   int
	lineSize int
	budget   *memBudget
	reserved int
}

func newDynamicStorage(capacity, growBy, lineSize int, budget *memBudget) (*dynamicStorage, error) {
	if capacity <= 0 || growBy <= 0 || lineSize <= 0 {
		panic(fmt.Sprintf("kvconf: invalid dynamic storage params %d/%d/%d", capacity, growBy, lineSize))
	}
	s := &dynamicStorage{
		growBy:   growBy,
		lineSize: lineSize,
		budget:   budget,
	}
	if err := s.reserve(capacity * indexSlotSize); err != nil {
		return nil, err
	}
	s.lines = make([][]byte, 0, capacity)
	s.offsets = make([]int, 0, capacity)
	return s, nil
}

func (s *dynamicStorage) reserve(n int) error {
	if err := s.budget.reserve(n); err != nil {
		return err
	}
	s.reserved += n
	return nil
}

func (s *dynamicStorage) release(n int) {
	s.budget.release(n)
	s.reserved -= n
}

func (s *dynamicStorage) Len() int { return len(s.lines) }

func (s *dynamicStorage) Cap() int { return cap(s.lines) }

func (s *dynamicStorage) Line(i int) []byte { return s.lines[i] }

func (s *dynamicStorage) ValueOffset(i int) int { return s.offsets[i] }

func (s *dynamicStorage) Alloc(i int) int { return cap(s.lines[i]) }

func (s *dynamicStorage) Footprint() int { return s.reserved }

// growIndex adds growBy slots, keeping existing entries in order.
func (s *dynamicStorage) growIndex() error {
	n := len(s.lines)
	newCap := cap(s.lines) + s.growBy
	if err := s.reserve(s.growBy * indexSlotSize); err != nil {
		return err
	}
	lines := make([][]byte, n, newCap)
	copy(lines, s.lines)
	offsets := make([]int, n, newCap)
	copy(offsets, s.offsets)
	s.lines, s.offsets = lines, offsets
	return nil
}

func (s *dynamicStorage) Append(key, value []byte) (int, error) {
	alloc := s.lineSize
	if len(key) >= s.lineSize {
		alloc = s.lineSize + len(key)
	}
	voff := len(key) + 1
	final := growCap(alloc, voff+len(value))
	if err := s.reserve(final); err != nil {
		return 0, err
	}
	if len(s.lines) == cap(s.lines) {
		if err := s.growIndex(); err != nil {
			s.release(final)
			return 0, err
		}
	}

	line := make([]byte, 0, alloc)
	line = append(line, key...)
	line = append(line, '=')
	line = ensureCapacity(line, voff+len(value))
	line = append(line, value...)

	s.lines = append(s.lines, line)
	s.offsets = append(s.offsets, voff)
	return len(s.lines) - 1, nil
}

func (s *dynamicStorage) SetValue(i int, value []byte) error {
	line, voff := s.lines[i], s.offsets[i]
	need := voff + len(value)
	if need > cap(line) {
		oldCap := cap(line)
		newCap := growCap(oldCap, need)
		if err := s.reserve(newCap - oldCap); err != nil {
			return err
		}
		grown := make([]byte, voff, newCap)
		copy(grown, line[:voff])
		line = grown
	}
	s.lines[i] = append(line[:voff], value...)
	return nil
}

func (s *dynamicStorage) Release() {
	s.release(s.reserved)
	s.lines, s.offsets = nil, nil
}
