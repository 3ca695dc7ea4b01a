package kvconf

import (
	"encoding/binary"
	"fmt"
)

// slabHeaderSize is the per-slot header: uint32 value offset, uint32 line length.
const slabHeaderSize = 8

// slabStorage is one pre-sized buffer of fixed slots. It never grows.
type slabStorage struct {
	buf      []byte
	slotSize int
	maxLines int
	size     int
	budget   *memBudget
}

func newSlabStorage(maxLines, slotSize int, budget *memBudget) (*slabStorage, error) {
	if maxLines <= 0 || slotSize <= slabHeaderSize+1 {
		panic(fmt.Sprintf("kvconf: invalid slab params %d/%d", maxLines, slotSize))
	}
	if err := budget.reserve(maxLines * slotSize); err != nil {
		return nil, err
	}
	return &slabStorage{
		buf:      make([]byte, maxLines*slotSize),
		slotSize: slotSize,
		maxLines: maxLines,
		budget:   budget,
	}, nil
}

func (s *slabStorage) slot(i int) []byte {
	if i < 0 || i >= s.size {
		panic(fmt.Sprintf("kvconf: slot %d out of range [0, %d)", i, s.size))
	}
	off := i * s.slotSize
	return s.buf[off : off+s.slotSize]
}

func (s *slabStorage) Len() int { return s.size }

func (s *slabStorage) Cap() int { return s.maxLines }

func (s *slabStorage) Line(i int) []byte {
	slot := s.slot(i)
	n := int(binary.LittleEndian.Uint32(slot[4:]))
	return slot[slabHeaderSize : slabHeaderSize+n : slabHeaderSize+n]
}

func (s *slabStorage) ValueOffset(i int) int {
	return int(binary.LittleEndian.Uint32(s.slot(i)))
}

func (s *slabStorage) Alloc(i int) int {
	s.slot(i)
	return s.slotSize - slabHeaderSize
}

func (s *slabStorage) Footprint() int { return len(s.buf) }

func (s *slabStorage) Append(key, value []byte) (int, error) {
	if s.size == s.maxLines {
		return 0, fmt.Errorf("kvconf: all %d slots in use: %w", s.maxLines, ErrCapacityOverflow)
	}
	n := len(key) + 1 + len(value)
	if n > s.slotSize-slabHeaderSize {
		return 0, fmt.Errorf("kvconf: line of %d bytes exceeds slot of %d: %w", n, s.slotSize-slabHeaderSize, ErrCapacityOverflow)
	}
	i := s.size
	s.size++
	slot := s.slot(i)
	text := slot[slabHeaderSize:]
	copy(text, key)
	text[len(key)] = '='
	copy(text[len(key)+1:], value)
	binary.LittleEndian.PutUint32(slot, uint32(len(key)+1))
	binary.LittleEndian.PutUint32(slot[4:], uint32(n))
	return i, nil
}

func (s *slabStorage) SetValue(i int, value []byte) error {
	slot := s.slot(i)
	voff := int(binary.LittleEndian.Uint32(slot))
	n := voff + len(value)
	if n > s.slotSize-slabHeaderSize {
		return fmt.Errorf("kvconf: line of %d bytes exceeds slot of %d: %w", n, s.slotSize-slabHeaderSize, ErrCapacityOverflow)
	}
	copy(slot[slabHeaderSize+voff:], value)
	binary.LittleEndian.PutUint32(slot[4:], uint32(n))
	return nil
}

func (s *slabStorage) Release() {
	if s.buf != nil {
		s.budget.release(len(s.buf))
	}
	s.buf = nil
	s.size = 0
}
