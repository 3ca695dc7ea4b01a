package kvconf

import "fmt"

// lineStorage holds the line records of a Store (dynamic or fixed slab).
type lineStorage interface {
	// Len returns the number of live records.
	Len() int

	// Cap returns the number of index slots currently allocated.
	Cap() int

	// Line returns the full key=value bytes of record i. The slice aliases
	// storage memory.
	Line(i int) []byte

	// ValueOffset returns the index of the first value byte within Line(i).
	ValueOffset(i int) int

	// Alloc returns the number of bytes allocated for record i.
	Alloc(i int) int

	// Append adds a new record. On failure the storage is unchanged.
	Append(key, value []byte) (int, error)

	// SetValue replaces the value of record i, growing it if needed. On
	// failure the record is unchanged.
	SetValue(i int, value []byte) error

	// Footprint returns the number of bytes reserved against the budget.
	Footprint() int

	// Release frees everything and returns the reservation to the budget.
	Release()
}

// memBudget accounts for allocations against Options.MemoryLimit.
type memBudget struct {
	limit int
	used  int
}

func (b *memBudget) reserve(n int) error {
	if b.limit > 0 && b.used+n > b.limit {
		return fmt.Errorf("kvconf: reserving %d bytes with %d of %d in use: %w", n, b.used, b.limit, ErrAllocation)
	}
	b.used += n
	return nil
}

func (b *memBudget) release(n int) {
	b.used -= n
	if b.used < 0 {
		panic("kvconf: memory budget underflow")
	}
}

func newStorage(opt *Options, budget *memBudget) (lineStorage, error) {
	switch opt.Mode {
	case Dynamic:
		return newDynamicStorage(opt.InitialCapacity, opt.GrowBy, opt.LineSize, budget)
	case FixedSlab:
		return newSlabStorage(opt.MaxLines, opt.SlotSize, budget)
	default:
		panic(fmt.Sprintf("kvconf: unsupported storage mode %d", opt.Mode))
	}
}
