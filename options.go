package kvconf

import "log/slog"

// Mode selects the line storage strategy.
type Mode int

const (
	// Dynamic stores each line in its own growable buffer.
	Dynamic Mode = iota
	// FixedSlab stores lines in one pre-sized buffer of fixed slots.
	FixedSlab
)

func (m Mode) String() string {
	switch m {
	case Dynamic:
		return "dynamic"
	case FixedSlab:
		return "slab"
	default:
		return "invalid"
	}
}

// Policy decides what happens to a line with an invalid key or value.
type Policy int

const (
	// Lenient skips the offending line and logs a warning.
	Lenient Policy = iota
	// Strict aborts the load with a *LexError.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

const (
	DefaultInitialCapacity = 20
	DefaultGrowBy          = 10
	DefaultLineSize        = 50
	DefaultSlotSize        = 128
	DefaultMaxLines        = 64
)

type Options struct {
	Mode   Mode
	Policy Policy

	InitialCapacity int // index slots allocated up front (dynamic)
	GrowBy          int // index slots added when full (dynamic)
	LineSize        int // initial allocation of a line (dynamic)

	SlotSize int // bytes per slot including the 8-byte header (slab)
	MaxLines int // number of slots (slab)

	// MemoryLimit caps the bytes a store may allocate; 0 means no limit.
	MemoryLimit int

	Logger  *slog.Logger
	Verbose bool
}

func (o Options) withDefaults() Options {
	if o.InitialCapacity <= 0 {
		o.InitialCapacity = DefaultInitialCapacity
	}
	if o.GrowBy <= 0 {
		o.GrowBy = DefaultGrowBy
	}
	if o.LineSize <= 0 {
		o.LineSize = DefaultLineSize
	}
	if o.SlotSize <= 0 {
		o.SlotSize = DefaultSlotSize
	}
	if o.MaxLines <= 0 {
		o.MaxLines = DefaultMaxLines
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
