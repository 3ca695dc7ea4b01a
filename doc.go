/*
Package kvconf reads and writes a minimal key=value config format, keeping
the pairs in a compact, mutable line store.

	# comment
	name = main.c
	port=8080
	ratio = .5
	note = "hello, world!"

We implement:

1. A single-pass lexer. Every byte is classified through a 256-entry table
(blank, newline, letter, digit, number) and pairs are copied straight into
the line store; there is no token stream.

2. A line store. Each pair is one line record holding `key=value` in a single
buffer plus the offset of the first value byte.

3. Accessors: Get (first match wins), Set (update in place or append), typed
helpers, and Render, which writes every line back as `key=value\n`, quoting
values that would not otherwise read back as themselves.

4. Adapters: Load (mmap), Save (atomic rename), bbolt, msgpack snapshots and
a hot-reloading Reloader.

# Format

Keys are a run of letters and underscores, or a run of digits. Values are a
raw string (up to the newline or `#`, trailing blanks trimmed), a quoted
string (anything between a pair of `"`, quotes stripped), an integer or a
float (optional `-`, digits, at most one `.`). Whitespace around `=` is
ignored. A key without a value on its line is dropped.

Lines with an invalid key or value are skipped and logged under the Lenient
policy, or abort the load with a *LexError under the Strict policy.

# Technical Details

**Dynamic storage.**
Each line is its own buffer, first allocated Options.LineSize bytes. When a
value no longer fits, the buffer is reallocated to at least double its size
and the `key=` prefix is copied over. The index (lines and value offsets) is
grown by Options.GrowBy slots at a time, never by a factor, so small configs
stay small.

**Fixed slab.**
One buffer of Options.MaxLines slots of Options.SlotSize bytes each. A slot is
an 8-byte header (value offset and line length, little-endian uint32s)
followed by the line text. Nothing ever grows; a line or line count that does
not fit fails with ErrCapacityOverflow.

**Memory limit.**
Every allocation is reserved against Options.MemoryLimit first. A failed
reservation during a load discards the whole load; during Set it leaves the
store untouched.

**Views.**
Get and Set return a View aliasing store memory. A View goes stale when its
line is written or the store is closed, and reading a stale View panics. Use
View.String or Store.Lookup to keep a value.

A Store is not safe for concurrent use. Reloader wraps one behind a RWMutex
and replaces it wholesale when the file changes.
*/
package kvconf
