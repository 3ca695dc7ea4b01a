package kvconf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kjk/common/atomicfile"
)

// Render returns every line as key=value followed by a newline. Values that
// would not read back as themselves unquoted are written as key="value".
// Comments and original formatting are not retained, so this is not a round
// trip of the loaded file, but parsing the output yields the same pairs.
func (s *Store) Render() []byte {
	s.checkOpen()
	var bb bytesBuilder
	bb.EnsureExtra(s.renderedSize())
	s.render(&bb)
	return bb.Buf
}

func (s *Store) renderedSize() int {
	var n int
	for i := 0; i < s.lines.Len(); i++ {
		n += len(s.lines.Line(i)) + 1
		if needsQuotes(s.value(i)) {
			n += 2
		}
	}
	return n
}

func (s *Store) render(bb *bytesBuilder) {
	for i := 0; i < s.lines.Len(); i++ {
		v := s.value(i)
		if needsQuotes(v) {
			bb.Buf = appendRaw(bb.Buf, s.key(i))
			_, _ = bb.Write([]byte{'=', '"'})
			bb.Buf = appendRaw(bb.Buf, v)
			_ = bb.WriteByte('"')
		} else {
			bb.Buf = appendRaw(bb.Buf, s.lines.Line(i))
		}
		_ = bb.WriteByte('\n')
	}
}

// needsQuotes reports whether v would lex as something else when written
// unquoted: not a raw string (letter first, no newline or '#', no trailing
// blank) and not a valid number.
func needsQuotes(v []byte) bool {
	if len(v) == 0 {
		return true
	}
	c := v[0]
	switch {
	case charClass[c]&clsLetter != 0:
		if charClass[v[len(v)-1]]&clsBlank != 0 {
			return true
		}
		return bytes.IndexByte(v, '\n') >= 0 || bytes.IndexByte(v, '#') >= 0
	case charClass[c]&clsNumber != 0:
		return !isNumber(v)
	default:
		return true
	}
}

// renderable reports whether v can be written so that it reads back as v.
// A quoted value ends at the first '"', so a value that needs quotes must
// not contain one.
func renderable(v []byte) bool {
	return !needsQuotes(v) || bytes.IndexByte(v, '"') < 0
}

// WriteTo implements io.WriterTo.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.Render())
	return int64(n), err
}

// Save replaces the file at path with the rendered store. The file is
// written to a temporary sibling and renamed, so readers never observe a
// partial file.
func (s *Store) Save(path string) error {
	return writeFileAtomic(path, s.Render())
}

func writeFileAtomic(path string, data []byte) error {
	f, err := atomicfile.New(path)
	if err != nil {
		return fmt.Errorf("kvconf: save %s: %w", path, err)
	}
	defer f.RemoveIfNotClosed()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("kvconf: save %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("kvconf: save %s: %w", path, err)
	}
	return nil
}
