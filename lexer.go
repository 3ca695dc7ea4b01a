package kvconf

import (
	"bytes"
	"context"
	"log/slog"
)

const (
	clsBlank   uint8 = 1 << iota // ' ', '\t', '\r'
	clsNewline                   // '\n'
	clsLetter                    // A-Z, a-z, '_'
	clsDigit                     // 0-9
	clsNumber                    // 0-9, '-', '.'
)

var charClass = func() (t [256]uint8) {
	t[' '] = clsBlank
	t['\t'] = clsBlank
	t['\r'] = clsBlank
	t['\n'] = clsNewline
	for c := 'a'; c <= 'z'; c++ {
		t[c] = clsLetter
		t[c-'a'+'A'] = clsLetter
	}
	t['_'] = clsLetter
	for c := '0'; c <= '9'; c++ {
		t[c] = clsDigit | clsNumber
	}
	t['-'] = clsNumber
	t['.'] = clsNumber
	return
}()

// lexer is a single forward pass over the source; there is no token stream,
// every accepted pair goes straight to emit.
type lexer struct {
	data    []byte
	pos     int
	policy  Policy
	logger  *slog.Logger
	verbose bool
	emit    func(key, value []byte) error

	pairs     int
	skipped   int
	discarded int
}

func (lx *lexer) run() error {
	data := lx.data
	for lx.pos < len(data) {
		c := data[lx.pos]
		switch {
		case charClass[c]&(clsBlank|clsNewline) != 0:
			lx.pos++
		case c == '#':
			lx.skipLine()
		case c == '=':
			if err := lx.reject(lx.pos, "missing key before '='"); err != nil {
				return err
			}
		default:
			if err := lx.pair(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (lx *lexer) pair() error {
	data := lx.data
	start := lx.pos
	c := data[start]

	var run uint8
	switch {
	case charClass[c]&clsLetter != 0:
		run = clsLetter
	case charClass[c]&clsDigit != 0:
		run = clsDigit
	default:
		return lx.reject(start, "invalid key character %q", c)
	}
	lx.pos++
	for lx.pos < len(data) && charClass[data[lx.pos]]&run != 0 {
		lx.pos++
	}
	key := data[start:lx.pos]

	lx.skipBlanks()
	if lx.atLineEnd() {
		lx.discard(start, key)
		return nil
	}
	if data[lx.pos] != '=' {
		return lx.reject(lx.pos, "unexpected %q after key %q", data[lx.pos], key)
	}
	lx.pos++

	lx.skipBlanks()
	if lx.atLineEnd() {
		lx.discard(start, key)
		return nil
	}
	value, ok, err := lx.value()
	if !ok {
		return err
	}
	if err := lx.emit(key, value); err != nil {
		return err
	}
	lx.pairs++
	return nil
}

// value scans the value starting at the cursor. ok is false when the line was
// rejected; err is then non-nil only under the strict policy.
func (lx *lexer) value() (value []byte, ok bool, err error) {
	data := lx.data
	start := lx.pos
	c := data[start]
	switch {
	case c == '"':
		n := bytes.IndexByte(data[start+1:], '"')
		if n < 0 {
			return nil, false, lx.reject(start, "unterminated quoted value")
		}
		value = data[start+1 : start+1+n]
		lx.pos = start + 1 + n + 1
		lx.skipBlanks()
		if !lx.atLineEnd() {
			return nil, false, lx.reject(lx.pos, "unexpected %q after quoted value", data[lx.pos])
		}
		return value, true, nil
	case charClass[c]&clsLetter != 0:
		return lx.restOfLine(start), true, nil
	case charClass[c]&clsNumber != 0:
		value = lx.restOfLine(start)
		if !isNumber(value) {
			return nil, false, lx.reject(start, "invalid number %q", value)
		}
		return value, true, nil
	default:
		return nil, false, lx.reject(start, "invalid value character %q", c)
	}
}

// restOfLine advances to the newline or comment and returns the span from
// start with trailing blanks trimmed.
func (lx *lexer) restOfLine(start int) []byte {
	data := lx.data
	for lx.pos < len(data) {
		if c := data[lx.pos]; c == '\n' || c == '#' {
			break
		}
		lx.pos++
	}
	end := lx.pos
	for end > start && charClass[data[end-1]]&clsBlank != 0 {
		end--
	}
	return data[start:end]
}

func (lx *lexer) skipBlanks() {
	for lx.pos < len(lx.data) && charClass[lx.data[lx.pos]]&clsBlank != 0 {
		lx.pos++
	}
}

// skipLine moves the cursor to the next newline, leaving it unconsumed.
func (lx *lexer) skipLine() {
	if i := bytes.IndexByte(lx.data[lx.pos:], '\n'); i >= 0 {
		lx.pos += i
	} else {
		lx.pos = len(lx.data)
	}
}

func (lx *lexer) atLineEnd() bool {
	if lx.pos >= len(lx.data) {
		return true
	}
	c := lx.data[lx.pos]
	return c == '\n' || c == '#'
}

func (lx *lexer) reject(off int, format string, args ...any) error {
	err := lexErrf(lx.data, off, format, args...)
	if lx.policy == Strict {
		return err
	}
	lx.skipped++
	lx.logger.LogAttrs(context.Background(), slog.LevelWarn, "kvconf: skipping invalid line",
		slog.Int("line", err.Line),
		slog.Int("col", err.Col),
		slog.String("reason", err.Msg))
	lx.pos = off
	lx.skipLine()
	return nil
}

// discard drops a key that has no value on its line.
func (lx *lexer) discard(off int, key []byte) {
	lx.discarded++
	if lx.verbose {
		line, _, _ := position(lx.data, off)
		lx.logger.LogAttrs(context.Background(), slog.LevelDebug, "kvconf: discarding incomplete pair",
			slog.Int("line", line),
			slog.String("key", string(key)))
	}
}

func isNumber(v []byte) bool {
	if len(v) > 0 && v[0] == '-' {
		v = v[1:]
	}
	var digits, dots int
	for _, c := range v {
		switch {
		case charClass[c]&clsDigit != 0:
			digits++
		case c == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// isKey reports whether k is a single key lexeme.
func isKey(k string) bool {
	if k == "" {
		return false
	}
	run := clsLetter
	if charClass[k[0]]&clsDigit != 0 {
		run = clsDigit
	}
	for i := 0; i < len(k); i++ {
		if charClass[k[i]]&run == 0 {
			return false
		}
	}
	return true
}
