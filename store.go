package kvconf

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/andreyvit/kvconf/mmap"
)

// Store is an ordered, mutable set of key=value lines. It is not safe for
// concurrent use; see Reloader for a guarded wrapper.
type Store struct {
	lines   lineStorage
	gens    []uint32
	budget  memBudget
	mode    Mode
	logger  *slog.Logger
	verbose bool
	closed  bool
}

// New returns an empty store.
func New(opt Options) (*Store, error) {
	opt = opt.withDefaults()
	s := &Store{
		budget:  memBudget{limit: opt.MemoryLimit},
		mode:    opt.Mode,
		logger:  opt.Logger,
		verbose: opt.Verbose,
	}
	lines, err := newStorage(&opt, &s.budget)
	if err != nil {
		return nil, err
	}
	s.lines = lines
	return s, nil
}

// Parse builds a store from data. Pairs are copied out of data, so the
// caller may reuse it afterwards. Empty input yields an empty store.
func Parse(data []byte, opt Options) (*Store, error) {
	opt = opt.withDefaults()
	s, err := New(opt)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	lx := &lexer{
		data:    data,
		policy:  opt.Policy,
		logger:  s.logger,
		verbose: s.verbose,
		emit:    s.appendLine,
	}
	if err := lx.run(); err != nil {
		s.Close()
		return nil, err
	}
	if s.verbose {
		s.logger.LogAttrs(context.Background(), slog.LevelDebug, "kvconf: parsed",
			slog.Int("bytes", len(data)),
			slog.Int("pairs", lx.pairs),
			slog.Int("skipped", lx.skipped),
			slog.Int("discarded", lx.discarded),
			slog.Int("cap", s.lines.Cap()),
			slog.Duration("dur", time.Since(start)))
	}
	return s, nil
}

// Load maps the file at path and parses it. A missing, unreadable or empty
// file is a *SourceError.
func Load(path string, opt Options) (*Store, error) {
	m, err := mmap.ReadOnly(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	defer m.Close()
	if len(m.Data) == 0 {
		return nil, &SourceError{Path: path, Err: ErrEmptySource}
	}
	s, err := Parse(m.Data, opt)
	if err != nil {
		return nil, fmt.Errorf("kvconf: %s: %w", path, err)
	}
	return s, nil
}

func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	if len(data) == 0 {
		return nil, &SourceError{Path: path, Err: ErrEmptySource}
	}
	return data, nil
}

func (s *Store) appendLine(key, value []byte) error {
	i, err := s.lines.Append(key, value)
	if err != nil {
		return err
	}
	if i != len(s.gens) {
		panic(fmt.Sprintf("kvconf: appended line %d, expected %d", i, len(s.gens)))
	}
	s.gens = append(s.gens, 0)
	return nil
}

func (s *Store) checkOpen() {
	if s.closed {
		panic("kvconf: store is closed")
	}
}

// Len returns the number of lines.
func (s *Store) Len() int {
	s.checkOpen()
	return s.lines.Len()
}

// Cap returns the number of index slots allocated.
func (s *Store) Cap() int {
	s.checkOpen()
	return s.lines.Cap()
}

func (s *Store) Mode() Mode {
	return s.mode
}

func (s *Store) key(i int) []byte {
	return s.lines.Line(i)[:s.lines.ValueOffset(i)-1]
}

func (s *Store) value(i int) []byte {
	return s.lines.Line(i)[s.lines.ValueOffset(i):]
}

func (s *Store) find(key string) int {
	n := s.lines.Len()
	for i := 0; i < n; i++ {
		k := s.key(i)
		if len(k) == len(key) && string(k) == key {
			return i
		}
	}
	return -1
}

// Get returns a view of the value of the first line with the given key.
func (s *Store) Get(key string) (View, bool) {
	s.checkOpen()
	i := s.find(key)
	if i < 0 {
		return View{}, false
	}
	return s.view(i), true
}

// Lookup is Get with a copied-out value.
func (s *Store) Lookup(key string) (string, bool) {
	s.checkOpen()
	i := s.find(key)
	if i < 0 {
		return "", false
	}
	return string(s.value(i)), true
}

// Set updates the first line with the given key, or appends a new line.
// Views of the updated line become stale. On error the store is unchanged.
// A value that needs quoting cannot contain '"' (ErrInvalidValue).
// Empty keys and values are caller errors and panic.
func (s *Store) Set(key, value string) (View, error) {
	s.checkOpen()
	if key == "" {
		panic("kvconf: Set with empty key")
	}
	if value == "" {
		panic("kvconf: Set with empty value")
	}
	if !renderable([]byte(value)) {
		return View{}, fmt.Errorf("kvconf: set %s: %q: %w", key, value, ErrInvalidValue)
	}

	if i := s.find(key); i >= 0 {
		oldAlloc := s.lines.Alloc(i)
		if err := s.lines.SetValue(i, []byte(value)); err != nil {
			return View{}, fmt.Errorf("kvconf: set %s: %w", key, err)
		}
		s.gens[i]++
		if s.verbose && s.lines.Alloc(i) != oldAlloc {
			s.logger.LogAttrs(context.Background(), slog.LevelDebug, "kvconf: line grown",
				slog.String("key", key),
				slog.Int("from", oldAlloc),
				slog.Int("to", s.lines.Alloc(i)))
		}
		return s.view(i), nil
	}

	if !isKey(key) {
		return View{}, fmt.Errorf("kvconf: set %q: %w", key, ErrInvalidKey)
	}
	oldCap := s.lines.Cap()
	if err := s.appendLine([]byte(key), []byte(value)); err != nil {
		return View{}, fmt.Errorf("kvconf: set %s: %w", key, err)
	}
	if s.verbose && s.lines.Cap() != oldCap {
		s.logger.LogAttrs(context.Background(), slog.LevelDebug, "kvconf: index grown",
			slog.Int("from", oldCap),
			slog.Int("to", s.lines.Cap()))
	}
	return s.view(s.lines.Len() - 1), nil
}

// Int parses the value of key as a base-10 integer.
func (s *Store) Int(key string) (int64, bool) {
	v, ok := s.Lookup(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float parses the value of key as a float ("5.56", ".1", "-50").
func (s *Store) Float(key string) (float64, bool) {
	v, ok := s.Lookup(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (s *Store) IntOr(key string, def int64) int64 {
	if n, ok := s.Int(key); ok {
		return n
	}
	return def
}

func (s *Store) FloatOr(key string, def float64) float64 {
	if f, ok := s.Float(key); ok {
		return f
	}
	return def
}

// All yields copies of every key and value in store order.
func (s *Store) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		s.checkOpen()
		for i := 0; i < s.lines.Len(); i++ {
			if !yield(string(s.key(i)), string(s.value(i))) {
				return
			}
		}
	}
}

// Close releases the store. Every view becomes stale; closing twice is a no-op.
func (s *Store) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	s.lines.Release()
	s.gens = nil
}
