package kvconf

import (
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

// testOptions routes store logs into t.Log.
func testOptions(t testing.TB, opt Options) Options {
	opt.Logger = slog.New(slog.NewTextHandler(&logWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	opt.Verbose = true
	return opt
}

func parse(t testing.TB, input string, opt Options) *Store {
	t.Helper()
	s, err := Parse([]byte(input), testOptions(t, opt))
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	t.Cleanup(s.Close)
	return s
}

func pairs(s *Store) [][2]string {
	var result [][2]string
	for k, v := range s.All() {
		result = append(result, [2]string{k, v})
	}
	return result
}

func lookup(t testing.TB, s *Store, key, expected string) {
	t.Helper()
	v, ok := s.Lookup(key)
	if !ok {
		t.Fatalf("Lookup(%q) = not found, wanted %q", key, expected)
	}
	if v != expected {
		t.Fatalf("Lookup(%q) = %q, wanted %q", key, v, expected)
	}
}

func notFound(t testing.TB, s *Store, key string) {
	t.Helper()
	if v, ok := s.Lookup(key); ok {
		t.Fatalf("Lookup(%q) = %q, wanted not found", key, v)
	}
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Fatalf("** got %v, wanted %v", a, e)
	}
}

func expectPanic(t testing.TB, f func()) (v any) {
	t.Helper()
	defer func() {
		v = recover()
		if v == nil {
			t.Fatalf("expected panic")
		}
	}()
	f()
	return nil
}

type logWriter struct{ t testing.TB }

func (c *logWriter) Write(buf []byte) (int, error) {
	msg := string(buf)
	origLen := len(msg)
	msg = strings.TrimSuffix(msg, "\n")
	c.t.Log(msg)
	return origLen, nil
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}

var allModes = []Mode{Dynamic, FixedSlab}
