package kvconf

import (
	"bytes"
	"errors"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	s := parse(t, "# header\nname = main.c  # trailing\n\nnote=\"a b\"\nport=8080", Options{})
	must(s.Set("extra", "1"))
	want := "name=main.c\nnote=a b\nport=8080\nextra=1\n"
	if got := string(s.Render()); got != want {
		t.Fatalf("Render = %q, wanted %q", got, want)
	}

	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	if err != nil || n != int64(len(want)) || buf.String() != want {
		t.Fatalf("WriteTo = %d, %v, %q, wanted %d, nil, %q", n, err, buf.String(), len(want), want)
	}
}

// awkwardValues only read back as themselves when rendered in quotes.
var awkwardValues = []string{
	" lead", "trail ", "#x", "a#b", "12ab", "x\nadmin=true", "-", ".",
	"1.2.3", "\tx", "é", "a\r", `say "hi"`,
}

func randomValue(r *rand.Rand) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"
	switch r.Intn(4) {
	case 3:
		return awkwardValues[r.Intn(len(awkwardValues))]
	case 0:
		n := 1 + r.Intn(120)
		var sb strings.Builder
		sb.WriteByte(letters[r.Intn(len(letters))])
		for sb.Len() < n {
			if r.Intn(8) == 0 && sb.Len() < n-1 {
				sb.WriteString(" .")
			} else {
				sb.WriteByte(letters[r.Intn(len(letters))])
			}
		}
		return sb.String()
	case 1:
		return strings.Repeat("9", 1+r.Intn(10))
	default:
		s := strings.Repeat("1", 1+r.Intn(4)) + "." + strings.Repeat("5", r.Intn(4))
		if r.Intn(2) == 0 {
			s = "-" + s
		}
		return s
	}
}

func randomKey(r *rand.Rand, i int) string {
	var sb strings.Builder
	for n := i; ; n /= 26 {
		sb.WriteByte(byte('a' + n%26))
		if n < 26 {
			break
		}
	}
	if r.Intn(2) == 0 {
		sb.WriteString("_key")
	}
	return sb.String()
}

func TestRender_Quoting(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`a="#x"`, `a="#x"`},
		{`a="12ab"`, `a="12ab"`},
		{`a=" lead"`, `a=" lead"`},
		{`a="trail "`, `a="trail "`},
		{`a=""`, `a=""`},
		{"a=\"x\ny\"", "a=\"x\ny\""},
		{`a="-"`, `a="-"`},
		{`a="plain"`, `a=plain`},
		{`a="-1.5"`, `a=-1.5`},
		{`a=say "hi"`, `a=say "hi"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := parse(t, tt.input, Options{})
			out := s.Render()
			if string(out) != tt.want+"\n" {
				t.Fatalf("Render = %q, wanted %q", out, tt.want+"\n")
			}
			s2 := must(Parse(out, testOptions(t, Options{Policy: Strict})))
			defer s2.Close()
			deepEqual(t, pairs(s2), pairs(s))
			st := s.Stats()
			if st.TotalSize() != len(out) {
				t.Fatalf("TotalSize = %d, wanted %d", st.TotalSize(), len(out))
			}
		})
	}
}

func TestRender_SetValues(t *testing.T) {
	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			s := parse(t, "a=1\n", Options{Mode: mode})
			for _, v := range awkwardValues {
				must(s.Set("a", v))
				s2 := must(Parse(s.Render(), testOptions(t, Options{Mode: mode, Policy: Strict})))
				deepEqual(t, pairs(s2), [][2]string{{"a", v}})
				s2.Close()
			}
		})
	}
}

func TestSet_InvalidValue(t *testing.T) {
	s := parse(t, "a=1\n", Options{})
	for _, v := range []string{`"quoted"`, "x\n\"", `# "c"`, `12"`} {
		if _, err := s.Set("a", v); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Set(a, %q) err = %v, wanted ErrInvalidValue", v, err)
		}
		if _, err := s.Set("b", v); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Set(b, %q) err = %v, wanted ErrInvalidValue", v, err)
		}
	}
	deepEqual(t, pairs(s), [][2]string{{"a", "1"}})
}

func TestRender_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			for iter := 0; iter < 50; iter++ {
				s := must(New(testOptions(t, Options{Mode: mode, InitialCapacity: 1, GrowBy: 1, MaxLines: 64, SlotSize: 160})))
				var expected [][2]string
				n := r.Intn(40)
				for i := 0; i < n; i++ {
					k, v := randomKey(r, i), randomValue(r)
					must(s.Set(k, v))
					expected = append(expected, [2]string{k, v})
				}
				for i := 0; i < n/3; i++ {
					j := r.Intn(n)
					v := randomValue(r)
					must(s.Set(expected[j][0], v))
					expected[j][1] = v
				}

				s2 := must(Parse(s.Render(), testOptions(t, Options{Mode: mode, Policy: Strict, MaxLines: 64, SlotSize: 160})))
				deepEqual(t, pairs(s2), expected)
				if !bytes.Equal(s2.Render(), s.Render()) {
					t.Fatalf("second render differs")
				}
				s.Close()
				s2.Close()
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "app.conf")
			ensure(os.WriteFile(path, []byte(sampleConf), 0o644))

			s := must(Load(path, testOptions(t, Options{Mode: mode})))
			defer s.Close()
			lookup(t, s, "random_float", "5.56")

			must(s.Set("random_float", "6.5"))
			must(s.Set("added", "yes"))
			ensure(s.Save(path))

			s2 := must(Load(path, testOptions(t, Options{Mode: mode})))
			defer s2.Close()
			deepEqual(t, pairs(s2), pairs(s))

			entries := must(os.ReadDir(filepath.Dir(path)))
			if len(entries) != 1 {
				t.Fatalf("dir has %d entries after Save, wanted 1", len(entries))
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.conf"), testOptions(t, Options{}))
	var se *SourceError
	if !errors.As(err, &se) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Load(missing) err = %v, wanted *SourceError wrapping fs.ErrNotExist", err)
	}

	empty := filepath.Join(dir, "empty.conf")
	ensure(os.WriteFile(empty, nil, 0o644))
	_, err = Load(empty, testOptions(t, Options{}))
	if !errors.As(err, &se) || !errors.Is(err, ErrEmptySource) {
		t.Fatalf("Load(empty) err = %v, wanted *SourceError wrapping ErrEmptySource", err)
	}

	_, err = Load(dir, testOptions(t, Options{}))
	if !errors.As(err, &se) {
		t.Fatalf("Load(dir) err = %v, wanted *SourceError", err)
	}

	bad := filepath.Join(dir, "bad.conf")
	ensure(os.WriteFile(bad, []byte("a=1\n$=2\n"), 0o644))
	_, err = Load(bad, testOptions(t, Options{Policy: Strict}))
	if !errors.Is(err, ErrSyntax) || !strings.Contains(err.Error(), bad) {
		t.Fatalf("Load(bad) err = %v, wanted ErrSyntax mentioning the path", err)
	}
}

func TestLoad_OutlivesMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.conf")
	ensure(os.WriteFile(path, []byte("name=main.c\n"), 0o644))
	s := must(Load(path, testOptions(t, Options{})))
	defer s.Close()
	ensure(os.WriteFile(path, []byte("name=other\n"), 0o644))
	lookup(t, s, "name", "main.c")
}
