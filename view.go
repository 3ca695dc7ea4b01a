package kvconf

// View borrows a value from its store without copying. It stays valid until
// its line is written by Set or the store is closed; reading a stale view
// panics with ErrStaleView. The zero View is not valid.
type View struct {
	s   *Store
	i   int
	gen uint32
}

func (s *Store) view(i int) View {
	return View{s: s, i: i, gen: s.gens[i]}
}

// Valid reports whether the view can still be read.
func (v View) Valid() bool {
	return v.s != nil && !v.s.closed && v.i < len(v.s.gens) && v.s.gens[v.i] == v.gen
}

func (v View) check() {
	if !v.Valid() {
		panic(ErrStaleView)
	}
}

// Bytes returns the value in place. The slice must not be modified or used
// after the view goes stale.
func (v View) Bytes() []byte {
	v.check()
	return v.s.value(v.i)
}

// String returns a copy of the value.
func (v View) String() string {
	v.check()
	return string(v.s.value(v.i))
}

// Key returns a copy of the line's key.
func (v View) Key() string {
	v.check()
	return string(v.s.key(v.i))
}

// Len returns the value length in bytes.
func (v View) Len() int {
	v.check()
	return len(v.s.value(v.i))
}
