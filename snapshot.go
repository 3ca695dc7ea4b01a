package kvconf

import (
	"bytes"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

const snapshotVersion = 1

// snapshot is the msgpack form of a store. Sum is the xxhash64 of the
// rendered text, which is what a reload would compare against.
type snapshot struct {
	Version int      `msgpack:"v"`
	Sum     uint64   `msgpack:"s"`
	Keys    []string `msgpack:"k"`
	Values  []string `msgpack:"vs"`
}

// Checksum returns the xxhash64 of the rendered store.
func (s *Store) Checksum() uint64 {
	return xxhash.Sum64(s.Render())
}

// MarshalBinary encodes the lines of the store as a msgpack snapshot.
func (s *Store) MarshalBinary() ([]byte, error) {
	s.checkOpen()
	n := s.lines.Len()
	snap := snapshot{
		Version: snapshotVersion,
		Sum:     s.Checksum(),
		Keys:    make([]string, n),
		Values:  make([]string, n),
	}
	for i := range n {
		snap.Keys[i] = string(s.key(i))
		snap.Values[i] = string(s.value(i))
	}

	var bb bytesBuilder
	enc := msgpack.GetEncoder()
	enc.Reset(&bb)
	err := enc.Encode(&snap)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, fmt.Errorf("kvconf: encoding snapshot: %w", err)
	}
	return bb.Buf, nil
}

// UnmarshalSnapshot rebuilds a store from MarshalBinary output using the
// storage configured by opt.
func UnmarshalSnapshot(data []byte, opt Options) (*Store, error) {
	var snap snapshot
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	dec.Reset(&r)
	err := dec.Decode(&snap)
	msgpack.PutDecoder(dec)
	if err != nil {
		return nil, fmt.Errorf("kvconf: decoding snapshot: %w: %w", ErrCorruptSnapshot, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("kvconf: snapshot version %d: %w", snap.Version, ErrCorruptSnapshot)
	}
	if len(snap.Keys) != len(snap.Values) {
		return nil, fmt.Errorf("kvconf: snapshot has %d keys and %d values: %w", len(snap.Keys), len(snap.Values), ErrCorruptSnapshot)
	}

	s, err := New(opt)
	if err != nil {
		return nil, err
	}
	for i, k := range snap.Keys {
		if !isKey(k) {
			s.Close()
			return nil, fmt.Errorf("kvconf: snapshot key %q: %w", k, ErrCorruptSnapshot)
		}
		if !renderable([]byte(snap.Values[i])) {
			s.Close()
			return nil, fmt.Errorf("kvconf: snapshot value of %q: %w", k, ErrCorruptSnapshot)
		}
		if err := s.appendLine([]byte(k), []byte(snap.Values[i])); err != nil {
			s.Close()
			return nil, err
		}
	}
	if sum := s.Checksum(); sum != snap.Sum {
		s.Close()
		return nil, fmt.Errorf("kvconf: snapshot checksum %016x, computed %016x: %w", snap.Sum, sum, ErrCorruptSnapshot)
	}
	return s, nil
}
