// Package mmap maps files read-only for single-pass parsing.
package mmap

import (
	"fmt"
	"math"
	"os"
)

// Mapping is a read-only view of a whole file. Data is nil for empty files.
type Mapping struct {
	Data   []byte
	mapped bool
}

// ReadOnly maps the file at path. The mapping is advised for sequential
// access. Data must not be used after Close, and the file must not be
// truncated while mapped.
func ReadOnly(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("mmap: %s is not a regular file", path)
	}
	size := fi.Size()
	if size == 0 {
		return &Mapping{}, nil
	}
	if size > math.MaxInt {
		return nil, fmt.Errorf("mmap: %s is too large (%d bytes)", path, size)
	}

	b, mapped, err := mmap(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap: %s: %w", path, err)
	}
	return &Mapping{Data: b, mapped: mapped}, nil
}

// Close unmaps the file. It is safe to call more than once.
func (m *Mapping) Close() error {
	if m == nil || m.Data == nil {
		return nil
	}
	b := m.Data
	m.Data = nil
	if !m.mapped {
		return nil
	}
	return munmap(b)
}
