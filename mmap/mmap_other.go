//go:build !unix && !windows

package mmap

import (
	"io"
	"os"
)

// Platforms without mmap get a plain copy of the file.
func mmap(f *os.File, size int) ([]byte, bool, error) {
	b := make([]byte, size)
	if _, err := io.ReadFull(f, b); err != nil {
		return nil, false, err
	}
	return b, false, nil
}

func munmap(b []byte) error {
	return nil
}
