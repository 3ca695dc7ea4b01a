//go:build unix

package mmap

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

func mmap(f *os.File, size int) ([]byte, bool, error) {
	b, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, false, err
	}

	err = unix.Madvise(b, unix.MADV_SEQUENTIAL)
	if err != nil && err != syscall.ENOSYS {
		// Ignore not implemented error in kernel because it still works.
		_ = unix.Munmap(b)
		return nil, false, fmt.Errorf("madvise(MADV_SEQUENTIAL): %w", err)
	}
	return b, true, nil
}

func munmap(b []byte) error {
	return unix.Munmap(b)
}
