package mmap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.conf")
	ensure(os.WriteFile(path, []byte("name=main.c\n"), 0o644))

	m, err := ReadOnly(path)
	if err != nil {
		t.Fatalf("ReadOnly: %v", err)
	}
	if string(m.Data) != "name=main.c\n" {
		t.Fatalf("Data = %q, wanted %q", m.Data, "name=main.c\n")
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if m.Data != nil {
		t.Fatalf("Data after Close = %q, wanted nil", m.Data)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestReadOnly_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.conf")
	ensure(os.WriteFile(path, nil, 0o644))

	m, err := ReadOnly(path)
	if err != nil {
		t.Fatalf("ReadOnly: %v", err)
	}
	if m.Data != nil {
		t.Fatalf("Data = %q, wanted nil", m.Data)
	}
	ensure(m.Close())
}

func TestReadOnly_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadOnly(filepath.Join(dir, "missing.conf")); !os.IsNotExist(err) {
		t.Fatalf("ReadOnly(missing) err = %v, wanted not-exist", err)
	}
	if _, err := ReadOnly(dir); err == nil {
		t.Fatalf("ReadOnly(dir) err = nil, wanted error")
	}
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}
