package dna

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadFile opens path, reads it with the given layer and returns the Reader.
// The Reader is only queryable when the returned status is OK.
func LoadFile(path string, layer DataLayer, opts ...Option) (*Reader, Status) {
	stream, err := OpenFileStream(path, AccessRead, OpenBinary)
	if err != nil {
		return nil, StatusFromError(err)
	}
	r := NewReader(stream, layer, opts...)
	return r, r.Read()
}

// SaveFile writes doc to path atomically: the data goes to a temporary file
// in the same directory, which is renamed onto path only after a successful
// write. On failure the temporary file is removed and path is untouched.
// An existing file keeps its permission bits; new files get 0644.
func SaveFile(path string, doc *Document, opts ...Option) Status {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return StatusFromError(fmt.Errorf("%w: creating temporary file for %s: %w", ErrIO, path, err))
	}
	tmpPath := tmp.Name()
	tmp.Close()

	fail := func(st Status) Status {
		os.Remove(tmpPath)
		return st
	}

	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fail(StatusFromError(fmt.Errorf("%w: chmod %s: %w", ErrIO, tmpPath, err)))
	}

	stream, err := OpenFileStream(tmpPath, AccessWrite, OpenBinary)
	if err != nil {
		return fail(StatusFromError(err))
	}

	w := NewWriter(stream, opts...)
	if err := w.SetDocument(doc); err != nil {
		stream.Close()
		return fail(StatusFromError(err))
	}
	if st := w.Write(); !st.OK() {
		return fail(st)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fail(StatusFromError(fmt.Errorf("%w: renaming %s: %w", ErrIO, tmpPath, err)))
	}
	return Success()
}
