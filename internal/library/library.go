// Package library caches loaded DNA documents for long-running tools.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Faultbox/dnakit/pkg/dna"
)

// key identifies one cached read: the same file read with different layers
// produces different documents.
type key struct {
	path  string
	layer dna.DataLayer
}

// entry is a cached document together with the file state it was read from.
type entry struct {
	doc     *dna.Document
	size    int64
	modTime time.Time
}

func (e entry) fresh(info os.FileInfo) bool {
	return e.size == info.Size() && e.modTime.Equal(info.ModTime())
}

// Library loads DNA files and caches the resulting documents.
// It is safe for concurrent use.
type Library struct {
	opts []dna.Option
	docs map[key]entry
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// New creates an empty library. The options are passed to every Reader.
func New(opts ...dna.Option) *Library {
	return &Library{
		opts: opts,
		docs: make(map[key]entry),
	}
}

func normalizePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Load returns the document stored at path, reading it on first use.
// A cached document is reused only while the file keeps the size and
// modification time it had when it was read. The returned document is
// shared; callers must not modify it.
func (l *Library) Load(path string, layer dna.DataLayer) (*dna.Document, error) {
	k := key{path: normalizePath(path), layer: layer}

	info, err := os.Stat(k.path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w: %w", path, dna.ErrIO, err)
	}

	l.mu.Lock()
	e, ok := l.docs[k]
	ok = ok && e.fresh(info)
	if ok {
		l.hits++
	} else {
		l.misses++
	}
	l.mu.Unlock()
	if ok {
		return e.doc, nil
	}

	r, st := dna.LoadFile(k.path, layer, l.opts...)
	if !st.OK() {
		return nil, fmt.Errorf("loading %s: %w", path, st.Err)
	}
	doc, err := r.Document()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.docs[k] = entry{doc: doc, size: info.Size(), modTime: info.ModTime()}
	l.mu.Unlock()

	return doc, nil
}

// Contains reports whether path is cached for the given layer.
func (l *Library) Contains(path string, layer dna.DataLayer) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.docs[key{path: normalizePath(path), layer: layer}]
	return ok
}

// Invalidate drops every cached layer of path, forcing the next Load to
// read the file even if its size and modification time look unchanged.
func (l *Library) Invalidate(path string) {
	p := normalizePath(path)

	l.mu.Lock()
	defer l.mu.Unlock()
	for k := range l.docs {
		if k.path == p {
			delete(l.docs, k)
		}
	}
}

// Len returns the number of cached documents.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.docs)
}

// Stats returns cache statistics.
func (l *Library) Stats() (hits, misses int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hits, l.misses
}

// Close drops all cached documents and resets the statistics.
func (l *Library) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.docs = make(map[key]entry)
	l.hits = 0
	l.misses = 0
}
