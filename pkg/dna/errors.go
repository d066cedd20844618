// Package dna provides reading and writing of DNA rig files.
//
// A DNA file stores one rig: its name, LOD count, joint names and meshes
// (vertex positions and texture coordinates). Files are read through a
// two-phase Reader (construct, then Read) filtered by a DataLayer, and
// produced through a Writer that stages a Document before serializing it.
package dna

import "errors"

// Error categories. Every error returned by this package wraps exactly one
// of these, so callers can classify failures with errors.Is.
var (
	ErrIO     = errors.New("dna: i/o error")
	ErrFormat = errors.New("dna: format error")
	ErrIndex  = errors.New("dna: index out of range")
	ErrState  = errors.New("dna: invalid state")
)

// Format errors.
var (
	ErrInvalidMagic       = wrapKind(ErrFormat, "invalid DNA magic: expected 'RDNA'")
	ErrUnsupportedVersion = wrapKind(ErrFormat, "unsupported DNA version")
	ErrTruncated          = wrapKind(ErrFormat, "truncated DNA data")
	ErrTrailingData       = wrapKind(ErrFormat, "unexpected data after mesh table")
	ErrLengthOverflow     = wrapKind(ErrFormat, "length prefix exceeds limit")
	ErrDuplicateName      = wrapKind(ErrFormat, "duplicate name in DNA data")
)

// kindError is a named error that belongs to one of the categories above.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func wrapKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}
