package dna

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Sanity limits applied to length prefixes before allocating.
const (
	MaxStringLength = 64 << 10 // Longest accepted name, in bytes
	MaxElementCount = 16 << 20 // Largest accepted array count
)

// Record widths in bytes.
const (
	vertexPositionSize    = 3 * 4
	textureCoordinateSize = 2 * 4
)

// chunkRecords bounds the scratch buffer used for bulk float reads and writes.
const chunkRecords = 1024

// encoder writes the little-endian layout to a stream. The first error is
// sticky: later calls do nothing and err() returns it.
type encoder struct {
	w       io.Writer
	scratch [8]byte
	written int64
	failed  error
}

func newEncoder(w io.Writer) *encoder {
	return &encoder{w: w}
}

func (e *encoder) err() error {
	return e.failed
}

func (e *encoder) fail(err error) {
	if e.failed == nil {
		e.failed = err
	}
}

func (e *encoder) write(p []byte, what string) {
	if e.failed != nil {
		return
	}
	n, err := e.w.Write(p)
	e.written += int64(n)
	if err != nil {
		if !errors.Is(err, ErrIO) {
			err = fmt.Errorf("%w: %w", ErrIO, err)
		}
		e.fail(fmt.Errorf("writing %s: %w", what, err))
	}
}

func (e *encoder) u16(v uint16, what string) {
	binary.LittleEndian.PutUint16(e.scratch[:2], v)
	e.write(e.scratch[:2], what)
}

func (e *encoder) u32(v uint32, what string) {
	binary.LittleEndian.PutUint32(e.scratch[:4], v)
	e.write(e.scratch[:4], what)
}

// count writes an array length prefix.
func (e *encoder) count(n int, what string) {
	if n < 0 || n > MaxElementCount {
		e.fail(fmt.Errorf("%w: %s count %d", ErrLengthOverflow, what, n))
		return
	}
	e.u32(uint32(n), what+" count")
}

// str writes a length-prefixed string without terminator.
func (e *encoder) str(s string, what string) {
	if len(s) > MaxStringLength {
		e.fail(fmt.Errorf("%w: %s is %d bytes", ErrLengthOverflow, what, len(s)))
		return
	}
	e.u32(uint32(len(s)), what+" length")
	e.write([]byte(s), what)
}

// positions writes a count-prefixed array of float32 triples.
func (e *encoder) positions(values [][3]float32, what string) {
	e.count(len(values), what)
	buf := make([]byte, 0, chunkRecords*vertexPositionSize)
	for i, v := range values {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v[0]))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v[1]))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v[2]))
		if len(buf) == cap(buf) || i == len(values)-1 {
			e.write(buf, what)
			buf = buf[:0]
		}
	}
}

// texCoords writes a count-prefixed array of float32 pairs.
func (e *encoder) texCoords(values []TextureCoordinate, what string) {
	e.count(len(values), what)
	buf := make([]byte, 0, chunkRecords*textureCoordinateSize)
	for i, tc := range values {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(tc.U))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(tc.V))
		if len(buf) == cap(buf) || i == len(values)-1 {
			e.write(buf, what)
			buf = buf[:0]
		}
	}
}

// decoder reads the little-endian layout from a stream.
// Running out of input mid-record is a format error (ErrTruncated);
// any other stream failure is reported as ErrIO.
type decoder struct {
	r       io.Reader
	scratch [8]byte
	pos     int64
	size    int64 // -1 when the input length is unknown
}

func newDecoder(r io.Reader, size int64) *decoder {
	return &decoder{r: r, size: size}
}

// remaining returns the unread byte count, or -1 when unknown.
func (d *decoder) remaining() int64 {
	if d.size < 0 {
		return -1
	}
	return d.size - d.pos
}

func (d *decoder) readErr(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s at offset %d", ErrTruncated, what, d.pos)
	}
	if !errors.Is(err, ErrIO) {
		err = fmt.Errorf("%w: %w", ErrIO, err)
	}
	return fmt.Errorf("reading %s: %w", what, err)
}

func (d *decoder) full(p []byte, what string) error {
	n, err := io.ReadFull(d.r, p)
	d.pos += int64(n)
	if err != nil {
		return d.readErr(err, what)
	}
	return nil
}

func (d *decoder) u16(what string) (uint16, error) {
	if err := d.full(d.scratch[:2], what); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(d.scratch[:2]), nil
}

func (d *decoder) u32(what string) (uint32, error) {
	if err := d.full(d.scratch[:4], what); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(d.scratch[:4]), nil
}

// ensure rejects a prefix that claims more bytes than the input holds.
func (d *decoder) ensure(n int64, what string) error {
	if rem := d.remaining(); rem >= 0 && n > rem {
		return fmt.Errorf("%w: %s needs %d bytes, %d remain", ErrTruncated, what, n, rem)
	}
	return nil
}

// count reads an array length prefix for records of the given width.
func (d *decoder) count(width int, what string) (int, error) {
	n, err := d.u32(what + " count")
	if err != nil {
		return 0, err
	}
	if n > MaxElementCount {
		return 0, fmt.Errorf("%w: %s count %d exceeds %d", ErrLengthOverflow, what, n, MaxElementCount)
	}
	if err := d.ensure(int64(n)*int64(width), what); err != nil {
		return 0, err
	}
	return int(n), nil
}

// str reads a length-prefixed string.
func (d *decoder) str(what string) (string, error) {
	n, err := d.u32(what + " length")
	if err != nil {
		return "", err
	}
	if n > MaxStringLength {
		return "", fmt.Errorf("%w: %s length %d exceeds %d", ErrLengthOverflow, what, n, MaxStringLength)
	}
	if err := d.ensure(int64(n), what); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if err := d.full(buf, what); err != nil {
		return "", err
	}
	return string(buf), nil
}

// floats fills dst with consecutive float32 values.
func (d *decoder) floats(dst []float32, what string) error {
	buf := make([]byte, 4*min(len(dst), chunkRecords*3))
	for len(dst) > 0 {
		n := min(len(dst), len(buf)/4)
		if err := d.full(buf[:4*n], what); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
		}
		dst = dst[n:]
	}
	return nil
}

// positions reads a count-prefixed array of float32 triples.
func (d *decoder) positions(what string) ([][3]float32, error) {
	n, err := d.count(vertexPositionSize, what)
	if err != nil {
		return nil, err
	}
	flat := make([]float32, 3*n)
	if err := d.floats(flat, what); err != nil {
		return nil, err
	}
	out := make([][3]float32, n)
	for i := range out {
		out[i] = [3]float32{flat[3*i], flat[3*i+1], flat[3*i+2]}
	}
	return out, nil
}

// texCoords reads a count-prefixed array of float32 pairs.
func (d *decoder) texCoords(what string) ([]TextureCoordinate, error) {
	n, err := d.count(textureCoordinateSize, what)
	if err != nil {
		return nil, err
	}
	flat := make([]float32, 2*n)
	if err := d.floats(flat, what); err != nil {
		return nil, err
	}
	out := make([]TextureCoordinate, n)
	for i := range out {
		out[i] = TextureCoordinate{U: flat[2*i], V: flat[2*i+1]}
	}
	return out, nil
}

// skipArray consumes a count-prefixed array without materializing it.
func (d *decoder) skipArray(width int, what string) (int, error) {
	n, err := d.count(width, what)
	if err != nil {
		return 0, err
	}
	want := int64(n) * int64(width)
	copied, err := io.CopyN(io.Discard, d.r, want)
	d.pos += copied
	if err != nil {
		return 0, d.readErr(err, what)
	}
	return n, nil
}

// end verifies that the input is exhausted.
func (d *decoder) end() error {
	if rem := d.remaining(); rem > 0 {
		return fmt.Errorf("%w: %d bytes at offset %d", ErrTrailingData, rem, d.pos)
	}
	n, err := d.r.Read(d.scratch[:1])
	if n > 0 {
		return fmt.Errorf("%w: at offset %d", ErrTrailingData, d.pos)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return d.readErr(err, "end of input")
	}
	return nil
}
