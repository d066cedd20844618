package dna

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// AccessMode selects whether a stream is opened for reading or writing.
type AccessMode int

const (
	AccessRead  AccessMode = iota // Open an existing file for reading
	AccessWrite                   // Create or truncate a file for writing
)

// String returns a human-readable access mode name.
func (m AccessMode) String() string {
	switch m {
	case AccessRead:
		return "Read"
	case AccessWrite:
		return "Write"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// OpenMode selects the stream framing. Only binary framing is supported.
type OpenMode int

const (
	OpenBinary OpenMode = iota // Raw bytes
	OpenText                   // Platform text translation (rejected)
)

// String returns a human-readable open mode name.
func (m OpenMode) String() string {
	switch m {
	case OpenBinary:
		return "Binary"
	case OpenText:
		return "Text"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Stream is a sequential byte channel consumed by Reader and produced by Writer.
// Read returns io.EOF at end of input; all other failures wrap ErrIO.
type Stream interface {
	io.Reader
	io.Writer
	io.Closer

	// Size returns the total input length when it is known up front.
	Size() (int64, bool)
}

// FileStream is a buffered Stream over a filesystem path.
type FileStream struct {
	path   string
	mode   AccessMode
	file   *os.File
	r      *bufio.Reader
	w      *bufio.Writer
	size   int64
	closed bool
}

// OpenFileStream opens path in the given access mode.
// Read mode fails if the path does not exist; write mode creates or truncates it.
func OpenFileStream(path string, access AccessMode, open OpenMode) (*FileStream, error) {
	if open != OpenBinary {
		return nil, fmt.Errorf("%w: opening %s: %s framing not supported", ErrIO, path, open)
	}

	s := &FileStream{path: path, mode: access, size: -1}

	switch access {
	case AccessRead:
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %w", ErrIO, path, err)
		}
		info, err := file.Stat()
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
		}
		s.file = file
		s.size = info.Size()
		s.r = bufio.NewReader(file)
	case AccessWrite:
		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("%w: creating %s: %w", ErrIO, path, err)
		}
		s.file = file
		s.w = bufio.NewWriter(file)
	default:
		return nil, fmt.Errorf("%w: opening %s: invalid access mode %s", ErrIO, path, access)
	}

	return s, nil
}

// Path returns the path the stream was opened on.
func (s *FileStream) Path() string {
	return s.path
}

// Mode returns the stream's access mode.
func (s *FileStream) Mode() AccessMode {
	return s.mode
}

// Read reads up to len(p) bytes from a read-mode stream.
func (s *FileStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, fmt.Errorf("%w: read from closed stream %s", ErrIO, s.path)
	}
	if s.r == nil {
		return 0, fmt.Errorf("%w: stream %s not open for reading", ErrIO, s.path)
	}
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: reading %s: %w", ErrIO, s.path, err)
	}
	return n, err
}

// Write writes p to a write-mode stream.
func (s *FileStream) Write(p []byte) (int, error) {
	if s.closed {
		return 0, fmt.Errorf("%w: write to closed stream %s", ErrIO, s.path)
	}
	if s.w == nil {
		return 0, fmt.Errorf("%w: stream %s not open for writing", ErrIO, s.path)
	}
	n, err := s.w.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: writing %s: %w", ErrIO, s.path, err)
	}
	return n, nil
}

// Size returns the file size for read-mode streams.
func (s *FileStream) Size() (int64, bool) {
	return s.size, s.size >= 0
}

// Close flushes pending writes and releases the file. Calling Close again is a no-op.
func (s *FileStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var flushErr error
	if s.w != nil {
		flushErr = s.w.Flush()
	}
	closeErr := s.file.Close()

	if flushErr != nil {
		return fmt.Errorf("%w: flushing %s: %w", ErrIO, s.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrIO, s.path, closeErr)
	}
	return nil
}

// MemoryStream is an in-memory Stream. Writes append to the buffer and reads
// consume it from the start. Close is a no-op so the bytes stay available.
type MemoryStream struct {
	data []byte
	off  int
}

// NewMemoryStream returns an empty memory stream.
func NewMemoryStream() *MemoryStream {
	return &MemoryStream{}
}

// NewMemoryStreamFrom returns a memory stream that reads from a copy of data.
func NewMemoryStreamFrom(data []byte) *MemoryStream {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &MemoryStream{data: buf}
}

// Read reads from the unread portion of the buffer.
func (m *MemoryStream) Read(p []byte) (int, error) {
	if m.off >= len(m.data) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, m.data[m.off:])
	m.off += n
	return n, nil
}

// Write appends p to the buffer.
func (m *MemoryStream) Write(p []byte) (int, error) {
	m.data = append(m.data, p...)
	return len(p), nil
}

// Size returns the total buffer length.
func (m *MemoryStream) Size() (int64, bool) {
	return int64(len(m.data)), true
}

// Bytes returns the full buffer contents.
func (m *MemoryStream) Bytes() []byte {
	return m.data
}

// Rewind resets the read offset to the start of the buffer.
func (m *MemoryStream) Rewind() {
	m.off = 0
}

// Close implements io.Closer.
func (m *MemoryStream) Close() error {
	return nil
}
