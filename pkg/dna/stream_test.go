package dna

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFileStream_ReadMissing(t *testing.T) {
	_, err := OpenFileStream(filepath.Join(t.TempDir(), "missing.dna"), AccessRead, OpenBinary)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOpenFileStream_TextModeRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.dna")
	_, err := OpenFileStream(path, AccessWrite, OpenText)
	assert.ErrorIs(t, err, ErrIO)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "rejected open must not create the file")
}

func TestOpenFileStream_WriteCreatesAndTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dna")
	require.NoError(t, os.WriteFile(path, []byte("old contents that are longer"), 0644))

	s, err := OpenFileStream(path, AccessWrite, OpenBinary)
	require.NoError(t, err)
	assert.Equal(t, AccessWrite, s.Mode())
	assert.Equal(t, path, s.Path())

	_, err = s.Write([]byte("new"))
	require.NoError(t, err)
	_, err = s.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrIO, "write stream must not read")
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "second close is a no-op")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestOpenFileStream_ReadSequential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.dna")
	require.NoError(t, os.WriteFile(path, []byte("abcdef"), 0644))

	s, err := OpenFileStream(path, AccessRead, OpenBinary)
	require.NoError(t, err)
	defer s.Close()

	size, ok := s.Size()
	assert.True(t, ok)
	assert.Equal(t, int64(6), size)

	_, err = s.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrIO, "read stream must not write")

	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(data))

	require.NoError(t, s.Close())
	_, err = s.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrIO)
}

func TestMemoryStream(t *testing.T) {
	ms := NewMemoryStream()
	_, err := ms.Write([]byte("hello"))
	require.NoError(t, err)

	size, ok := ms.Size()
	assert.True(t, ok)
	assert.Equal(t, int64(5), size)

	data, err := io.ReadAll(ms)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	n, err := ms.Read(make([]byte, 4))
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)

	ms.Rewind()
	data, err = io.ReadAll(ms)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	src := []byte("abc")
	copied := NewMemoryStreamFrom(src)
	src[0] = 'z'
	assert.Equal(t, "abc", string(copied.Bytes()))
}

func TestModeStrings(t *testing.T) {
	assert.Equal(t, "Read", AccessRead.String())
	assert.Equal(t, "Write", AccessWrite.String())
	assert.Equal(t, "Unknown(9)", AccessMode(9).String())
	assert.Equal(t, "Binary", OpenBinary.String())
	assert.Equal(t, "Text", OpenText.String())
}

func TestFileStream_WriterReaderPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.dna")

	out, err := OpenFileStream(path, AccessWrite, OpenBinary)
	require.NoError(t, err)
	w := NewWriter(out)
	writeExample(t, w)
	require.True(t, w.Write().OK())

	in, err := OpenFileStream(path, AccessRead, OpenBinary)
	require.NoError(t, err)
	r := NewReader(in, LayerAll)
	require.True(t, r.Read().OK())

	pos, err := r.VertexPosition(0, 1)
	require.NoError(t, err)
	assert.Equal(t, [3]float32{1.0, 3.0, -8.0}, pos)

	// Read closed the stream.
	_, err = in.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrIO)
}
