package dna

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type testMesh struct {
	name      string
	positions [][3]float32
	texCoords [][2]float32
}

// buildDNA hand-encodes a DNA file without going through Writer.
func buildDNA(major, minor uint16, name string, lod uint32, joints []string, meshes []testMesh) []byte {
	buf := new(bytes.Buffer)

	buf.WriteString("RDNA")
	binary.Write(buf, binary.LittleEndian, major)
	binary.Write(buf, binary.LittleEndian, minor)

	writeString := func(s string) {
		binary.Write(buf, binary.LittleEndian, uint32(len(s)))
		buf.WriteString(s)
	}

	writeString(name)
	binary.Write(buf, binary.LittleEndian, lod)

	binary.Write(buf, binary.LittleEndian, uint32(len(joints)))
	for _, j := range joints {
		writeString(j)
	}

	binary.Write(buf, binary.LittleEndian, uint32(len(meshes)))
	for _, m := range meshes {
		writeString(m.name)
		binary.Write(buf, binary.LittleEndian, uint32(len(m.positions)))
		for _, p := range m.positions {
			binary.Write(buf, binary.LittleEndian, p)
		}
		binary.Write(buf, binary.LittleEndian, uint32(len(m.texCoords)))
		for _, tc := range m.texCoords {
			binary.Write(buf, binary.LittleEndian, tc)
		}
	}

	return buf.Bytes()
}

// exampleMesh is the "head" mesh of the demo rig.
func exampleMesh() testMesh {
	return testMesh{
		name:      "head",
		positions: [][3]float32{{0.0, 0.5, 0.3}, {1.0, 3.0, -8.0}},
		texCoords: [][2]float32{{0.25, 0.55}, {1.5, 3.6}},
	}
}

func exampleDNA() []byte {
	return buildDNA(1, 0, "rig name", 4, []string{"spine", "neck"}, []testMesh{exampleMesh()})
}

// writeExample stages the demo rig through the Writer mutators.
func writeExample(t *testing.T, w *Writer) {
	t.Helper()
	require.NoError(t, w.SetName("rig name"))
	require.NoError(t, w.SetLODCount(4))
	require.NoError(t, w.SetJointName(0, "spine"))
	require.NoError(t, w.SetJointName(1, "neck"))
	require.NoError(t, w.SetMeshName(0, "head"))
	require.NoError(t, w.SetVertexPositions(0, [][3]float32{{0.0, 0.5, 0.3}, {1.0, 3.0, -8.0}}))
	require.NoError(t, w.SetVertexTextureCoordinates(0, []TextureCoordinate{{0.25, 0.55}, {1.5, 3.6}}))
}

// readBytes reads data with the given layer and requires success.
func readBytes(t *testing.T, data []byte, layer DataLayer) *Reader {
	t.Helper()
	r := NewReader(NewMemoryStreamFrom(data), layer)
	st := r.Read()
	require.True(t, st.OK(), "read failed: %s", st)
	return r
}

// sizelessStream hides the input length so the decoder cannot pre-check prefixes.
type sizelessStream struct {
	r      io.Reader
	closed bool
}

func (s *sizelessStream) Read(p []byte) (int, error)  { return s.r.Read(p) }
func (s *sizelessStream) Write(p []byte) (int, error) { return 0, errors.New("read only") }
func (s *sizelessStream) Size() (int64, bool)         { return 0, false }
func (s *sizelessStream) Close() error {
	s.closed = true
	return nil
}

// failingStream fails every write after limit bytes.
type failingStream struct {
	limit   int
	written int
	closed  bool
}

func (s *failingStream) Read(p []byte) (int, error) { return 0, io.EOF }
func (s *failingStream) Write(p []byte) (int, error) {
	if s.written+len(p) > s.limit {
		return 0, errors.New("disk full")
	}
	s.written += len(p)
	return len(p), nil
}
func (s *failingStream) Size() (int64, bool) { return 0, false }
func (s *failingStream) Close() error {
	s.closed = true
	return nil
}
