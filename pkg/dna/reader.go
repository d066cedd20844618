package dna

import (
	"fmt"

	"go.uber.org/zap"
)

// instanceState tracks the construct-then-run protocol of Reader and Writer.
type instanceState int

const (
	stateConfigured instanceState = iota // Constructed, Read/Write not yet called
	statePopulated                       // Read succeeded, or Write target produced
	stateFailed                          // Read/Write failed; document discarded
)

// String returns a human-readable state name.
func (s instanceState) String() string {
	switch s {
	case stateConfigured:
		return "Configured"
	case statePopulated:
		return "Populated"
	case stateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Reader parses a DNA stream into a Document.
//
// Construction only records the stream and layer; parsing happens in Read,
// which is the single place corrupt input is detected. Query methods are
// valid only after a successful Read. A Reader must not be used from
// multiple goroutines at once.
type Reader struct {
	stream  Stream
	layer   DataLayer
	opts    options
	state   instanceState
	doc     *Document
	version Version
}

// NewReader returns a Reader over stream that materializes the given layer.
func NewReader(stream Stream, layer DataLayer, opts ...Option) *Reader {
	return &Reader{
		stream: stream,
		layer:  layer.normalize(),
		opts:   buildOptions(opts),
	}
}

// Layer returns the data layer the reader materializes.
func (r *Reader) Layer() DataLayer {
	return r.layer
}

// Version returns the file version. It is zero until Read has parsed the header.
func (r *Reader) Version() Version {
	return r.version
}

// Read consumes the whole stream and closes it. On failure the partially
// parsed document is discarded and every query returns ErrState.
func (r *Reader) Read() Status {
	if r.state != stateConfigured {
		return StatusFromError(fmt.Errorf("%w: Read called on %s reader", ErrState, r.state))
	}

	err := r.read()
	if err != nil {
		r.state = stateFailed
		r.doc = nil
		r.opts.log.Warn("DNA read failed", zap.Stringer("layer", r.layer), zap.Error(err))
		return StatusFromError(err)
	}

	r.state = statePopulated
	r.opts.log.Debug("DNA read",
		zap.String("name", r.doc.Name),
		zap.Stringer("version", r.version),
		zap.Stringer("layer", r.layer),
		zap.Int("joints", len(r.doc.Joints)),
		zap.Int("meshes", len(r.doc.Meshes)),
	)
	return Success()
}

func (r *Reader) read() (err error) {
	if r.stream == nil {
		return fmt.Errorf("%w: reader has no stream", ErrIO)
	}
	defer func() {
		if cerr := r.stream.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	size, ok := r.stream.Size()
	if !ok {
		size = -1
	}

	doc, version, err := decodeDocument(newDecoder(r.stream, size), r.layer)
	r.version = version
	if err != nil {
		return err
	}
	r.doc = doc
	return nil
}

func (r *Reader) populated() error {
	switch r.state {
	case statePopulated:
		return nil
	case stateFailed:
		return fmt.Errorf("%w: previous Read failed", ErrState)
	default:
		return fmt.Errorf("%w: Read has not been called", ErrState)
	}
}

func checkIndex(i, n int, what string) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %s index %d, count %d", ErrIndex, what, i, n)
	}
	return nil
}

// Name returns the rig name.
func (r *Reader) Name() (string, error) {
	if err := r.populated(); err != nil {
		return "", err
	}
	return r.doc.Name, nil
}

// LODCount returns the number of levels of detail.
func (r *Reader) LODCount() (uint32, error) {
	if err := r.populated(); err != nil {
		return 0, err
	}
	return r.doc.LODCount, nil
}

// JointCount returns the number of joints. It is 0 when the layer excludes definitions.
func (r *Reader) JointCount() (int, error) {
	if err := r.populated(); err != nil {
		return 0, err
	}
	return len(r.doc.Joints), nil
}

// JointName returns the name of joint i.
func (r *Reader) JointName(i int) (string, error) {
	if err := r.populated(); err != nil {
		return "", err
	}
	if err := checkIndex(i, len(r.doc.Joints), "joint"); err != nil {
		return "", err
	}
	return r.doc.Joints[i].Name, nil
}

// JointIndex returns the index of the named joint.
func (r *Reader) JointIndex(name string) (int, error) {
	if err := r.populated(); err != nil {
		return -1, err
	}
	i := r.doc.JointIndex(name)
	if i < 0 {
		return -1, fmt.Errorf("%w: no joint named %q", ErrIndex, name)
	}
	return i, nil
}

// MeshCount returns the number of meshes. It is 0 when the layer excludes definitions.
func (r *Reader) MeshCount() (int, error) {
	if err := r.populated(); err != nil {
		return 0, err
	}
	return len(r.doc.Meshes), nil
}

// MeshName returns the name of mesh i.
func (r *Reader) MeshName(i int) (string, error) {
	m, err := r.mesh(i)
	if err != nil {
		return "", err
	}
	return m.Name, nil
}

// MeshIndex returns the index of the named mesh.
func (r *Reader) MeshIndex(name string) (int, error) {
	if err := r.populated(); err != nil {
		return -1, err
	}
	i := r.doc.MeshIndex(name)
	if i < 0 {
		return -1, fmt.Errorf("%w: no mesh named %q", ErrIndex, name)
	}
	return i, nil
}

func (r *Reader) mesh(i int) (*Mesh, error) {
	if err := r.populated(); err != nil {
		return nil, err
	}
	if err := checkIndex(i, len(r.doc.Meshes), "mesh"); err != nil {
		return nil, err
	}
	return &r.doc.Meshes[i], nil
}

// VertexPositionCount returns the vertex count of a mesh.
// It is 0 when the layer excludes geometry.
func (r *Reader) VertexPositionCount(mesh int) (int, error) {
	m, err := r.mesh(mesh)
	if err != nil {
		return 0, err
	}
	return len(m.VertexPositions), nil
}

// VertexPosition returns one vertex position of a mesh.
func (r *Reader) VertexPosition(mesh, vertex int) ([3]float32, error) {
	m, err := r.mesh(mesh)
	if err != nil {
		return [3]float32{}, err
	}
	if err := checkIndex(vertex, len(m.VertexPositions), "vertex position"); err != nil {
		return [3]float32{}, err
	}
	return m.VertexPositions[vertex], nil
}

// VertexPositionXs returns the X coordinate of every vertex of a mesh.
func (r *Reader) VertexPositionXs(mesh int) ([]float32, error) {
	return r.positionAxis(mesh, 0)
}

// VertexPositionYs returns the Y coordinate of every vertex of a mesh.
func (r *Reader) VertexPositionYs(mesh int) ([]float32, error) {
	return r.positionAxis(mesh, 1)
}

// VertexPositionZs returns the Z coordinate of every vertex of a mesh.
func (r *Reader) VertexPositionZs(mesh int) ([]float32, error) {
	return r.positionAxis(mesh, 2)
}

func (r *Reader) positionAxis(mesh, axis int) ([]float32, error) {
	m, err := r.mesh(mesh)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(m.VertexPositions))
	for i, p := range m.VertexPositions {
		out[i] = p[axis]
	}
	return out, nil
}

// VertexTextureCoordinateCount returns the texture coordinate count of a mesh.
// It is 0 when the layer excludes geometry.
func (r *Reader) VertexTextureCoordinateCount(mesh int) (int, error) {
	m, err := r.mesh(mesh)
	if err != nil {
		return 0, err
	}
	return len(m.TextureCoordinates), nil
}

// VertexTextureCoordinate returns one texture coordinate of a mesh.
func (r *Reader) VertexTextureCoordinate(mesh, index int) (TextureCoordinate, error) {
	m, err := r.mesh(mesh)
	if err != nil {
		return TextureCoordinate{}, err
	}
	if err := checkIndex(index, len(m.TextureCoordinates), "texture coordinate"); err != nil {
		return TextureCoordinate{}, err
	}
	return m.TextureCoordinates[index], nil
}

// VertexTextureCoordinateUs returns the U value of every texture coordinate of a mesh.
func (r *Reader) VertexTextureCoordinateUs(mesh int) ([]float32, error) {
	m, err := r.mesh(mesh)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(m.TextureCoordinates))
	for i, tc := range m.TextureCoordinates {
		out[i] = tc.U
	}
	return out, nil
}

// VertexTextureCoordinateVs returns the V value of every texture coordinate of a mesh.
func (r *Reader) VertexTextureCoordinateVs(mesh int) ([]float32, error) {
	m, err := r.mesh(mesh)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(m.TextureCoordinates))
	for i, tc := range m.TextureCoordinates {
		out[i] = tc.V
	}
	return out, nil
}

// Document returns a deep copy of the populated document.
func (r *Reader) Document() (*Document, error) {
	if err := r.populated(); err != nil {
		return nil, err
	}
	return r.doc.Clone(), nil
}
