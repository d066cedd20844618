package dna

import (
	"fmt"

	"go.uber.org/zap"
)

// Writer stages a Document through indexed setters and serializes it to a stream.
//
// Indexed setters overwrite an existing slot or append at the next free one;
// an index past the end would leave a gap and is rejected with ErrState.
// A Writer must not be used from multiple goroutines at once.
type Writer struct {
	stream Stream
	opts   options
	doc    *Document
	dirty  bool
	state  instanceState
}

// NewWriter returns a Writer that will serialize to stream.
func NewWriter(stream Stream, opts ...Option) *Writer {
	return &Writer{
		stream: stream,
		opts:   buildOptions(opts),
		doc:    &Document{},
	}
}

func (w *Writer) mutable() error {
	if w.state != stateConfigured {
		return fmt.Errorf("%w: writer is %s", ErrState, w.state)
	}
	return nil
}

// slot validates an indexed set against a sequence of length n and reports
// whether the set appends a new element.
func slot(i, n int, what string) (bool, error) {
	switch {
	case i < 0:
		return false, fmt.Errorf("%w: %s index %d", ErrIndex, what, i)
	case i > n:
		return false, fmt.Errorf("%w: %s index %d would leave a gap after %d elements", ErrState, what, i, n)
	default:
		return i == n, nil
	}
}

// SetName sets the rig name.
func (w *Writer) SetName(name string) error {
	if err := w.mutable(); err != nil {
		return err
	}
	w.doc.Name = name
	w.dirty = true
	return nil
}

// SetLODCount sets the number of levels of detail.
func (w *Writer) SetLODCount(count uint32) error {
	if err := w.mutable(); err != nil {
		return err
	}
	w.doc.LODCount = count
	w.dirty = true
	return nil
}

// SetJointName sets the name of joint i.
func (w *Writer) SetJointName(i int, name string) error {
	if err := w.mutable(); err != nil {
		return err
	}
	appendNew, err := slot(i, len(w.doc.Joints), "joint")
	if err != nil {
		return err
	}
	if appendNew {
		w.doc.Joints = append(w.doc.Joints, Joint{Name: name})
	} else {
		w.doc.Joints[i].Name = name
	}
	w.dirty = true
	return nil
}

// SetMeshName sets the name of mesh i. Renaming an existing mesh keeps its geometry.
func (w *Writer) SetMeshName(i int, name string) error {
	if err := w.mutable(); err != nil {
		return err
	}
	appendNew, err := slot(i, len(w.doc.Meshes), "mesh")
	if err != nil {
		return err
	}
	if appendNew {
		w.doc.Meshes = append(w.doc.Meshes, Mesh{Name: name})
	} else {
		w.doc.Meshes[i].Name = name
	}
	w.dirty = true
	return nil
}

// SetVertexPositions replaces the whole vertex position array of an existing mesh.
func (w *Writer) SetVertexPositions(mesh int, positions [][3]float32) error {
	if err := w.mutable(); err != nil {
		return err
	}
	if err := checkIndex(mesh, len(w.doc.Meshes), "mesh"); err != nil {
		return err
	}
	w.doc.Meshes[mesh].VertexPositions = append([][3]float32(nil), positions...)
	w.dirty = true
	return nil
}

// SetVertexTextureCoordinates replaces the whole texture coordinate array of an existing mesh.
func (w *Writer) SetVertexTextureCoordinates(mesh int, coords []TextureCoordinate) error {
	if err := w.mutable(); err != nil {
		return err
	}
	if err := checkIndex(mesh, len(w.doc.Meshes), "mesh"); err != nil {
		return err
	}
	w.doc.Meshes[mesh].TextureCoordinates = append([]TextureCoordinate(nil), coords...)
	w.dirty = true
	return nil
}

// SetDocument replaces the staged document with a copy of doc.
func (w *Writer) SetDocument(doc *Document) error {
	if err := w.mutable(); err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrState)
	}
	w.doc = doc.Clone()
	w.dirty = true
	return nil
}

// SetFrom stages a copy of everything r has read, so a loaded file can be
// modified and written back.
func (w *Writer) SetFrom(r *Reader) error {
	doc, err := r.Document()
	if err != nil {
		return err
	}
	return w.SetDocument(doc)
}

// Document returns a copy of the staged document.
func (w *Writer) Document() *Document {
	return w.doc.Clone()
}

// Write serializes the staged document and closes the stream.
//
// Writing before anything was set is a StateError and leaves the writer usable.
// Any other failure leaves the target contents undefined; callers that need
// atomic replacement should use SaveFile.
func (w *Writer) Write() Status {
	if err := w.mutable(); err != nil {
		return StatusFromError(err)
	}
	if !w.dirty {
		return StatusFromError(fmt.Errorf("%w: no fields set before Write", ErrState))
	}

	if err := w.write(); err != nil {
		w.state = stateFailed
		w.opts.log.Warn("DNA write failed", zap.Error(err))
		return StatusFromError(err)
	}

	w.state = statePopulated
	w.opts.log.Debug("DNA written",
		zap.String("name", w.doc.Name),
		zap.Stringer("version", CurrentVersion),
		zap.Int("joints", len(w.doc.Joints)),
		zap.Int("meshes", len(w.doc.Meshes)),
	)
	return Success()
}

func (w *Writer) write() (err error) {
	if w.stream == nil {
		return fmt.Errorf("%w: writer has no stream", ErrIO)
	}
	defer func() {
		if cerr := w.stream.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := w.doc.Validate(); err != nil {
		return err
	}
	return encodeDocument(newEncoder(w.stream), w.doc)
}
