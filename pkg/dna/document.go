package dna

import (
	"fmt"
	"strings"
)

// DataLayer selects which record categories a Reader materializes.
type DataLayer uint8

const (
	LayerDescriptor DataLayer = 1 << iota // Name and LOD count (always read)
	LayerDefinition                       // Joint names and mesh names
	LayerGeometry                         // Vertex positions and texture coordinates

	// LayerJoints reads joints and mesh names but no geometry.
	LayerJoints = LayerDescriptor | LayerDefinition
	// LayerAll reads everything.
	LayerAll = LayerDescriptor | LayerDefinition | LayerGeometry
)

// Has reports whether every bit of other is selected.
func (l DataLayer) Has(other DataLayer) bool {
	return l&other == other
}

// normalize applies the implied layers: geometry needs definition,
// and the descriptor is always read.
func (l DataLayer) normalize() DataLayer {
	l |= LayerDescriptor
	if l.Has(LayerGeometry) {
		l |= LayerDefinition
	}
	return l
}

// String returns the layer name used in config files and flags.
func (l DataLayer) String() string {
	switch l.normalize() {
	case LayerAll:
		return "all"
	case LayerJoints:
		return "joints"
	case LayerDescriptor:
		return "descriptor"
	default:
		return fmt.Sprintf("DataLayer(%#x)", uint8(l))
	}
}

// ParseDataLayer parses a layer name: all, geometry, joints, definition or descriptor.
func ParseDataLayer(s string) (DataLayer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "geometry", "":
		return LayerAll, nil
	case "joints", "definition":
		return LayerJoints, nil
	case "descriptor":
		return LayerDescriptor, nil
	default:
		return 0, fmt.Errorf("unknown data layer %q", s)
	}
}

// TextureCoordinate is a single UV pair.
type TextureCoordinate struct {
	U, V float32
}

// Joint is a named joint. Its index is its position in Document.Joints.
type Joint struct {
	Name string
}

// Mesh is a named mesh with its vertex data.
type Mesh struct {
	Name               string
	VertexPositions    [][3]float32        // X, Y, Z per vertex
	TextureCoordinates []TextureCoordinate // Independently sized from VertexPositions
}

// Document is the in-memory form of a DNA file. Reader produces it and
// Writer stages it, so a loaded document can be modified and written back.
type Document struct {
	Name     string
	LODCount uint32
	Joints   []Joint
	Meshes   []Mesh
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Name:     d.Name,
		LODCount: d.LODCount,
		Joints:   append([]Joint(nil), d.Joints...),
		Meshes:   make([]Mesh, len(d.Meshes)),
	}
	for i, m := range d.Meshes {
		out.Meshes[i] = Mesh{
			Name:               m.Name,
			VertexPositions:    append([][3]float32(nil), m.VertexPositions...),
			TextureCoordinates: append([]TextureCoordinate(nil), m.TextureCoordinates...),
		}
	}
	return out
}

// JointIndex returns the index of the named joint, or -1.
func (d *Document) JointIndex(name string) int {
	for i := range d.Joints {
		if d.Joints[i].Name == name {
			return i
		}
	}
	return -1
}

// MeshIndex returns the index of the named mesh, or -1.
func (d *Document) MeshIndex(name string) int {
	for i := range d.Meshes {
		if d.Meshes[i].Name == name {
			return i
		}
	}
	return -1
}

// TotalVertexCount returns the vertex position count across all meshes.
func (d *Document) TotalVertexCount() int {
	total := 0
	for _, m := range d.Meshes {
		total += len(m.VertexPositions)
	}
	return total
}

// Validate checks the invariants a document must hold before it is written:
// joint names and mesh names are unique within the document.
func (d *Document) Validate() error {
	if err := uniqueNames(d.Joints, d.Meshes); err != nil {
		return fmt.Errorf("%w: %w", ErrState, err)
	}
	return nil
}

// uniqueNames reports the first repeated joint or mesh name.
func uniqueNames(joints []Joint, meshes []Mesh) error {
	seen := make(map[string]int, len(joints))
	for i, j := range joints {
		if prev, ok := seen[j.Name]; ok {
			return fmt.Errorf("joint %d duplicates name %q of joint %d", i, j.Name, prev)
		}
		seen[j.Name] = i
	}

	seen = make(map[string]int, len(meshes))
	for i, m := range meshes {
		if prev, ok := seen[m.Name]; ok {
			return fmt.Errorf("mesh %d duplicates name %q of mesh %d", i, m.Name, prev)
		}
		seen[m.Name] = i
	}
	return nil
}
