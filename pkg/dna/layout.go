package dna

import "fmt"

// Magic is the 4-byte signature at the start of every DNA file.
const Magic = "RDNA"

// headerSize is the magic plus the two version halves.
const headerSize = 8

// Version represents the DNA file format version.
type Version struct {
	Major uint16
	Minor uint16
}

// CurrentVersion is the version written by Writer.
var CurrentVersion = Version{Major: 1, Minor: 0}

// String returns the version as "Major.Minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast returns true if version is >= major.minor.
func (v Version) AtLeast(major, minor uint16) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

// Supported reports whether this package can read the version.
// Minor revisions are forward compatible within a major version.
func (v Version) Supported() bool {
	return v.Major == CurrentVersion.Major
}

// encodeDocument writes doc in file order:
// header, descriptor, joint table, mesh table.
func encodeDocument(e *encoder, doc *Document) error {
	e.write([]byte(Magic), "magic")
	e.u16(CurrentVersion.Major, "version major")
	e.u16(CurrentVersion.Minor, "version minor")

	e.str(doc.Name, "name")
	e.u32(doc.LODCount, "LOD count")

	e.count(len(doc.Joints), "joint")
	for i := range doc.Joints {
		e.str(doc.Joints[i].Name, fmt.Sprintf("joint %d name", i))
	}

	e.count(len(doc.Meshes), "mesh")
	for i := range doc.Meshes {
		m := &doc.Meshes[i]
		e.str(m.Name, fmt.Sprintf("mesh %d name", i))
		e.positions(m.VertexPositions, fmt.Sprintf("mesh %d vertex position", i))
		e.texCoords(m.TextureCoordinates, fmt.Sprintf("mesh %d texture coordinate", i))
	}

	return e.err()
}

// decodeHeader reads and checks the magic and version.
func decodeHeader(d *decoder) (Version, error) {
	var magic [4]byte
	if err := d.full(magic[:], "magic"); err != nil {
		return Version{}, err
	}
	if string(magic[:]) != Magic {
		return Version{}, fmt.Errorf("%w: got %q", ErrInvalidMagic, magic[:])
	}

	var v Version
	var err error
	if v.Major, err = d.u16("version major"); err != nil {
		return Version{}, err
	}
	if v.Minor, err = d.u16("version minor"); err != nil {
		return Version{}, err
	}
	if !v.Supported() {
		return v, fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)
	}
	return v, nil
}

// decodeDocument reads a full document, materializing only the selected layers.
// Excluded sections are still consumed so the whole input is validated.
func decodeDocument(d *decoder, layer DataLayer) (*Document, Version, error) {
	layer = layer.normalize()

	version, err := decodeHeader(d)
	if err != nil {
		return nil, version, err
	}

	doc := &Document{}
	if doc.Name, err = d.str("name"); err != nil {
		return nil, version, err
	}
	if doc.LODCount, err = d.u32("LOD count"); err != nil {
		return nil, version, err
	}

	// Each joint name takes at least its 4-byte length prefix.
	jointCount, err := d.count(4, "joint")
	if err != nil {
		return nil, version, err
	}
	joints := make([]Joint, jointCount)
	for i := range joints {
		if joints[i].Name, err = d.str(fmt.Sprintf("joint %d name", i)); err != nil {
			return nil, version, err
		}
	}

	// A mesh record is at least a name prefix and two array counts.
	meshCount, err := d.count(12, "mesh")
	if err != nil {
		return nil, version, err
	}
	meshes := make([]Mesh, meshCount)
	for i := range meshes {
		m := &meshes[i]
		if m.Name, err = d.str(fmt.Sprintf("mesh %d name", i)); err != nil {
			return nil, version, err
		}

		posWhat := fmt.Sprintf("mesh %d vertex position", i)
		tcWhat := fmt.Sprintf("mesh %d texture coordinate", i)
		if layer.Has(LayerGeometry) {
			if m.VertexPositions, err = d.positions(posWhat); err != nil {
				return nil, version, err
			}
			if m.TextureCoordinates, err = d.texCoords(tcWhat); err != nil {
				return nil, version, err
			}
			continue
		}
		if _, err = d.skipArray(vertexPositionSize, posWhat); err != nil {
			return nil, version, err
		}
		if _, err = d.skipArray(textureCoordinateSize, tcWhat); err != nil {
			return nil, version, err
		}
	}

	if err := d.end(); err != nil {
		return nil, version, err
	}
	// Names are unique so that anything read can be written back.
	if err := uniqueNames(joints, meshes); err != nil {
		return nil, version, fmt.Errorf("%w: %w", ErrDuplicateName, err)
	}

	if layer.Has(LayerDefinition) {
		doc.Joints = joints
		doc.Meshes = meshes
	}
	return doc, version, nil
}
