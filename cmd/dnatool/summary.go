package main

import (
	"github.com/Faultbox/dnakit/pkg/dna"
	"github.com/Faultbox/dnakit/pkg/encoding"
	dmath "github.com/Faultbox/dnakit/pkg/math"
)

// docSummary is the YAML shape printed by dump.
type docSummary struct {
	Name     string        `yaml:"name"`
	Version  string        `yaml:"version"`
	Layer    string        `yaml:"layer"`
	LODCount uint32        `yaml:"lod_count"`
	Joints   []string      `yaml:"joints"`
	Meshes   []meshSummary `yaml:"meshes"`
}

type meshSummary struct {
	Index              int          `yaml:"index"`
	Name               string       `yaml:"name"`
	VertexCount        int          `yaml:"vertex_count"`
	TextureCoordCount  int          `yaml:"texture_coordinate_count"`
	Bounds             *boundsYAML  `yaml:"bounds,omitempty"`
	VertexPositions    [][3]float32 `yaml:"vertex_positions,omitempty,flow"`
	TextureCoordinates [][2]float32 `yaml:"texture_coordinates,omitempty,flow"`
}

type boundsYAML struct {
	Min [3]float32 `yaml:"min,flow"`
	Max [3]float32 `yaml:"max,flow"`
}

// summarize builds the dump view of a read document. Vertex data is only
// included when withVertices is set.
func summarize(r *dna.Reader, withVertices bool) (*docSummary, error) {
	doc, err := r.Document()
	if err != nil {
		return nil, err
	}

	s := &docSummary{
		Name:     encoding.ToUTF8([]byte(doc.Name)),
		Version:  r.Version().String(),
		Layer:    r.Layer().String(),
		LODCount: doc.LODCount,
		Joints:   make([]string, len(doc.Joints)),
		Meshes:   make([]meshSummary, len(doc.Meshes)),
	}
	for i, j := range doc.Joints {
		s.Joints[i] = encoding.ToUTF8([]byte(j.Name))
	}

	for i, m := range doc.Meshes {
		ms := meshSummary{
			Index:             i,
			Name:              encoding.ToUTF8([]byte(m.Name)),
			VertexCount:       len(m.VertexPositions),
			TextureCoordCount: len(m.TextureCoordinates),
		}
		if b := dmath.BoundsOf(m.VertexPositions); !b.Empty() {
			ms.Bounds = &boundsYAML{Min: b.Min.Array(), Max: b.Max.Array()}
		}
		if withVertices {
			ms.VertexPositions = m.VertexPositions
			for _, tc := range m.TextureCoordinates {
				ms.TextureCoordinates = append(ms.TextureCoordinates, [2]float32{tc.U, tc.V})
			}
		}
		s.Meshes[i] = ms
	}
	return s, nil
}
