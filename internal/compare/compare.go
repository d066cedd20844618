// Package compare finds vertex position differences between DNA documents
// and patches positions from one mesh onto another.
package compare

import (
	"fmt"

	"github.com/Faultbox/dnakit/pkg/dna"
	dmath "github.com/Faultbox/dnakit/pkg/math"
)

// VertexDelta is one vertex whose position moved by more than the tolerance.
type VertexDelta struct {
	Index    int
	From     [3]float32
	To       [3]float32
	Distance float32
}

// UVDelta is one texture coordinate that moved by more than the tolerance.
type UVDelta struct {
	Index    int
	From     dna.TextureCoordinate
	To       dna.TextureCoordinate
	Distance float32
}

// MeshDiff describes how one mesh differs between two documents.
type MeshDiff struct {
	Name     string
	CountA   int // Vertex count in the first document, -1 if the mesh is missing
	CountB   int // Vertex count in the second document, -1 if the mesh is missing
	UVCountA int
	UVCountB int
	Deltas   []VertexDelta
	UVDeltas []UVDelta
}

// Equal reports whether the mesh exists on both sides with the same
// counts and nothing moved.
func (d MeshDiff) Equal() bool {
	return d.CountA == d.CountB && d.CountA >= 0 &&
		d.UVCountA == d.UVCountB &&
		len(d.Deltas) == 0 && len(d.UVDeltas) == 0
}

// Positions compares two position arrays index by index, up to the shorter
// length, and returns the vertices that moved by more than tolerance.
func Positions(a, b [][3]float32, tolerance float32) []VertexDelta {
	n := min(len(a), len(b))
	var deltas []VertexDelta
	for i := 0; i < n; i++ {
		dist := dmath.FromArray(a[i]).Distance(dmath.FromArray(b[i]))
		if dist > tolerance {
			deltas = append(deltas, VertexDelta{Index: i, From: a[i], To: b[i], Distance: dist})
		}
	}
	return deltas
}

// TextureCoordinates compares two texture coordinate arrays the same way
// Positions compares vertex positions.
func TextureCoordinates(a, b []dna.TextureCoordinate, tolerance float32) []UVDelta {
	n := min(len(a), len(b))
	var deltas []UVDelta
	for i := 0; i < n; i++ {
		dist := dmath.Vec2{X: a[i].U, Y: a[i].V}.Distance(dmath.Vec2{X: b[i].U, Y: b[i].V})
		if dist > tolerance {
			deltas = append(deltas, UVDelta{Index: i, From: a[i], To: b[i], Distance: dist})
		}
	}
	return deltas
}

// Meshes compares the meshes of a and b matched by name. Meshes of a come
// first in their original order, followed by meshes that exist only in b.
func Meshes(a, b *dna.Document, tolerance float32) []MeshDiff {
	diffs := make([]MeshDiff, 0, len(a.Meshes))
	for _, ma := range a.Meshes {
		d := MeshDiff{
			Name:     ma.Name,
			CountA:   len(ma.VertexPositions),
			CountB:   -1,
			UVCountA: len(ma.TextureCoordinates),
		}
		if j := b.MeshIndex(ma.Name); j >= 0 {
			mb := b.Meshes[j]
			d.CountB = len(mb.VertexPositions)
			d.UVCountB = len(mb.TextureCoordinates)
			d.Deltas = Positions(ma.VertexPositions, mb.VertexPositions, tolerance)
			d.UVDeltas = TextureCoordinates(ma.TextureCoordinates, mb.TextureCoordinates, tolerance)
		}
		diffs = append(diffs, d)
	}
	for _, mb := range b.Meshes {
		if a.MeshIndex(mb.Name) < 0 {
			diffs = append(diffs, MeshDiff{
				Name:     mb.Name,
				CountA:   -1,
				CountB:   len(mb.VertexPositions),
				UVCountB: len(mb.TextureCoordinates),
			})
		}
	}
	return diffs
}

// CopyPositions returns dst with every vertex that differs from src by more
// than tolerance replaced by the src position, plus the indices it changed.
// Both arrays must have the same length.
func CopyPositions(src, dst [][3]float32, tolerance float32) ([][3]float32, []int, error) {
	if len(src) != len(dst) {
		return nil, nil, fmt.Errorf("vertex counts differ: source has %d, target has %d", len(src), len(dst))
	}

	out := append([][3]float32(nil), dst...)
	var changed []int
	for _, d := range Positions(dst, src, tolerance) {
		out[d.Index] = src[d.Index]
		changed = append(changed, d.Index)
	}
	return out, changed, nil
}

// MeshBounds returns the bounding box of every mesh's vertex positions.
func MeshBounds(doc *dna.Document) []dmath.Bounds {
	out := make([]dmath.Bounds, len(doc.Meshes))
	for i, m := range doc.Meshes {
		out[i] = dmath.BoundsOf(m.VertexPositions)
	}
	return out
}
