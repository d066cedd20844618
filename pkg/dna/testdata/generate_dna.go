//go:build ignore

// This program generates a test DNA file for unit tests.
// Run with: go run generate_dna.go
package main

import (
	"bytes"
	"encoding/binary"
	"os"
)

func main() {
	var buf bytes.Buffer

	writeString := func(s string) {
		binary.Write(&buf, binary.LittleEndian, uint32(len(s)))
		buf.WriteString(s)
	}

	// Header: version 1.0
	buf.WriteString("RDNA")
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // major
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // minor

	writeString("testdata rig")
	binary.Write(&buf, binary.LittleEndian, uint32(3)) // LOD count

	joints := []string{"root", "pelvis", "spine_01", "neck_01", "head"}
	binary.Write(&buf, binary.LittleEndian, uint32(len(joints)))
	for _, j := range joints {
		writeString(j)
	}

	binary.Write(&buf, binary.LittleEndian, uint32(2)) // mesh count

	// Mesh 0: unit quad with matching UVs
	writeString("head_lod0_mesh")
	quad := [][3]float32{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}
	binary.Write(&buf, binary.LittleEndian, uint32(len(quad)))
	binary.Write(&buf, binary.LittleEndian, quad)
	uvs := [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	binary.Write(&buf, binary.LittleEndian, uint32(len(uvs)))
	binary.Write(&buf, binary.LittleEndian, uvs)

	// Mesh 1: positions only
	writeString("eyeLeft_lod0_mesh")
	eye := [][3]float32{{0.3, 1.6, 0.1}, {0.35, 1.6, 0.12}, {0.3, 1.65, 0.1}}
	binary.Write(&buf, binary.LittleEndian, uint32(len(eye)))
	binary.Write(&buf, binary.LittleEndian, eye)
	binary.Write(&buf, binary.LittleEndian, uint32(0))

	if err := os.WriteFile("test.dna", buf.Bytes(), 0644); err != nil {
		panic(err)
	}
}
