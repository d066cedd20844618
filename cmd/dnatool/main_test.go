package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/dnakit/internal/config"
	"github.com/Faultbox/dnakit/pkg/dna"
)

// setup redirects command output and restores the default config.
func setup(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	prevOut, prevErr, prevCfg := stdout, stderr, cfg
	stdout, stderr, cfg = out, errOut, config.Default()
	t.Cleanup(func() {
		stdout, stderr, cfg = prevOut, prevErr, prevCfg
	})
	return out, errOut
}

func createDemo(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.Equal(t, 0, run("create", []string{path}))
	return path
}

func readDoc(t *testing.T, path string) *dna.Document {
	t.Helper()
	r, st := dna.LoadFile(path, dna.LayerAll)
	require.True(t, st.OK(), "load %s: %s", path, st)
	doc, err := r.Document()
	require.NoError(t, err)
	return doc
}

func TestCreateAndInfo(t *testing.T) {
	out, _ := setup(t)
	path := createDemo(t, t.TempDir(), "demo.dna")
	assert.Contains(t, out.String(), "Created: "+path)

	out.Reset()
	require.Equal(t, 0, run("info", []string{path}))
	text := out.String()
	assert.Contains(t, text, "Name:     demo rig")
	assert.Contains(t, text, "Version:  1.0")
	assert.Contains(t, text, "LODs:     2")
	assert.Contains(t, text, "Joints:   4")
	assert.Contains(t, text, "Meshes:   2")
	assert.Contains(t, text, "Vertices: 7")
	assert.Contains(t, text, "Bounds:   (-1.0000, 0.0000, 0.0000) .. (1.0000, 2.0000, 1.0000)")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "atomic save left a temporary file")
}

func TestCreateInPlace(t *testing.T) {
	setup(t)
	cfg.Writer.Atomic = false
	path := createDemo(t, t.TempDir(), "demo.dna")

	doc := readDoc(t, path)
	assert.Equal(t, "demo rig", doc.Name)
	assert.Len(t, doc.Meshes, 2)
}

func TestJointsAndMeshes(t *testing.T) {
	out, _ := setup(t)
	path := createDemo(t, t.TempDir(), "demo.dna")

	out.Reset()
	require.Equal(t, 0, run("joints", []string{path}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "   3  head", lines[3])

	out.Reset()
	require.Equal(t, 0, run("meshes", []string{path}))
	assert.Contains(t, out.String(), "head_lod0_mesh")
	assert.Contains(t, out.String(), "teeth_lod0_mesh")
}

func TestMeshes_JointsLayer(t *testing.T) {
	out, _ := setup(t)
	path := createDemo(t, t.TempDir(), "demo.dna")
	cfg.Data.Layer = "joints"

	out.Reset()
	require.Equal(t, 0, run("meshes", []string{path}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2, "mesh names are still listed")
	for _, line := range lines {
		assert.Contains(t, line, " 0 vertices")
	}
}

func TestVertices(t *testing.T) {
	out, _ := setup(t)
	path := createDemo(t, t.TempDir(), "demo.dna")

	out.Reset()
	require.Equal(t, 0, run("vertices", []string{"-n", "2", path, "head_lod0_mesh"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "     1  (1.0000, 0.0000, 0.0000)  uv (1.0000, 0.0000)", lines[1])

	out.Reset()
	require.Equal(t, 0, run("vertices", []string{"-columns", path, "1"}))
	assert.Contains(t, out.String(), "x: [-0.2, 0.2, 0]")
	assert.Contains(t, out.String(), "v: [0, 0, 1]")

	assert.Equal(t, 1, run("vertices", []string{path, "eyes"}))
	assert.Equal(t, 1, run("vertices", []string{path, "7"}))
}

func TestDump(t *testing.T) {
	out, _ := setup(t)
	path := createDemo(t, t.TempDir(), "demo.dna")

	out.Reset()
	require.Equal(t, 0, run("dump", []string{"-vertices", path}))

	var s docSummary
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &s))
	assert.Equal(t, "demo rig", s.Name)
	assert.Equal(t, "all", s.Layer)
	assert.Equal(t, []string{"root", "spine", "neck", "head"}, s.Joints)
	require.Len(t, s.Meshes, 2)
	assert.Equal(t, 4, s.Meshes[0].VertexCount)
	require.NotNil(t, s.Meshes[0].Bounds)
	assert.Equal(t, [3]float32{0, 2, 0}, s.Meshes[0].VertexPositions[2])
	assert.Equal(t, [2]float32{0.5, 1}, s.Meshes[1].TextureCoordinates[2])
}

func TestValidate(t *testing.T) {
	out, _ := setup(t)
	dir := t.TempDir()
	good := createDemo(t, dir, "good.dna")

	out.Reset()
	require.Equal(t, 0, run("validate", []string{good}))
	assert.Contains(t, out.String(), "OK   "+good)

	bad := filepath.Join(dir, "bad.dna")
	data, err := os.ReadFile(good)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(bad, data[:len(data)-3], 0644))

	out.Reset()
	assert.Equal(t, 1, run("validate", []string{good, bad}))
	assert.Contains(t, out.String(), "FAIL "+bad)
	assert.Contains(t, out.String(), "FormatError")
}

func TestValidate_VersionRange(t *testing.T) {
	out, _ := setup(t)
	path := createDemo(t, t.TempDir(), "demo.dna")

	out.Reset()
	require.Equal(t, 0, run("validate", []string{"-version", ">=1.0, <2", path}))
	assert.Contains(t, out.String(), "OK   "+path)

	out.Reset()
	assert.Equal(t, 1, run("validate", []string{"-version", ">=1.1", path}))
	assert.Contains(t, out.String(), "version 1.0 does not satisfy >=1.1")

	assert.Equal(t, 1, run("validate", []string{"-version", "not a range", path}))
}

func TestDiff(t *testing.T) {
	out, _ := setup(t)
	dir := t.TempDir()
	a := createDemo(t, dir, "a.dna")
	b := createDemo(t, dir, "b.dna")

	out.Reset()
	require.Equal(t, 0, run("diff", []string{a, b}))
	assert.Contains(t, out.String(), "identical")

	doc := readDoc(t, b)
	doc.Meshes[0].VertexPositions[1] = [3]float32{1, 0.5, 0}
	doc.Meshes[0].VertexPositions[2][2] = 0.0001
	require.True(t, dna.SaveFile(b, doc).OK())

	out.Reset()
	assert.Equal(t, 1, run("diff", []string{a, b}))
	assert.Contains(t, out.String(), `mesh "head_lod0_mesh": 1 vertices moved`)
	assert.NotContains(t, out.String(), "teeth")
}

func TestCopyPositions(t *testing.T) {
	out, _ := setup(t)
	dir := t.TempDir()
	src := createDemo(t, dir, "src.dna")
	dst := createDemo(t, dir, "dst.dna")

	edited := readDoc(t, src)
	edited.Meshes[0].VertexPositions[3] = [3]float32{0, 1, 1.5}
	require.True(t, dna.SaveFile(src, edited).OK())

	moved := readDoc(t, dst)
	moved.Meshes[0].Name = "head"
	require.True(t, dna.SaveFile(dst, moved).OK())

	out.Reset()
	outPath := filepath.Join(dir, "patched.dna")
	require.Equal(t, 0, run("copy-positions", []string{
		"-mesh", "head_lod0_mesh", "-target", "head", "-out", outPath, src, dst,
	}))
	assert.Contains(t, out.String(), "Copied 1 of 4 vertex positions")

	patched := readDoc(t, outPath)
	assert.Equal(t, [3]float32{0, 1, 1.5}, patched.Meshes[0].VertexPositions[3])
	assert.Equal(t, moved.Meshes[0].TextureCoordinates, patched.Meshes[0].TextureCoordinates)
	assert.Equal(t, moved.Meshes[1], patched.Meshes[1])

	// The target file itself is untouched when -out is given.
	assert.Equal(t, [3]float32{0, 1, 1}, readDoc(t, dst).Meshes[0].VertexPositions[3])

	assert.Equal(t, 1, run("copy-positions", []string{"-mesh", "teeth_lod0_mesh", "-target", "head", src, dst}),
		"vertex count mismatch must fail")
	assert.Equal(t, 1, run("copy-positions", []string{src, dst}), "-mesh is required")
}

func TestDetect(t *testing.T) {
	out, _ := setup(t)
	dir := t.TempDir()
	path := createDemo(t, dir, "demo.dna")
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("just some notes"), 0644))

	out.Reset()
	require.Equal(t, 0, run("detect", []string{path, text}))
	assert.Contains(t, out.String(), path+": dna (application/x-rig-dna)")
	assert.Contains(t, out.String(), text+": unknown")
}

func TestUnknownCommand(t *testing.T) {
	_, errOut := setup(t)
	assert.Equal(t, 1, run("explode", nil))
	assert.Contains(t, errOut.String(), "Unknown command: explode")
	assert.Equal(t, 1, run("info", nil), "missing argument")
}

func TestWatchFile(t *testing.T) {
	setup(t)
	path := createDemo(t, t.TempDir(), "demo.dna")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 20*time.Millisecond, func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register before touching the file.
	time.Sleep(100 * time.Millisecond)
	doc := readDoc(t, path)
	doc.Name = "renamed"
	require.True(t, dna.SaveFile(path, doc).OK())

	select {
	case <-changed:
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestConfigCommand(t *testing.T) {
	out, _ := setup(t)
	cfg.Compare.Tolerance = 0.25

	require.Equal(t, 0, run("config", nil))
	var printed config.Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, float32(0.25), printed.Compare.Tolerance)
	assert.Equal(t, "all", printed.Data.Layer)

	out.Reset()
	path := filepath.Join(t.TempDir(), "sub", "dnakit.yaml")
	require.Equal(t, 0, run("config", []string{"-o", path}))
	assert.Contains(t, out.String(), "Saved: "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tolerance: 0.25")
}
