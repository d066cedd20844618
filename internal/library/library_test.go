package library

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/dnakit/pkg/dna"
)

func saveRig(t *testing.T, path, name string) {
	t.Helper()
	doc := &dna.Document{
		Name:     name,
		LODCount: 2,
		Joints:   []dna.Joint{{Name: "root"}},
		Meshes: []dna.Mesh{{
			Name:            "head",
			VertexPositions: [][3]float32{{1, 2, 3}},
		}},
	}
	st := dna.SaveFile(path, doc)
	require.True(t, st.OK(), "save failed: %s", st)
}

func TestLibrary_LoadCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.dna")
	saveRig(t, path, "first")

	lib := New()
	doc, err := lib.Load(path, dna.LayerAll)
	require.NoError(t, err)
	assert.Equal(t, "first", doc.Name)

	again, err := lib.Load(path, dna.LayerAll)
	require.NoError(t, err)
	assert.Same(t, doc, again)

	hits, misses := lib.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
	assert.True(t, lib.Contains(path, dna.LayerAll))
	assert.False(t, lib.Contains(path, dna.LayerJoints))
}

func TestLibrary_ReloadsChangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.dna")
	saveRig(t, path, "first")

	lib := New()
	doc, err := lib.Load(path, dna.LayerAll)
	require.NoError(t, err)
	assert.Equal(t, "first", doc.Name)

	// The new name changes the file size.
	saveRig(t, path, "second")
	again, err := lib.Load(path, dna.LayerAll)
	require.NoError(t, err)
	assert.Equal(t, "second", again.Name)
	assert.NotSame(t, doc, again)

	hits, misses := lib.Stats()
	assert.Equal(t, 0, hits)
	assert.Equal(t, 2, misses)
	assert.Equal(t, 1, lib.Len())
}

func TestLibrary_LayersAreSeparate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.dna")
	saveRig(t, path, "rig")

	lib := New()
	all, err := lib.Load(path, dna.LayerAll)
	require.NoError(t, err)
	joints, err := lib.Load(path, dna.LayerJoints)
	require.NoError(t, err)

	assert.Len(t, all.Meshes[0].VertexPositions, 1)
	assert.Empty(t, joints.Meshes[0].VertexPositions)
	assert.Equal(t, 2, lib.Len())
}

func TestLibrary_Invalidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rig.dna")
	other := filepath.Join(dir, "other.dna")
	saveRig(t, path, "first")
	saveRig(t, other, "other")

	lib := New()
	_, err := lib.Load(path, dna.LayerAll)
	require.NoError(t, err)
	_, err = lib.Load(path, dna.LayerJoints)
	require.NoError(t, err)
	_, err = lib.Load(other, dna.LayerAll)
	require.NoError(t, err)

	// Same size as before; only Invalidate guarantees a reread.
	saveRig(t, path, "third")

	// A relative spelling of the same path still matches.
	wd, err := os.Getwd()
	require.NoError(t, err)
	rel, err := filepath.Rel(wd, path)
	require.NoError(t, err)
	lib.Invalidate(rel)

	assert.Equal(t, 1, lib.Len())
	doc, err := lib.Load(path, dna.LayerAll)
	require.NoError(t, err)
	assert.Equal(t, "third", doc.Name)
}

func TestLibrary_LoadError(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.dna")
	require.NoError(t, os.WriteFile(corrupt, []byte("RDNA\x01\x00"), 0644))

	lib := New()
	_, err := lib.Load(corrupt, dna.LayerAll)
	assert.ErrorIs(t, err, dna.ErrFormat)

	_, err = lib.Load(filepath.Join(dir, "missing.dna"), dna.LayerAll)
	assert.ErrorIs(t, err, dna.ErrIO)

	assert.Zero(t, lib.Len(), "failed loads must not be cached")
}

func TestLibrary_ConcurrentLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.dna")
	saveRig(t, path, "rig")

	lib := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := lib.Load(path, dna.LayerAll)
			assert.NoError(t, err)
			assert.Equal(t, "rig", doc.Name)
		}()
	}
	wg.Wait()

	hits, misses := lib.Stats()
	assert.Equal(t, 8, hits+misses)
	assert.Equal(t, 1, lib.Len())
}

func TestLibrary_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.dna")
	saveRig(t, path, "rig")

	lib := New()
	_, err := lib.Load(path, dna.LayerAll)
	require.NoError(t, err)

	lib.Close()
	assert.Zero(t, lib.Len())
	hits, misses := lib.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}
