package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/gltf_importer/importer/gltfimport"
	"github.com/mogaika/gltf_importer/manifest"
	"github.com/mogaika/gltf_importer/utils/gltfutils"
)

func writeTriangle(t *testing.T, path string) {
	t.Helper()
	doc := gltf.NewDocument()
	doc.Meshes = []*gltf.Mesh{{Name: "Tri", Primitives: []*gltf.Primitive{{
		Attributes: map[string]uint32{
			gltf.POSITION: modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}),
		},
	}}}}
	var buf bytes.Buffer
	require.NoError(t, gltfutils.ExportBinary(&buf, doc))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestConvertWritesManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.glb")
	writeTriangle(t, path)

	var dump bytes.Buffer
	c := &converter{opts: gltfimport.DefaultOptions(), format: manifest.FormatTOML, dump: &dump}
	m, err := c.convert(path)
	require.NoError(t, err)
	assert.Equal(t, "Tri", m.Model)

	loaded, err := manifest.Load(filepath.Join(dir, "tri.manifest.toml"))
	require.NoError(t, err)
	assert.Equal(t, m.Assets, loaded.Assets)
	assert.Contains(t, dump.String(), "Tri")
}

func TestConvertUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0"), 0644))

	c := &converter{opts: gltfimport.DefaultOptions(), format: manifest.FormatYAML}
	_, err := c.convert(path)
	assert.ErrorIs(t, err, gltfimport.ErrUnsupportedFormat)
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	writeTriangle(t, filepath.Join(dir, "b.glb"))
	writeTriangle(t, filepath.Join(dir, "a.glb"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.gltf"), 0755))
	single := filepath.Join(t.TempDir(), "single.gltf")
	require.NoError(t, os.WriteFile(single, nil, 0644))

	files, err := collectInputs([]string{dir, single})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.glb"), filepath.Join(dir, "b.glb"), single}, files)

	_, err = collectInputs([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}

func TestWatchReconverts(t *testing.T) {
	watchDebounce = 20 * time.Millisecond
	dir := t.TempDir()

	ws, err := newWatchSet([]string{dir})
	require.NoError(t, err)
	defer ws.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	c := &converter{opts: gltfimport.DefaultOptions(), format: manifest.FormatJSON}
	go func() { done <- c.run(ctx, ws) }()

	writeTriangle(t, filepath.Join(dir, "live.glb"))
	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "live.manifest.json"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatchSetMatches(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(t.TempDir(), "one.gltf")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	ws, err := newWatchSet([]string{dir, file})
	require.NoError(t, err)
	defer ws.Close()

	assert.True(t, ws.matches(filepath.Join(dir, "x.glb")))
	assert.False(t, ws.matches(filepath.Join(dir, "x.manifest.yaml")))
	assert.False(t, ws.matches(filepath.Join(dir, "x.png")))
	assert.True(t, ws.matches(file))
	assert.False(t, ws.matches(filepath.Join(filepath.Dir(file), "other.gltf")))
}
