package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0, cfg.Importer.MeshIndex)
	assert.True(t, cfg.Importer.ExtractTextures)
	assert.Equal(t, "yaml", cfg.Importer.ManifestFormat)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
importer:
  mesh_index: 2
  extract_textures: false
  manifest_format: toml
server:
  addr: "127.0.0.1:9000"
  asset_dir: ./assets
logging:
  level: debug
  log_file: import.log
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Importer.MeshIndex)
	assert.False(t, cfg.Importer.ExtractTextures)
	assert.True(t, cfg.Importer.Optimize, "unset keys keep defaults")
	assert.Equal(t, "toml", cfg.Importer.ManifestFormat)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "./assets", cfg.Server.AssetDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "import.log", cfg.Logging.LogFile)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("importer:\n  mesh_index: nope\n"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Server.AssetDir = "models"
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
