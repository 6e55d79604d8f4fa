// Package config handles importer configuration loading and saving.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Importer ImporterConfig `yaml:"importer"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ImporterConfig struct {
	MeshIndex       int    `yaml:"mesh_index"`
	ExtractTextures bool   `yaml:"extract_textures"`
	Optimize        bool   `yaml:"optimize_animations"`
	ManifestFormat  string `yaml:"manifest_format"` // yaml, json or toml
}

type ServerConfig struct {
	Addr     string `yaml:"addr"`
	AssetDir string `yaml:"asset_dir"`
	WebPath  string `yaml:"web_path"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

func Default() *Config {
	return &Config{
		Importer: ImporterConfig{
			MeshIndex:       0,
			ExtractTextures: true,
			Optimize:        true,
			ManifestFormat:  "yaml",
		},
		Server: ServerConfig{
			Addr:    ":8000",
			WebPath: "web",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := loadFromFile(cfg, path); err != nil {
		return nil, errors.Wrapf(err, "Unable to load config %q", path)
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrapf(err, "Failed to marshal config")
	}

	return os.WriteFile(path, data, 0644)
}
