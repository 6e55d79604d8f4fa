// Package manifest writes the summary of an import next to the source asset.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/gltf_importer/importer/gltfimport"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatYAML, FormatJSON, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.Errorf("Unknown manifest format %q", s)
}

func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

func (f Format) Extension() string {
	return "." + string(f)
}

type AssetKind string

const (
	KindModel     AssetKind = "model"
	KindMaterial  AssetKind = "material"
	KindAnimation AssetKind = "animation"
	KindTexture   AssetKind = "texture"
)

type Entry struct {
	ID   string    `json:"id" yaml:"id" toml:"id"`
	Kind AssetKind `json:"kind" yaml:"kind" toml:"kind"`
	Name string    `json:"name" yaml:"name" toml:"name"`
}

type Manifest struct {
	Source                string                `json:"source" yaml:"source" toml:"source"`
	Model                 string                `json:"model" yaml:"model" toml:"model"`
	TotalAnimationSeconds float64               `json:"total_animation_seconds" yaml:"total_animation_seconds" toml:"total_animation_seconds"`
	Assets                []Entry               `json:"assets" yaml:"assets" toml:"assets"`
	Summary               gltfimport.EntityInfo `json:"summary" yaml:"summary" toml:"summary"`
	Failures              []gltfimport.Failure  `json:"failures,omitempty" yaml:"failures,omitempty" toml:"failures,omitempty"`
}

var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("gltf_importer"))

// AssetID is stable for a given kind and name across runs.
func AssetID(kind AssetKind, name string) string {
	return uuid.NewSHA1(namespace, []byte(string(kind)+":"+name)).String()
}

func newEntry(kind AssetKind, name string) Entry {
	return Entry{ID: AssetID(kind, name), Kind: kind, Name: name}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Build lists every asset the import produced. Texture names are relative to the source directory.
func Build(result *gltfimport.Result) *Manifest {
	model := "Mesh"
	switch {
	case result.Model != nil && len(result.Model.Meshes) != 0:
		model = result.Model.Meshes[0].Name
	case result.Document != nil:
		model = gltfimport.FirstModelName(result.Document)
	}

	m := &Manifest{
		Source:                filepath.Base(result.SourcePath),
		Model:                 model,
		TotalAnimationSeconds: result.TotalAnimationDuration.Seconds(),
	}
	m.Assets = append(m.Assets, newEntry(KindModel, model))
	for _, name := range sortedKeys(result.Materials) {
		m.Assets = append(m.Assets, newEntry(KindMaterial, name))
	}
	for _, name := range sortedKeys(result.Animations) {
		m.Assets = append(m.Assets, newEntry(KindAnimation, name))
	}
	if result.EntityInfo != nil {
		m.Summary = *result.EntityInfo
		dir := filepath.Dir(result.SourcePath)
		for _, texture := range result.EntityInfo.TextureDependencies {
			name := texture
			if rel, err := filepath.Rel(dir, texture); err == nil {
				name = filepath.ToSlash(rel)
			}
			m.Assets = append(m.Assets, newEntry(KindTexture, name))
		}
	}
	if result.Report != nil {
		m.Failures = result.Report.Failures
	}
	return m
}

func (m *Manifest) Marshal(f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(m)
	case FormatJSON:
		return json.MarshalIndent(m, "", "  ")
	case FormatTOML:
		return toml.Marshal(m)
	}
	return nil, errors.Errorf("Unknown manifest format %q", f)
}

func Unmarshal(data []byte, f Format) (*Manifest, error) {
	m := &Manifest{}
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, m)
	case FormatJSON:
		err = json.Unmarshal(data, m)
	case FormatTOML:
		err = toml.Unmarshal(data, m)
	default:
		err = errors.Errorf("Unknown manifest format %q", f)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// PathFor is the manifest path next to the source asset.
func PathFor(sourcePath string, f Format) string {
	return strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + ".manifest" + f.Extension()
}

// Save writes m to path, choosing the format from the extension.
func (m *Manifest) Save(path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := m.Marshal(f)
	if err != nil {
		return errors.Wrapf(err, "Failed to marshal manifest")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "Unable to write manifest %q", path)
	}
	return nil
}

func Load(path string) (*Manifest, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read manifest %q", path)
	}
	m, err := Unmarshal(data, f)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to parse manifest %q", path)
	}
	return m, nil
}
