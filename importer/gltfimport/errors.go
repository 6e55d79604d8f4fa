package gltfimport

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/gltf_importer/utils/gltfutils"
)

var (
	ErrUnsupportedFormat   = gltfutils.ErrUnsupportedFormat
	ErrNoMeshes            = errors.New("document has no meshes")
	ErrStructuralMismatch  = errors.New("structural mismatch")
	ErrUnsupportedTopology = errors.New("unsupported primitive topology")
	ErrInvalidAccessor     = errors.New("invalid accessor")
)

type EntityKind string

const (
	KindMesh      EntityKind = "mesh"
	KindMaterial  EntityKind = "material"
	KindAnimation EntityKind = "animation"
	KindSkin      EntityKind = "skin"
)

type Failure struct {
	Kind    EntityKind `json:"kind" yaml:"kind" toml:"kind"`
	Name    string     `json:"name" yaml:"name" toml:"name"`
	Message string     `json:"error" yaml:"error" toml:"error"`
	Err     error      `json:"-" yaml:"-" toml:"-"`
}

// Report collects per-entity failures. Siblings of a failed entity are still converted.
type Report struct {
	Failures []Failure `json:"failures" yaml:"failures" toml:"failures"`
}

func (r *Report) Add(kind EntityKind, name string, err error) {
	r.Failures = append(r.Failures, Failure{Kind: kind, Name: name, Message: err.Error(), Err: err})
}

func (r *Report) Merge(other *Report) {
	if other != nil {
		r.Failures = append(r.Failures, other.Failures...)
	}
}

func (r *Report) HasFailures() bool {
	return r != nil && len(r.Failures) != 0
}

func (r *Report) String() string {
	if !r.HasFailures() {
		return "no failures"
	}
	lines := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		lines[i] = fmt.Sprintf("%s %q: %v", f.Kind, f.Name, f.Message)
	}
	return strings.Join(lines, "\n")
}
