package gltfutils

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

var ErrUnsupportedFormat = errors.New("unsupported interchange format")

// Container is the on-disk form of a glTF document.
type Container int

const (
	ContainerUnknown Container = iota
	// ContainerSeparate is a .gltf json file with external or data-uri buffers
	ContainerSeparate
	// ContainerBinary is a single .glb file with an embedded binary chunk
	ContainerBinary
)

func ContainerFromPath(path string) Container {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", "":
		return ContainerSeparate
	case ".glb":
		return ContainerBinary
	default:
		return ContainerUnknown
	}
}

func IsSupported(path string) bool {
	return ContainerFromPath(path) != ContainerUnknown
}

// Open loads the document at path. Unknown extensions return ErrUnsupportedFormat.
func Open(path string) (*gltf.Document, error) {
	switch ContainerFromPath(path) {
	case ContainerSeparate:
		doc, err := gltf.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to open gltf %q", path)
		}
		return doc, nil
	case ContainerBinary:
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to open glb %q", path)
		}
		defer f.Close()
		doc, err := Decode(f)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to decode glb %q", path)
		}
		return doc, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", filepath.Ext(path))
	}
}

// Decode reads a self-contained document (glb or gltf with embedded buffers).
func Decode(r io.Reader) (*gltf.Document, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ExportBinary writes doc as glb.
func ExportBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
