package gltfimport

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/gltf_importer/engine/graphics"
)

// indexed attribute prefixes and their engine semantics
var indexedSemantics = []struct {
	prefix   string
	semantic string
}{
	{"TEXCOORD_", graphics.SemanticTexCoord},
	{"COLOR_", graphics.SemanticColor},
	{"JOINTS_", graphics.SemanticBlendIndices},
	{"WEIGHTS_", graphics.SemanticBlendWeight},
}

func splitAttributeName(name string) (semantic string, index int) {
	for _, s := range indexedSemantics {
		if strings.HasPrefix(name, s.prefix) {
			if i, err := strconv.Atoi(name[len(s.prefix):]); err == nil && i >= 0 {
				return s.semantic, i
			}
		}
	}
	return name, 0
}

// AccessorName maps an engine element back to the glTF attribute name that feeds it.
func AccessorName(e graphics.VertexElement) string {
	for _, s := range indexedSemantics {
		if e.SemanticName == s.semantic {
			return s.prefix + strconv.Itoa(e.SemanticIndex)
		}
	}
	return e.SemanticName
}

func attributeRank(name string) (int, int) {
	switch name {
	case gltf.POSITION:
		return 0, 0
	case gltf.NORMAL:
		return 1, 0
	case gltf.TANGENT:
		return 2, 0
	}
	semantic, index := splitAttributeName(name)
	switch semantic {
	case graphics.SemanticTexCoord:
		return 3, index
	case graphics.SemanticColor:
		return 4, index
	case graphics.SemanticBlendIndices:
		return 5, index
	case graphics.SemanticBlendWeight:
		return 6, index
	}
	return 7, 0
}

// SortedAttributes returns attribute names in the canonical declaration order.
func SortedAttributes(attributes map[string]uint32) []string {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, ii := attributeRank(names[i])
		rj, ij := attributeRank(names[j])
		if ri != rj {
			return ri < rj
		}
		if ii != ij {
			return ii < ij
		}
		return names[i] < names[j]
	})
	return names
}

type formatKey struct {
	component  gltf.ComponentType
	normalized bool
	count      int
}

var pixelFormats = map[formatKey]graphics.PixelFormat{
	{gltf.ComponentFloat, false, 1}: graphics.FormatR32Float,
	{gltf.ComponentFloat, false, 2}: graphics.FormatR32G32Float,
	{gltf.ComponentFloat, false, 3}: graphics.FormatR32G32B32Float,
	{gltf.ComponentFloat, false, 4}: graphics.FormatR32G32B32A32Float,

	{gltf.ComponentUbyte, false, 1}: graphics.FormatR8UInt,
	{gltf.ComponentUbyte, false, 2}: graphics.FormatR8G8UInt,
	{gltf.ComponentUbyte, false, 3}: graphics.FormatR8G8B8UInt,
	{gltf.ComponentUbyte, false, 4}: graphics.FormatR8G8B8A8UInt,
	{gltf.ComponentUbyte, true, 2}:  graphics.FormatR8G8UNorm,
	{gltf.ComponentUbyte, true, 3}:  graphics.FormatR8G8B8UNorm,
	{gltf.ComponentUbyte, true, 4}:  graphics.FormatR8G8B8A8UNorm,

	{gltf.ComponentUshort, false, 1}: graphics.FormatR16UInt,
	{gltf.ComponentUshort, false, 2}: graphics.FormatR16G16UInt,
	{gltf.ComponentUshort, false, 3}: graphics.FormatR16G16B16UInt,
	{gltf.ComponentUshort, false, 4}: graphics.FormatR16G16B16A16UInt,
	{gltf.ComponentUshort, true, 2}:  graphics.FormatR16G16UNorm,
	{gltf.ComponentUshort, true, 3}:  graphics.FormatR16G16B16UNorm,
	{gltf.ComponentUshort, true, 4}:  graphics.FormatR16G16B16A16UNorm,

	{gltf.ComponentUint, false, 1}: graphics.FormatR32UInt,
	{gltf.ComponentUint, false, 2}: graphics.FormatR32G32UInt,
	{gltf.ComponentUint, false, 3}: graphics.FormatR32G32B32UInt,
	{gltf.ComponentUint, false, 4}: graphics.FormatR32G32B32A32UInt,

	{gltf.ComponentByte, false, 1}: graphics.FormatR8SInt,
	{gltf.ComponentByte, false, 2}: graphics.FormatR8G8SInt,
	{gltf.ComponentByte, false, 3}: graphics.FormatR8G8B8SInt,
	{gltf.ComponentByte, false, 4}: graphics.FormatR8G8B8A8SInt,
	{gltf.ComponentByte, true, 2}:  graphics.FormatR8G8SNorm,
	{gltf.ComponentByte, true, 3}:  graphics.FormatR8G8B8SNorm,
	{gltf.ComponentByte, true, 4}:  graphics.FormatR8G8B8A8SNorm,

	{gltf.ComponentShort, false, 1}: graphics.FormatR16SInt,
	{gltf.ComponentShort, false, 2}: graphics.FormatR16G16SInt,
	{gltf.ComponentShort, false, 3}: graphics.FormatR16G16B16SInt,
	{gltf.ComponentShort, false, 4}: graphics.FormatR16G16B16A16SInt,
	{gltf.ComponentShort, true, 2}:  graphics.FormatR16G16SNorm,
	{gltf.ComponentShort, true, 3}:  graphics.FormatR16G16B16SNorm,
	{gltf.ComponentShort, true, 4}:  graphics.FormatR16G16B16A16SNorm,
}

// PixelFormatFor maps an accessor layout to an engine format.
// Layouts without an engine format (matrices, single normalized channels) yield FormatRaw.
func PixelFormatFor(acr *gltf.Accessor) graphics.PixelFormat {
	if f, ok := pixelFormats[formatKey{acr.ComponentType, acr.Normalized, componentCount(acr.Type)}]; ok {
		return f
	}
	return graphics.FormatRaw
}

// ConvertVertexElement builds the element for attribute name placed at offset.
// The second result is the element byte size.
func ConvertVertexElement(name string, acr *gltf.Accessor, offset int) (graphics.VertexElement, int) {
	semantic, index := splitAttributeName(name)
	size := elementSize(acr)
	return graphics.VertexElement{
		SemanticName:      semantic,
		SemanticIndex:     index,
		Format:            PixelFormatFor(acr),
		AlignedByteOffset: offset,
		Size:              size,
	}, size
}

func BuildVertexDeclaration(doc *gltf.Document, prim *gltf.Primitive) (*graphics.VertexDeclaration, error) {
	if len(prim.Attributes) == 0 {
		return nil, errors.Wrap(ErrStructuralMismatch, "primitive has no vertex attributes")
	}
	elements := make([]graphics.VertexElement, 0, len(prim.Attributes))
	offset := 0
	for _, name := range SortedAttributes(prim.Attributes) {
		acr, err := accessorAt(doc, prim.Attributes[name])
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %q", name)
		}
		element, size := ConvertVertexElement(name, acr, offset)
		if size == 0 {
			return nil, errors.Wrapf(ErrInvalidAccessor, "attribute %q has unknown layout", name)
		}
		elements = append(elements, element)
		offset += size
	}
	return graphics.NewVertexDeclaration(elements...), nil
}

// ConvertVertexBufferBinding interleaves every attribute of prim into one buffer.
// All attributes must hold the same number of elements.
func ConvertVertexBufferBinding(doc *gltf.Document, prim *gltf.Primitive) (*graphics.VertexBufferBinding, error) {
	decl, err := BuildVertexDeclaration(doc, prim)
	if err != nil {
		return nil, err
	}

	elements := decl.EnumerateWithOffsets()
	sources := make([][]byte, len(elements))
	vertexCount := -1
	for i, e := range elements {
		name := AccessorName(e.VertexElement)
		index, ok := prim.Attributes[name]
		if !ok {
			return nil, errors.Wrapf(ErrStructuralMismatch, "element %s has no attribute %q",
				e.VertexElement.SemanticAsText(), name)
		}
		acr, data, err := accessorBytes(doc, index)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %q", name)
		}
		if vertexCount == -1 {
			vertexCount = int(acr.Count)
		} else if int(acr.Count) != vertexCount {
			return nil, errors.Wrapf(ErrStructuralMismatch, "attribute %q has %d elements, expected %d",
				name, acr.Count, vertexCount)
		}
		sources[i] = data
	}

	stride := decl.VertexStride()
	content := make([]byte, stride*vertexCount)
	for v := 0; v < vertexCount; v++ {
		base := v * stride
		for i, e := range elements {
			copy(content[base+e.Offset:base+e.Offset+e.Size], sources[i][v*e.Size:(v+1)*e.Size])
		}
	}

	return &graphics.VertexBufferBinding{
		Buffer:      graphics.NewBufferData(graphics.BufferVertexBuffer, content),
		Declaration: decl,
		Count:       vertexCount,
	}, nil
}
