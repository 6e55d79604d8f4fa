package gltfimport

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/gltf_importer/engine/graphics"
)

// ConvertPrimitiveType maps a glTF mode to the engine topology.
// Strips and fans are expanded to lists by TriangleIndices.
func ConvertPrimitiveType(mode gltf.PrimitiveMode) graphics.PrimitiveType {
	switch mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
		return graphics.PrimitiveTriangleList
	case gltf.PrimitivePoints:
		return graphics.PrimitivePointList
	case gltf.PrimitiveLines:
		return graphics.PrimitiveLineList
	case gltf.PrimitiveLineLoop, gltf.PrimitiveLineStrip:
		return graphics.PrimitiveLineStrip
	}
	return graphics.PrimitiveUndefined
}

func primitiveVertexCount(doc *gltf.Document, prim *gltf.Primitive) (int, error) {
	index, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		names := SortedAttributes(prim.Attributes)
		if len(names) == 0 {
			return 0, errors.Wrap(ErrStructuralMismatch, "primitive has no vertex attributes")
		}
		index = prim.Attributes[names[0]]
	}
	acr, err := accessorAt(doc, index)
	if err != nil {
		return 0, err
	}
	return int(acr.Count), nil
}

func primitiveIndices(doc *gltf.Document, prim *gltf.Primitive) ([]uint32, error) {
	if prim.Indices == nil {
		count, err := primitiveVertexCount(doc, prim)
		if err != nil {
			return nil, err
		}
		indices := make([]uint32, count)
		for i := range indices {
			indices[i] = uint32(i)
		}
		return indices, nil
	}
	acr, err := accessorAt(doc, *prim.Indices)
	if err != nil {
		return nil, errors.Wrap(err, "indices")
	}
	indices, err := modeler.ReadIndices(doc, acr, nil)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAccessor, "indices accessor %d: %v", *prim.Indices, err)
	}
	return indices, nil
}

// TriangleIndices returns the primitive triangles in source winding.
// Non-indexed primitives use sequential vertex indices.
func TriangleIndices(doc *gltf.Document, prim *gltf.Primitive) ([][3]uint32, error) {
	switch prim.Mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
	default:
		return nil, errors.Wrapf(ErrUnsupportedTopology, "mode %d", prim.Mode)
	}

	indices, err := primitiveIndices(doc, prim)
	if err != nil {
		return nil, err
	}

	var triangles [][3]uint32
	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		triangles = make([][3]uint32, 0, len(indices)/3)
		for i := 0; i+2 < len(indices); i += 3 {
			triangles = append(triangles, [3]uint32{indices[i], indices[i+1], indices[i+2]})
		}
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(indices); i++ {
			if i%2 == 0 {
				triangles = append(triangles, [3]uint32{indices[i], indices[i+1], indices[i+2]})
			} else {
				triangles = append(triangles, [3]uint32{indices[i], indices[i+2], indices[i+1]})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(indices); i++ {
			triangles = append(triangles, [3]uint32{indices[i], indices[i+1], indices[0]})
		}
	}
	return triangles, nil
}

// FlipWinding emits every triangle (a, b, c) as (a, c, b).
func FlipWinding(triangles [][3]uint32) []uint32 {
	result := make([]uint32, 0, len(triangles)*3)
	for _, t := range triangles {
		result = append(result, t[0], t[2], t[1])
	}
	return result
}

// ConvertIndexBufferBinding produces the 32-bit index buffer with flipped winding.
func ConvertIndexBufferBinding(doc *gltf.Document, prim *gltf.Primitive) (*graphics.IndexBufferBinding, error) {
	triangles, err := TriangleIndices(doc, prim)
	if err != nil {
		return nil, err
	}
	indices := FlipWinding(triangles)

	content := make([]byte, len(indices)*4)
	for i, index := range indices {
		binary.LittleEndian.PutUint32(content[i*4:], index)
	}
	return &graphics.IndexBufferBinding{
		Buffer:  graphics.NewBufferData(graphics.BufferIndexBuffer, content),
		Is32Bit: true,
		Count:   len(indices),
	}, nil
}

// ValidateIndices checks every index addresses an existing vertex.
func ValidateIndices(indices []uint32, vertexCount int) error {
	for i, index := range indices {
		if uint64(index) >= uint64(vertexCount) {
			return errors.Wrapf(ErrStructuralMismatch, "index %d at %d addresses vertex outside %d",
				index, i, vertexCount)
		}
	}
	return nil
}
