package gltfimport

import (
	"bytes"
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func componentSize(ct gltf.ComponentType) int {
	switch ct {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4
	}
	return 0
}

func componentCount(at gltf.AccessorType) int {
	switch at {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4, gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	case gltf.AccessorMat4:
		return 16
	}
	return 0
}

// elementSize is the tightly packed byte size of one accessor element.
func elementSize(acr *gltf.Accessor) int {
	return componentSize(acr.ComponentType) * componentCount(acr.Type)
}

func accessorAt(doc *gltf.Document, index uint32) (*gltf.Accessor, error) {
	if int(index) >= len(doc.Accessors) || doc.Accessors[index] == nil {
		return nil, errors.Wrapf(ErrInvalidAccessor, "accessor %d out of range", index)
	}
	return doc.Accessors[index], nil
}

func readAccessor(doc *gltf.Document, index uint32) (*gltf.Accessor, interface{}, error) {
	acr, err := accessorAt(doc, index)
	if err != nil {
		return nil, nil, err
	}
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, nil, errors.Wrapf(ErrInvalidAccessor, "accessor %d: %v", index, err)
	}
	return acr, data, nil
}

// accessorBytes returns the accessor content without any view stride,
// little endian, elementSize bytes per element.
func accessorBytes(doc *gltf.Document, index uint32) (*gltf.Accessor, []byte, error) {
	acr, data, err := readAccessor(doc, index)
	if err != nil {
		return nil, nil, err
	}
	size := elementSize(acr)
	if size == 0 {
		return nil, nil, errors.Wrapf(ErrInvalidAccessor, "accessor %d has unknown layout", index)
	}

	var buf bytes.Buffer
	buf.Grow(size * int(acr.Count))
	if err := binary.Write(&buf, binary.LittleEndian, data); err != nil {
		return nil, nil, errors.Wrapf(ErrInvalidAccessor, "accessor %d: %v", index, err)
	}
	if buf.Len() != size*int(acr.Count) {
		return nil, nil, errors.Wrapf(ErrInvalidAccessor, "accessor %d: got %d bytes, expected %d",
			index, buf.Len(), size*int(acr.Count))
	}
	return acr, buf.Bytes(), nil
}

func readFloats(doc *gltf.Document, index uint32) ([]float32, error) {
	_, data, err := readAccessor(doc, index)
	if err != nil {
		return nil, err
	}
	values, ok := data.([]float32)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidAccessor, "accessor %d is %T, expected float scalars", index, data)
	}
	return values, nil
}

func readVec3s(doc *gltf.Document, index uint32) ([]mgl32.Vec3, error) {
	_, data, err := readAccessor(doc, index)
	if err != nil {
		return nil, err
	}
	values, ok := data.([][3]float32)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidAccessor, "accessor %d is %T, expected float vec3", index, data)
	}
	result := make([]mgl32.Vec3, len(values))
	for i, v := range values {
		result[i] = mgl32.Vec3(v)
	}
	return result, nil
}

func quatFromXYZW(x, y, z, w float32) mgl32.Quat {
	return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}

func snorm(v, max float32) float32 {
	if f := v / max; f > -1 {
		return f
	}
	return -1
}

// readQuats accepts float and normalized integer rotations.
func readQuats(doc *gltf.Document, index uint32) ([]mgl32.Quat, error) {
	_, data, err := readAccessor(doc, index)
	if err != nil {
		return nil, err
	}
	var result []mgl32.Quat
	switch values := data.(type) {
	case [][4]float32:
		result = make([]mgl32.Quat, len(values))
		for i, v := range values {
			result[i] = quatFromXYZW(v[0], v[1], v[2], v[3])
		}
	case [][4]int8:
		result = make([]mgl32.Quat, len(values))
		for i, v := range values {
			result[i] = quatFromXYZW(snorm(float32(v[0]), 127), snorm(float32(v[1]), 127),
				snorm(float32(v[2]), 127), snorm(float32(v[3]), 127))
		}
	case [][4]uint8:
		result = make([]mgl32.Quat, len(values))
		for i, v := range values {
			result[i] = quatFromXYZW(float32(v[0])/255, float32(v[1])/255, float32(v[2])/255, float32(v[3])/255)
		}
	case [][4]int16:
		result = make([]mgl32.Quat, len(values))
		for i, v := range values {
			result[i] = quatFromXYZW(snorm(float32(v[0]), 32767), snorm(float32(v[1]), 32767),
				snorm(float32(v[2]), 32767), snorm(float32(v[3]), 32767))
		}
	case [][4]uint16:
		result = make([]mgl32.Quat, len(values))
		for i, v := range values {
			result[i] = quatFromXYZW(float32(v[0])/65535, float32(v[1])/65535, float32(v[2])/65535, float32(v[3])/65535)
		}
	default:
		return nil, errors.Wrapf(ErrInvalidAccessor, "accessor %d is %T, expected vec4 rotations", index, data)
	}
	return result, nil
}

// readMat4s returns column-major matrices. Stored order matches mgl32 so no transpose is needed.
func readMat4s(doc *gltf.Document, index uint32) ([]mgl32.Mat4, error) {
	_, data, err := readAccessor(doc, index)
	if err != nil {
		return nil, err
	}
	values, ok := data.([][4][4]float32)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidAccessor, "accessor %d is %T, expected float mat4", index, data)
	}
	result := make([]mgl32.Mat4, len(values))
	for i, m := range values {
		for col := 0; col < 4; col++ {
			for row := 0; row < 4; row++ {
				result[i][col*4+row] = m[col][row]
			}
		}
	}
	return result, nil
}
