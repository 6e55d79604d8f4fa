package graphics

import "fmt"

type PixelFormat int

const (
	FormatUnknown PixelFormat = iota
	FormatR32Float
	FormatR32G32Float
	FormatR32G32B32Float
	FormatR32G32B32A32Float
	FormatR8UInt
	FormatR8G8UInt
	FormatR8G8B8UInt
	FormatR8G8B8A8UInt
	FormatR8G8UNorm
	FormatR8G8B8UNorm
	FormatR8G8B8A8UNorm
	FormatR16UInt
	FormatR16G16UInt
	FormatR16G16B16UInt
	FormatR16G16B16A16UInt
	FormatR16G16UNorm
	FormatR16G16B16UNorm
	FormatR16G16B16A16UNorm
	FormatR32UInt
	FormatR32G32UInt
	FormatR32G32B32UInt
	FormatR32G32B32A32UInt
	FormatR8SInt
	FormatR8G8SInt
	FormatR8G8B8SInt
	FormatR8G8B8A8SInt
	FormatR8G8SNorm
	FormatR8G8B8SNorm
	FormatR8G8B8A8SNorm
	FormatR16SInt
	FormatR16G16SInt
	FormatR16G16B16SInt
	FormatR16G16B16A16SInt
	FormatR16G16SNorm
	FormatR16G16B16SNorm
	FormatR16G16B16A16SNorm
	FormatRaw
)

// Semantic names used by vertex declarations.
const (
	SemanticPosition     = "POSITION"
	SemanticNormal       = "NORMAL"
	SemanticTangent      = "TANGENT"
	SemanticColor        = "COLOR"
	SemanticTexCoord     = "TEXCOORD"
	SemanticBlendIndices = "BLENDINDICES"
	SemanticBlendWeight  = "BLENDWEIGHT"
)

// VertexElement describes one attribute inside an interleaved vertex.
// Size is the byte size of the element; for FormatRaw it is the only source of truth.
type VertexElement struct {
	SemanticName      string
	SemanticIndex     int
	Format            PixelFormat
	AlignedByteOffset int
	Size              int
}

func (e VertexElement) SemanticAsText() string {
	if e.SemanticIndex == 0 {
		return e.SemanticName
	}
	return fmt.Sprintf("%s%d", e.SemanticName, e.SemanticIndex)
}

type VertexElementWithOffset struct {
	VertexElement VertexElement
	Offset        int
	Size          int
}

// VertexDeclaration keeps elements in insertion order.
type VertexDeclaration struct {
	Elements []VertexElement
}

func NewVertexDeclaration(elements ...VertexElement) *VertexDeclaration {
	return &VertexDeclaration{Elements: elements}
}

func (d *VertexDeclaration) VertexStride() int {
	stride := 0
	for _, e := range d.Elements {
		stride += e.Size
	}
	return stride
}

func (d *VertexDeclaration) EnumerateWithOffsets() []VertexElementWithOffset {
	result := make([]VertexElementWithOffset, 0, len(d.Elements))
	offset := 0
	for _, e := range d.Elements {
		if e.AlignedByteOffset >= 0 {
			offset = e.AlignedByteOffset
		}
		result = append(result, VertexElementWithOffset{VertexElement: e, Offset: offset, Size: e.Size})
		offset += e.Size
	}
	return result
}

type VertexBufferBinding struct {
	Buffer      *BufferData
	Declaration *VertexDeclaration
	Count       int
}
