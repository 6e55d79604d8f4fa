package graphics

import "encoding/binary"

type BufferFlags uint32

const (
	BufferNone         BufferFlags = 0
	BufferVertexBuffer BufferFlags = 1 << iota
	BufferIndexBuffer
)

func (f BufferFlags) String() string {
	switch f {
	case BufferVertexBuffer:
		return "VertexBuffer"
	case BufferIndexBuffer:
		return "IndexBuffer"
	default:
		return "None"
	}
}

// BufferData is the serializable content of a gpu buffer.
type BufferData struct {
	Flags   BufferFlags
	Content []byte
}

func NewBufferData(flags BufferFlags, content []byte) *BufferData {
	return &BufferData{Flags: flags, Content: content}
}

type IndexBufferBinding struct {
	Buffer  *BufferData
	Is32Bit bool
	// Count is the number of indices, not bytes
	Count int
}

// Indices decodes the buffer content back into index values.
func (b *IndexBufferBinding) Indices() []uint32 {
	if b == nil || b.Buffer == nil {
		return nil
	}
	if b.Is32Bit {
		result := make([]uint32, len(b.Buffer.Content)/4)
		for i := range result {
			result[i] = binary.LittleEndian.Uint32(b.Buffer.Content[i*4:])
		}
		return result
	}
	result := make([]uint32, len(b.Buffer.Content)/2)
	for i := range result {
		result[i] = uint32(binary.LittleEndian.Uint16(b.Buffer.Content[i*2:]))
	}
	return result
}

type PrimitiveType int

const (
	PrimitiveUndefined PrimitiveType = iota
	PrimitivePointList
	PrimitiveLineList
	PrimitiveLineStrip
	PrimitiveTriangleList
	PrimitiveTriangleStrip
)

type CullMode int

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// MeshDraw is everything the renderer needs to issue one draw call.
type MeshDraw struct {
	PrimitiveType PrimitiveType
	DrawCount     int
	IndexBuffer   *IndexBufferBinding
	VertexBuffers []VertexBufferBinding
}
