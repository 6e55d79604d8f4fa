package gltfimport

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertInverseBindMatrices(t *testing.T) {
	doc := quadDocument(t)
	addSkin(t, doc, true)

	skinning, err := ConvertInverseBindMatrices(doc, 0)
	require.NoError(t, err)
	require.NotNil(t, skinning)
	require.Len(t, skinning.Bones, 2)

	assert.Equal(t, 1, skinning.Bones[0].NodeIndex)
	assert.Equal(t, 2, skinning.Bones[1].NodeIndex)
	assert.Equal(t, mgl32.Ident4(), skinning.Bones[0].LinkToMeshMatrix)
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), skinning.Bones[1].LinkToMeshMatrix)
	assert.Equal(t, float32(3), skinning.Bones[1].LinkToMeshMatrix[14], "translation stays in the last column")
}

func TestConvertInverseBindMatricesWithoutMatrices(t *testing.T) {
	doc := quadDocument(t)
	addSkin(t, doc, false)

	skinning, err := ConvertInverseBindMatrices(doc, 0)
	require.NoError(t, err)
	require.Len(t, skinning.Bones, 2)
	for _, bone := range skinning.Bones {
		assert.Equal(t, mgl32.Ident4(), bone.LinkToMeshMatrix)
	}
}

func TestConvertInverseBindMatricesUnskinned(t *testing.T) {
	doc := quadDocument(t)

	skinning, err := ConvertInverseBindMatrices(doc, 0)
	assert.NoError(t, err)
	assert.Nil(t, skinning)

	doc.Nodes = nil
	skinning, err = ConvertInverseBindMatrices(doc, 0)
	assert.NoError(t, err)
	assert.Nil(t, skinning)
}

func TestFindSkinOutOfRange(t *testing.T) {
	doc := quadDocument(t)
	doc.Nodes[0].Skin = gltf.Index(3)

	_, err := FindSkin(doc, 0)
	assert.ErrorIs(t, err, ErrStructuralMismatch)
}

func TestConvertSkeleton(t *testing.T) {
	doc := quadDocument(t)
	addSkin(t, doc, true)

	skeleton, mapping, err := ConvertSkeleton(doc, 0)
	require.NoError(t, err)
	require.Len(t, skeleton.Nodes, 3)

	assert.Equal(t, "QuadNode", skeleton.Nodes[0].Name)
	assert.Equal(t, -1, skeleton.Nodes[0].ParentIndex)
	assert.Equal(t, "Root", skeleton.Nodes[1].Name)
	assert.Equal(t, 0, skeleton.Nodes[1].ParentIndex)
	assert.Equal(t, "Hand", skeleton.Nodes[2].Name)
	assert.Equal(t, 1, skeleton.Nodes[2].ParentIndex)
	assert.Equal(t, mgl32.Vec3{0, 0.5, 0}, skeleton.Nodes[2].Transform.Position)
	assert.Equal(t, mgl32.QuatIdent(), skeleton.Nodes[2].Transform.Rotation)

	assert.Equal(t, map[uint32]int{0: 0, 1: 1, 2: 2}, mapping)
}

func TestConvertSkeletonUnskinned(t *testing.T) {
	doc := quadDocument(t)
	doc.Nodes[0].Name = ""

	skeleton, mapping, err := ConvertSkeleton(doc, 0)
	require.NoError(t, err)
	require.Len(t, skeleton.Nodes, 1)
	assert.Equal(t, "Quad", skeleton.Nodes[0].Name)
	assert.Equal(t, map[uint32]int{0: 0}, mapping)
}

func TestNodeTransformFromMatrix(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 2, 2))
	node := &gltf.Node{Matrix: [16]float32(m)}

	transform := NodeTransform(node)
	assert.True(t, transform.Position.ApproxEqual(mgl32.Vec3{1, 2, 3}))
	assert.True(t, transform.Scale.ApproxEqual(mgl32.Vec3{2, 2, 2}))
	assert.True(t, transform.Rotation.ApproxEqual(mgl32.QuatIdent()))
}

func TestNodeTransformFromTRS(t *testing.T) {
	node := &gltf.Node{
		Matrix:      gltf.DefaultMatrix,
		Translation: [3]float32{1, 0, 0},
		Rotation:    [4]float32{0, 0, 0.7071068, 0.7071068},
		Scale:       [3]float32{1, 3, 1},
	}

	transform := NodeTransform(node)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, transform.Position)
	assert.Equal(t, mgl32.Vec3{1, 3, 1}, transform.Scale)
	assert.Equal(t, float32(0.7071068), transform.Rotation.W)
	assert.Equal(t, float32(0.7071068), transform.Rotation.V[2])
}
