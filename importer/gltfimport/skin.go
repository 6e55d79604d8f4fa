package gltfimport

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/gltf_importer/engine/rendering"
)

// FindMeshNode returns the first node instancing meshIndex.
func FindMeshNode(doc *gltf.Document, meshIndex int) (uint32, bool) {
	for i, node := range doc.Nodes {
		if node.Mesh != nil && int(*node.Mesh) == meshIndex {
			return uint32(i), true
		}
	}
	return 0, false
}

// FindSkin returns the skin bound to the first node that instances meshIndex.
func FindSkin(doc *gltf.Document, meshIndex int) (*gltf.Skin, error) {
	nodeIndex, ok := FindMeshNode(doc, meshIndex)
	if !ok {
		return nil, nil
	}
	node := doc.Nodes[nodeIndex]
	if node.Skin == nil {
		return nil, nil
	}
	if int(*node.Skin) >= len(doc.Skins) {
		return nil, errors.Wrapf(ErrStructuralMismatch, "node %d references skin %d out of range", nodeIndex, *node.Skin)
	}
	return doc.Skins[*node.Skin], nil
}

// ConvertInverseBindMatrices builds one bone per joint. Joint i is skeleton node i+1
// since node 0 is the mesh frame. Returns nil when the mesh is not skinned.
func ConvertInverseBindMatrices(doc *gltf.Document, meshIndex int) (*rendering.MeshSkinningDefinition, error) {
	skin, err := FindSkin(doc, meshIndex)
	if err != nil || skin == nil {
		return nil, err
	}

	var matrices []mgl32.Mat4
	if skin.InverseBindMatrices != nil {
		matrices, err = readMat4s(doc, *skin.InverseBindMatrices)
		if err != nil {
			return nil, errors.Wrap(err, "inverse bind matrices")
		}
		if len(matrices) < len(skin.Joints) {
			return nil, errors.Wrapf(ErrStructuralMismatch, "%d inverse bind matrices for %d joints",
				len(matrices), len(skin.Joints))
		}
	}

	bones := make([]rendering.MeshBoneDefinition, len(skin.Joints))
	for i := range skin.Joints {
		matrix := mgl32.Ident4()
		if matrices != nil {
			matrix = matrices[i]
		}
		bones[i] = rendering.MeshBoneDefinition{NodeIndex: i + 1, LinkToMeshMatrix: matrix}
	}
	return &rendering.MeshSkinningDefinition{Bones: bones}, nil
}

// NodeTransform decomposes a node local transform. An explicit matrix wins over TRS.
func NodeTransform(node *gltf.Node) rendering.Transform {
	if node.Matrix != gltf.DefaultMatrix && node.Matrix != [16]float32{} {
		m := mgl32.Mat4(node.Matrix)
		scale := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
		rotation := mgl32.Ident4()
		for col := 0; col < 3; col++ {
			if scale[col] == 0 {
				continue
			}
			rotation.SetCol(col, m.Col(col).Mul(1/scale[col]))
		}
		return rendering.Transform{
			Position: m.Col(3).Vec3(),
			Rotation: mgl32.Mat4ToQuat(rotation).Normalize(),
			Scale:    scale,
		}
	}

	t := rendering.IdentityTransform()
	t.Position = mgl32.Vec3(node.Translation)
	if node.Rotation != [4]float32{} {
		t.Rotation = quatFromXYZW(node.Rotation[0], node.Rotation[1], node.Rotation[2], node.Rotation[3])
	}
	if node.Scale != [3]float32{} {
		t.Scale = mgl32.Vec3(node.Scale)
	}
	return t
}

func parentNodes(doc *gltf.Document) map[uint32]uint32 {
	parents := make(map[uint32]uint32)
	for i, node := range doc.Nodes {
		for _, child := range node.Children {
			parents[child] = uint32(i)
		}
	}
	return parents
}

// rootSkeleton holds only the mesh frame node.
func rootSkeleton(doc *gltf.Document, meshIndex int) (*rendering.Skeleton, map[uint32]int) {
	mapping := make(map[uint32]int)
	root := rendering.ModelNodeDefinition{
		Name:        MeshRootName(doc, meshIndex),
		ParentIndex: -1,
		Transform:   rendering.IdentityTransform(),
	}
	if nodeIndex, ok := FindMeshNode(doc, meshIndex); ok {
		if name := doc.Nodes[nodeIndex].Name; name != "" {
			root.Name = name
		}
		mapping[nodeIndex] = 0
	}
	return &rendering.Skeleton{Nodes: []rendering.ModelNodeDefinition{root}}, mapping
}

// ConvertSkeleton builds the engine skeleton and a mapping from document node to skeleton node.
// Node 0 is the mesh frame, joint i becomes node i+1 parented to its nearest joint ancestor.
func ConvertSkeleton(doc *gltf.Document, meshIndex int) (*rendering.Skeleton, map[uint32]int, error) {
	skeleton, mapping := rootSkeleton(doc, meshIndex)

	skin, err := FindSkin(doc, meshIndex)
	if err != nil {
		return nil, nil, err
	}
	if skin == nil {
		return skeleton, mapping, nil
	}

	jointOrdinal := make(map[uint32]int, len(skin.Joints))
	for i, joint := range skin.Joints {
		if int(joint) >= len(doc.Nodes) {
			return nil, nil, errors.Wrapf(ErrStructuralMismatch, "joint %d references node %d out of range", i, joint)
		}
		jointOrdinal[joint] = i
	}

	parents := parentNodes(doc)
	for i, joint := range skin.Joints {
		parentIndex := 0
		hops := 0
		for p, ok := parents[joint]; ok && hops < len(doc.Nodes); p, ok = parents[p] {
			hops++
			if ordinal, isJoint := jointOrdinal[p]; isJoint {
				parentIndex = ordinal + 1
				break
			}
		}
		skeleton.Nodes = append(skeleton.Nodes, rendering.ModelNodeDefinition{
			Name:        JointName(doc, joint),
			ParentIndex: parentIndex,
			Transform:   NodeTransform(doc.Nodes[joint]),
		})
		mapping[joint] = i + 1
	}
	return skeleton, mapping, nil
}
