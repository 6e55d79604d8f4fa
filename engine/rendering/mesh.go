package rendering

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/gltf_importer/engine/graphics"
)

type MeshBoneDefinition struct {
	// NodeIndex points into Skeleton.Nodes; 0 is the mesh frame itself
	NodeIndex        int
	LinkToMeshMatrix mgl32.Mat4
}

type MeshSkinningDefinition struct {
	Bones []MeshBoneDefinition
}

// ParameterCollection carries the shader permutation keys a mesh needs.
type ParameterCollection struct {
	HasSkinningPosition bool
	HasSkinningNormal   bool
}

type Mesh struct {
	Name          string
	Draw          *graphics.MeshDraw
	Skinning      *MeshSkinningDefinition
	MaterialIndex int
	Parameters    ParameterCollection
}

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

type ModelNodeDefinition struct {
	Name        string
	ParentIndex int
	Transform   Transform
}

type Skeleton struct {
	Nodes []ModelNodeDefinition
}

type Model struct {
	Meshes   []*Mesh
	Skeleton *Skeleton
}
