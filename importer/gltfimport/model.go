package gltfimport

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/mogaika/gltf_importer/engine/graphics"
	"github.com/mogaika/gltf_importer/engine/rendering"
	"github.com/mogaika/gltf_importer/logger"
)

// DrawCount is the number of indices submitted for a draw.
func DrawCount(ib *graphics.IndexBufferBinding) int {
	if ib == nil {
		return 0
	}
	return ib.Count
}

func meshAt(doc *gltf.Document, meshIndex int) (*gltf.Mesh, error) {
	if len(doc.Meshes) == 0 {
		return nil, ErrNoMeshes
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, errors.Wrapf(ErrNoMeshes, "mesh %d out of range [0, %d)", meshIndex, len(doc.Meshes))
	}
	return doc.Meshes[meshIndex], nil
}

// LoadMesh converts one primitive of the mesh at meshIndex. skinning may be nil.
func LoadMesh(doc *gltf.Document, meshIndex, primIndex int, skinning *rendering.MeshSkinningDefinition) (*rendering.Mesh, error) {
	mesh, err := meshAt(doc, meshIndex)
	if err != nil {
		return nil, err
	}
	if primIndex < 0 || primIndex >= len(mesh.Primitives) {
		return nil, errors.Wrapf(ErrStructuralMismatch, "primitive %d out of range", primIndex)
	}
	prim := mesh.Primitives[primIndex]

	vb, err := ConvertVertexBufferBinding(doc, prim)
	if err != nil {
		return nil, errors.Wrap(err, "vertex buffer")
	}
	ib, err := ConvertIndexBufferBinding(doc, prim)
	if err != nil {
		return nil, errors.Wrap(err, "index buffer")
	}
	if err := ValidateIndices(ib.Indices(), vb.Count); err != nil {
		return nil, errors.Wrap(err, "index buffer")
	}

	result := &rendering.Mesh{
		Name: MeshRootName(doc, meshIndex),
		Draw: &graphics.MeshDraw{
			PrimitiveType: ConvertPrimitiveType(prim.Mode),
			DrawCount:     DrawCount(ib),
			IndexBuffer:   ib,
			VertexBuffers: []graphics.VertexBufferBinding{*vb},
		},
		MaterialIndex: -1,
		Skinning:      skinning,
	}
	if prim.Material != nil {
		result.MaterialIndex = int(*prim.Material)
	}
	if skinning != nil {
		result.Parameters.HasSkinningPosition = true
		result.Parameters.HasSkinningNormal = true
	}
	return result, nil
}

// convertSkin returns the skinning definition, the skeleton and its node mapping.
// A broken skin is reported and the mesh falls back to an unskinned root-only skeleton.
func convertSkin(doc *gltf.Document, meshIndex int, report *Report) (*rendering.MeshSkinningDefinition, *rendering.Skeleton, map[uint32]int) {
	skinning, err := ConvertInverseBindMatrices(doc, meshIndex)
	if err == nil {
		var skeleton *rendering.Skeleton
		var mapping map[uint32]int
		if skeleton, mapping, err = ConvertSkeleton(doc, meshIndex); err == nil {
			return skinning, skeleton, mapping
		}
	}
	name := MeshRootName(doc, meshIndex)
	logger.Warn("Skin conversion failed", zap.String("mesh", name), zap.Error(err))
	report.Add(KindSkin, name, err)
	skeleton, mapping := rootSkeleton(doc, meshIndex)
	return nil, skeleton, mapping
}

// LoadModel converts every primitive of the mesh at meshIndex. Failing primitives and
// a broken skin are reported; the rest of the model is still built.
func LoadModel(doc *gltf.Document, meshIndex int) (*rendering.Model, *Report, error) {
	model, _, report, err := loadModel(doc, meshIndex)
	return model, report, err
}

func loadModel(doc *gltf.Document, meshIndex int) (*rendering.Model, map[uint32]int, *Report, error) {
	mesh, err := meshAt(doc, meshIndex)
	if err != nil {
		return nil, nil, nil, err
	}

	report := &Report{}
	skinning, skeleton, mapping := convertSkin(doc, meshIndex, report)
	model := &rendering.Model{Skeleton: skeleton}
	meshRoot := MeshRootName(doc, meshIndex)
	for i := range mesh.Primitives {
		m, err := LoadMesh(doc, meshIndex, i, skinning)
		if err != nil {
			name := fmt.Sprintf("%s_%d", meshRoot, i)
			logger.Warn("Primitive conversion failed", zap.String("mesh", name), zap.Error(err))
			report.Add(KindMesh, name, err)
			continue
		}
		model.Meshes = append(model.Meshes, m)
	}
	return model, mapping, report, nil
}

func LoadFirstModel(doc *gltf.Document) (*rendering.Model, *Report, error) {
	return LoadModel(doc, 0)
}
