// Package materials holds the engine material feature graph produced by importers.
package materials

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/gltf_importer/engine/graphics"
)

type TextureCoordinate int

const (
	Texcoord0 TextureCoordinate = iota
	Texcoord1
	Texcoord2
	Texcoord3
)

// ComputeNode is either a constant or a texture sample.
type ComputeNode interface {
	computeNode()
}

type ComputeColor struct {
	Value mgl32.Vec4
}

type ComputeFloat struct {
	Value float32
}

type ComputeTextureColor struct {
	TexturePath string
	TexCoord    TextureCoordinate
	Scale       mgl32.Vec2
}

type ComputeTextureScalar struct {
	TexturePath string
	TexCoord    TextureCoordinate
	Scale       mgl32.Vec2
}

func (ComputeColor) computeNode()         {}
func (ComputeFloat) computeNode()         {}
func (ComputeTextureColor) computeNode()  {}
func (ComputeTextureScalar) computeNode() {}

// TexturePath returns the texture sampled by n, or "" for constants.
func TexturePath(n ComputeNode) string {
	switch v := n.(type) {
	case *ComputeTextureColor:
		return v.TexturePath
	case *ComputeTextureScalar:
		return v.TexturePath
	}
	return ""
}

type MaterialDiffuseMapFeature struct {
	DiffuseMap ComputeNode
}

type MaterialDiffuseLambertModelFeature struct{}

type MaterialGlossinessMapFeature struct {
	GlossinessMap ComputeNode
}

type MaterialNormalMapFeature struct {
	NormalMap ComputeNode
}

// MaterialOcclusionMapFeature marks that occlusion is enabled. OcclusionMap keeps the
// source texture so it is tracked as a dependency.
type MaterialOcclusionMapFeature struct {
	OcclusionMap ComputeNode
}

type MaterialEmissiveMapFeature struct {
	EmissiveMap ComputeNode
}

type MaterialAttributes struct {
	Diffuse      *MaterialDiffuseMapFeature
	DiffuseModel *MaterialDiffuseLambertModelFeature
	MicroSurface *MaterialGlossinessMapFeature
	Surface      *MaterialNormalMapFeature
	Occlusion    *MaterialOcclusionMapFeature
	Emissive     *MaterialEmissiveMapFeature
	CullMode     graphics.CullMode
}

type MaterialAsset struct {
	Attributes MaterialAttributes
}

func NewMaterialAsset() *MaterialAsset {
	return &MaterialAsset{}
}

// Textures lists texture paths referenced by the material in role order.
func (m *MaterialAsset) Textures() []string {
	var nodes []ComputeNode
	a := &m.Attributes
	if a.Diffuse != nil {
		nodes = append(nodes, a.Diffuse.DiffuseMap)
	}
	if a.MicroSurface != nil {
		nodes = append(nodes, a.MicroSurface.GlossinessMap)
	}
	if a.Surface != nil {
		nodes = append(nodes, a.Surface.NormalMap)
	}
	if a.Occlusion != nil && a.Occlusion.OcclusionMap != nil {
		nodes = append(nodes, a.Occlusion.OcclusionMap)
	}
	if a.Emissive != nil {
		nodes = append(nodes, a.Emissive.EmissiveMap)
	}

	result := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if p := TexturePath(n); p != "" {
			result = append(result, p)
		}
	}
	return result
}
