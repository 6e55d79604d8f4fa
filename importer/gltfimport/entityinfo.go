package gltfimport

import (
	"fmt"
	"sort"

	"github.com/qmuntal/gltf"

	"github.com/mogaika/gltf_importer/engine/materials"
)

type MeshParameters struct {
	MeshName     string   `json:"mesh_name" yaml:"mesh_name" toml:"mesh_name"`
	MaterialName string   `json:"material_name,omitempty" yaml:"material_name,omitempty" toml:"material_name,omitempty"`
	NodeName     string   `json:"node_name" yaml:"node_name" toml:"node_name"`
	BoneNodes    []string `json:"bone_nodes,omitempty" yaml:"bone_nodes,omitempty" toml:"bone_nodes,omitempty"`
}

type NodeInfo struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	Depth    int    `json:"depth" yaml:"depth" toml:"depth"`
	Preserve bool   `json:"preserve" yaml:"preserve" toml:"preserve"`
}

// EntityInfo is the scene summary shown to the user before the import is committed.
type EntityInfo struct {
	Models              []MeshParameters                   `json:"models" yaml:"models" toml:"models"`
	Materials           map[string]*materials.MaterialAsset `json:"-" yaml:"-" toml:"-"`
	MaterialNames       []string                           `json:"materials" yaml:"materials" toml:"materials"`
	TextureDependencies []string                           `json:"textures" yaml:"textures" toml:"textures"`
	AnimationNodes      []string                           `json:"animations" yaml:"animations" toml:"animations"`
	Nodes               []NodeInfo                         `json:"nodes" yaml:"nodes" toml:"nodes"`
}

func skinBoneNames(doc *gltf.Document, meshIndex int) []string {
	skin, err := FindSkin(doc, meshIndex)
	if err != nil || skin == nil {
		return nil
	}
	seen := make(map[string]bool, len(skin.Joints))
	names := make([]string, 0, len(skin.Joints))
	for _, joint := range skin.Joints {
		name := JointName(doc, joint)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ExtractEntityInfo summarizes the mesh at meshIndex using already converted materials.
func ExtractEntityInfo(doc *gltf.Document, meshIndex int, mats map[string]*materials.MaterialAsset) *EntityInfo {
	meshRoot := MeshRootName(doc, meshIndex)
	info := &EntityInfo{
		Materials:      mats,
		AnimationNodes: AnimationClipNames(doc, meshRoot),
	}

	materialNames := MaterialNames(doc, meshRoot)
	bones := skinBoneNames(doc, meshIndex)
	if meshIndex >= 0 && meshIndex < len(doc.Meshes) {
		for i, prim := range doc.Meshes[meshIndex].Primitives {
			params := MeshParameters{
				MeshName:  fmt.Sprintf("%s_%d", meshRoot, i),
				BoneNodes: bones,
			}
			if prim.Material != nil && int(*prim.Material) < len(doc.Materials) {
				params.MaterialName = materialNames[*prim.Material]
			}
			info.Models = append(info.Models, params)
		}
	}

	seenTextures := make(map[string]bool)
	for _, name := range materialNames {
		asset, ok := mats[name]
		if !ok {
			continue
		}
		info.MaterialNames = append(info.MaterialNames, name)
		for _, texture := range asset.Textures() {
			if !seenTextures[texture] {
				seenTextures[texture] = true
				info.TextureDependencies = append(info.TextureDependencies, texture)
			}
		}
	}

	if skin, err := FindSkin(doc, meshIndex); err == nil && skin != nil {
		for i, joint := range skin.Joints {
			info.Nodes = append(info.Nodes, NodeInfo{Name: JointName(doc, joint), Depth: i, Preserve: true})
		}
	}
	return info
}
