package gltfimport

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/qmuntal/gltf"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const defaultMeshName = "Mesh"

// MeshRootName is the prefix of every generated asset name.
func MeshRootName(doc *gltf.Document, meshIndex int) string {
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) || doc.Meshes[meshIndex].Name == "" {
		return defaultMeshName
	}
	return doc.Meshes[meshIndex].Name
}

func FirstModelName(doc *gltf.Document) string {
	return MeshRootName(doc, 0)
}

// uniqueName claims name in used. A taken name gets the entity index appended,
// then a counter until it is free.
func uniqueName(used map[string]bool, name string, index int) string {
	if used[name] {
		base := fmt.Sprintf("%s_%d", name, index)
		name = base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
	}
	used[name] = true
	return name
}

// MaterialNames returns unique material names in material order.
func MaterialNames(doc *gltf.Document, meshRoot string) []string {
	names := make([]string, len(doc.Materials))
	used := make(map[string]bool, len(doc.Materials))
	for i, mat := range doc.Materials {
		name := mat.Name
		if name == "" {
			name = fmt.Sprintf("Material%d", i)
		}
		names[i] = uniqueName(used, meshRoot+"_"+name, i)
	}
	return names
}

func MaterialName(doc *gltf.Document, meshRoot string, materialIndex int) string {
	return MaterialNames(doc, meshRoot)[materialIndex]
}

// AnimationClipNames returns unique clip names in animation order.
func AnimationClipNames(doc *gltf.Document, meshRoot string) []string {
	names := make([]string, len(doc.Animations))
	used := make(map[string]bool, len(doc.Animations))
	for i, anim := range doc.Animations {
		var name string
		if anim.Name == "" {
			name = fmt.Sprintf("%s_Animation_%d", meshRoot, i)
		} else {
			name = meshRoot + "_" + anim.Name
		}
		names[i] = uniqueName(used, name, i)
	}
	return names
}

func JointName(doc *gltf.Document, nodeIndex uint32) string {
	if int(nodeIndex) < len(doc.Nodes) && doc.Nodes[nodeIndex].Name != "" {
		return doc.Nodes[nodeIndex].Name
	}
	return fmt.Sprintf("Joint_%d", nodeIndex)
}

var fileNameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeFileName strips diacritics and characters not allowed in file names.
func SanitizeFileName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if result, _, err := transform.String(t, name); err == nil {
		name = result
	}
	name = fileNameReplacer.Replace(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "texture"
	}
	return name
}
