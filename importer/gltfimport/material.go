package gltfimport

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/mogaika/gltf_importer/engine/graphics"
	"github.com/mogaika/gltf_importer/engine/materials"
	"github.com/mogaika/gltf_importer/logger"
)

// Channel keys in the order they are reported by MaterialChannels.
const (
	ChannelBaseColor         = "BaseColor"
	ChannelMetallicRoughness = "MetallicRoughness"
	ChannelNormal            = "Normal"
	ChannelOcclusion         = "Occlusion"
	ChannelEmissive          = "Emissive"
)

type TextureSlot struct {
	TextureIndex uint32
	TexCoord     uint32
}

// MaterialChannel is one input of a glTF material. Default channels carry nothing
// beyond the glTF default value and are skipped during conversion.
type MaterialChannel struct {
	Key       string
	Texture   *TextureSlot
	Parameter mgl32.Vec4
	Default   bool
}

func textureSlot(info *gltf.TextureInfo) *TextureSlot {
	if info == nil {
		return nil
	}
	return &TextureSlot{TextureIndex: info.Index, TexCoord: info.TexCoord}
}

// MaterialChannels lists the five channels of mat.
func MaterialChannels(mat *gltf.Material) []MaterialChannel {
	baseColor := MaterialChannel{Key: ChannelBaseColor, Parameter: mgl32.Vec4{1, 1, 1, 1}}
	metalRough := MaterialChannel{Key: ChannelMetallicRoughness, Parameter: mgl32.Vec4{1, 1, 0, 0}}
	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			baseColor.Parameter = mgl32.Vec4(*pbr.BaseColorFactor)
		}
		baseColor.Texture = textureSlot(pbr.BaseColorTexture)
		if pbr.MetallicFactor != nil {
			metalRough.Parameter[0] = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			metalRough.Parameter[1] = *pbr.RoughnessFactor
		}
		metalRough.Texture = textureSlot(pbr.MetallicRoughnessTexture)
	}
	baseColor.Default = baseColor.Texture == nil && baseColor.Parameter == mgl32.Vec4{1, 1, 1, 1}
	metalRough.Default = metalRough.Texture == nil && metalRough.Parameter == mgl32.Vec4{1, 1, 0, 0}

	normal := MaterialChannel{Key: ChannelNormal, Parameter: mgl32.Vec4{1, 0, 0, 0}}
	if nt := mat.NormalTexture; nt != nil && nt.Index != nil {
		normal.Texture = &TextureSlot{TextureIndex: *nt.Index, TexCoord: nt.TexCoord}
		if nt.Scale != nil {
			normal.Parameter[0] = *nt.Scale
		}
	}
	normal.Default = normal.Texture == nil

	occlusion := MaterialChannel{Key: ChannelOcclusion, Parameter: mgl32.Vec4{1, 0, 0, 0}}
	if ot := mat.OcclusionTexture; ot != nil && ot.Index != nil {
		occlusion.Texture = &TextureSlot{TextureIndex: *ot.Index, TexCoord: ot.TexCoord}
		if ot.Strength != nil {
			occlusion.Parameter[0] = *ot.Strength
		}
	}
	occlusion.Default = occlusion.Texture == nil

	emissive := MaterialChannel{
		Key:       ChannelEmissive,
		Parameter: mgl32.Vec4{mat.EmissiveFactor[0], mat.EmissiveFactor[1], mat.EmissiveFactor[2], 1},
		Texture:   textureSlot(mat.EmissiveTexture),
	}
	emissive.Default = emissive.Texture == nil && mat.EmissiveFactor == [3]float32{}

	return []MaterialChannel{baseColor, metalRough, normal, occlusion, emissive}
}

// TextureResolver turns texture references into file paths next to the source document.
// Embedded images are written once; existing files are never overwritten.
type TextureResolver struct {
	doc      *gltf.Document
	dir      string
	meshRoot string
	extract  bool
}

func NewTextureResolver(doc *gltf.Document, sourcePath string, meshRoot string, extract bool) *TextureResolver {
	return &TextureResolver{doc: doc, dir: filepath.Dir(sourcePath), meshRoot: meshRoot, extract: extract}
}

// Resolve returns the texture path for slot. fallbackName names embedded images without a name.
func (r *TextureResolver) Resolve(slot *TextureSlot, fallbackName string) (string, error) {
	if int(slot.TextureIndex) >= len(r.doc.Textures) {
		return "", errors.Wrapf(ErrStructuralMismatch, "texture %d out of range", slot.TextureIndex)
	}
	texture := r.doc.Textures[slot.TextureIndex]
	if texture.Source == nil || int(*texture.Source) >= len(r.doc.Images) {
		return "", errors.Wrapf(ErrStructuralMismatch, "texture %d has no image", slot.TextureIndex)
	}
	img := r.doc.Images[*texture.Source]

	if img.URI != "" && !strings.HasPrefix(img.URI, "data:") {
		uri, err := url.PathUnescape(img.URI)
		if err != nil {
			uri = img.URI
		}
		return filepath.Join(r.dir, filepath.FromSlash(uri)), nil
	}

	data, err := r.imageData(img)
	if err != nil {
		return "", errors.Wrapf(err, "image %d", *texture.Source)
	}
	name := img.Name
	if name == "" {
		name = fallbackName
	}
	path := filepath.Join(r.dir, SanitizeFileName(name)+"."+ImageExtension(img.MimeType, data))
	if r.extract {
		if err := writeIfMissing(path, data); err != nil {
			return "", errors.Wrapf(err, "Unable to extract image to %q", path)
		}
	}
	return path, nil
}

func (r *TextureResolver) imageData(img *gltf.Image) ([]byte, error) {
	if img.BufferView != nil {
		if int(*img.BufferView) >= len(r.doc.BufferViews) {
			return nil, errors.Wrapf(ErrStructuralMismatch, "buffer view %d out of range", *img.BufferView)
		}
		return modeler.ReadBufferView(r.doc, r.doc.BufferViews[*img.BufferView])
	}
	return img.MarshalData()
}

// ImageExtension picks the file extension for embedded image data.
// The declared mime type wins, then content sniffing.
func ImageExtension(mimeType string, data []byte) string {
	switch mimeType {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	}
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.Extension
	}
	return "bin"
}

func writeIfMissing(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			logger.Debug("Texture already present", zap.String("path", path))
			return nil
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	logger.Debug("Extracted texture", zap.String("path", path), zap.Int("size", len(data)))
	return f.Close()
}

func textureColor(path string, slot *TextureSlot) *materials.ComputeTextureColor {
	return &materials.ComputeTextureColor{
		TexturePath: path,
		TexCoord:    materials.TextureCoordinate(slot.TexCoord),
		Scale:       mgl32.Vec2{1, 1},
	}
}

func textureScalar(path string, slot *TextureSlot) *materials.ComputeTextureScalar {
	return &materials.ComputeTextureScalar{
		TexturePath: path,
		TexCoord:    materials.TextureCoordinate(slot.TexCoord),
		Scale:       mgl32.Vec2{1, 1},
	}
}

// ConvertMaterial maps the material at index to the engine feature graph.
func ConvertMaterial(doc *gltf.Document, index int, textures *TextureResolver) (*materials.MaterialAsset, error) {
	mat := doc.Materials[index]
	// duplicate names carry their suffix so fallback texture names stay distinct
	label := strings.TrimPrefix(MaterialName(doc, textures.meshRoot, index), textures.meshRoot+"_")
	if mat.Name == "" {
		label = strconv.Itoa(index)
	}

	asset := materials.NewMaterialAsset()
	asset.Attributes.CullMode = graphics.CullBack

	for _, ch := range MaterialChannels(mat) {
		if ch.Default {
			continue
		}

		var path string
		if ch.Texture != nil {
			var err error
			path, err = textures.Resolve(ch.Texture, textures.meshRoot+"_"+label+"_"+ch.Key)
			if err != nil {
				return nil, errors.Wrapf(err, "channel %s", ch.Key)
			}
		}

		a := &asset.Attributes
		switch ch.Key {
		case ChannelBaseColor:
			var node materials.ComputeNode = &materials.ComputeColor{Value: ch.Parameter}
			if ch.Texture != nil {
				node = textureColor(path, ch.Texture)
			}
			a.Diffuse = &materials.MaterialDiffuseMapFeature{DiffuseMap: node}
			a.DiffuseModel = &materials.MaterialDiffuseLambertModelFeature{}
		case ChannelMetallicRoughness:
			var node materials.ComputeNode = &materials.ComputeFloat{Value: ch.Parameter[0]}
			if ch.Texture != nil {
				node = textureScalar(path, ch.Texture)
			}
			a.MicroSurface = &materials.MaterialGlossinessMapFeature{GlossinessMap: node}
		case ChannelNormal:
			var node materials.ComputeNode = &materials.ComputeColor{Value: ch.Parameter}
			if ch.Texture != nil {
				node = textureColor(path, ch.Texture)
			}
			a.Surface = &materials.MaterialNormalMapFeature{NormalMap: node}
		case ChannelOcclusion:
			var node materials.ComputeNode = &materials.ComputeFloat{Value: ch.Parameter[0]}
			if ch.Texture != nil {
				node = textureScalar(path, ch.Texture)
			}
			a.Occlusion = &materials.MaterialOcclusionMapFeature{OcclusionMap: node}
		case ChannelEmissive:
			var node materials.ComputeNode = &materials.ComputeColor{Value: ch.Parameter}
			if ch.Texture != nil {
				node = textureColor(path, ch.Texture)
			}
			a.Emissive = &materials.MaterialEmissiveMapFeature{EmissiveMap: node}
		}
	}
	return asset, nil
}

// LoadMaterials converts every material in the document. A failing material is
// reported and skipped; the others are still converted.
func LoadMaterials(doc *gltf.Document, meshRoot string, textures *TextureResolver) (map[string]*materials.MaterialAsset, *Report) {
	result := make(map[string]*materials.MaterialAsset, len(doc.Materials))
	report := &Report{}
	names := MaterialNames(doc, meshRoot)
	for i, name := range names {
		asset, err := ConvertMaterial(doc, i, textures)
		if err != nil {
			logger.Warn("Material conversion failed", zap.String("material", name), zap.Error(err))
			report.Add(KindMaterial, name, err)
			continue
		}
		result[name] = asset
	}
	return result, report
}
