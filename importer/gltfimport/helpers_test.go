package gltfimport

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/require"
)

var quadPositions = [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}

// quadDocument has one mesh "Quad" with a single indexed triangle list primitive
// and one node instancing it.
func quadDocument(t *testing.T) *gltf.Document {
	t.Helper()
	doc := gltf.NewDocument()
	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION:   modeler.WritePosition(doc, quadPositions),
			gltf.NORMAL:     modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}}),
		},
		Indices: gltf.Index(modeler.WriteIndices(doc, []uint32{0, 1, 2, 3, 2, 1})),
	}
	doc.Meshes = []*gltf.Mesh{{Name: "Quad", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "QuadNode", Mesh: gltf.Index(0)}}
	if len(doc.Scenes) > 0 {
		doc.Scenes[0].Nodes = []uint32{0}
	}
	return doc
}

func matToArray(m mgl32.Mat4) [4][4]float32 {
	var result [4][4]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col][row] = m[col*4+row]
		}
	}
	return result
}

// addSkin binds a two joint skin (Root -> Hand) to the quad node.
// Joint nodes are 1 and 2.
func addSkin(t *testing.T, doc *gltf.Document, withMatrices bool) {
	t.Helper()
	doc.Nodes[0].Skin = gltf.Index(0)
	doc.Nodes = append(doc.Nodes,
		&gltf.Node{Name: "Root", Children: []uint32{2}, Translation: [3]float32{0, 1, 0}},
		&gltf.Node{Name: "Hand", Translation: [3]float32{0, 0.5, 0}},
	)
	skin := &gltf.Skin{Name: "Armature", Joints: []uint32{1, 2}}
	if withMatrices {
		skin.InverseBindMatrices = gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, [][4][4]float32{
			matToArray(mgl32.Ident4()),
			matToArray(mgl32.Translate3D(1, 2, 3)),
		}))
	}
	doc.Skins = []*gltf.Skin{skin}
}

func addTranslationAnimation(doc *gltf.Document, name string, node uint32, times []float32, values [][3]float32) {
	anim := &gltf.Animation{
		Name: name,
		Samplers: []*gltf.AnimationSampler{{
			Input:         gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, times)),
			Output:        gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, values)),
			Interpolation: gltf.InterpolationLinear,
		}},
		Channels: []*gltf.Channel{{
			Sampler: gltf.Index(0),
			Target:  gltf.ChannelTarget{Node: gltf.Index(node), Path: gltf.TRSTranslation},
		}},
	}
	doc.Animations = append(doc.Animations, anim)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func addEmbeddedImage(t *testing.T, doc *gltf.Document, name string) uint32 {
	t.Helper()
	imageIndex, err := modeler.WriteImage(doc, name, "image/png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(imageIndex)})
	return uint32(len(doc.Textures) - 1)
}
