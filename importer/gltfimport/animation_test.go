package gltfimport

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/gltf_importer/engine/animation"
)

func skinnedQuad(t *testing.T) (*gltf.Document, map[uint32]int) {
	t.Helper()
	doc := quadDocument(t)
	addSkin(t, doc, true)
	_, mapping, err := ConvertSkeleton(doc, 0)
	require.NoError(t, err)
	return doc, mapping
}

func TestConvertAnimationsUnnamedClip(t *testing.T) {
	doc, mapping := skinnedQuad(t)
	addTranslationAnimation(doc, "", 1, []float32{0, 1, 2.5}, [][3]float32{{0, 0, 0}, {1, 0, 0}, {2.5, 0, 0}})

	clips, report := ConvertAnimations(doc, "Quad", mapping, true)
	require.False(t, report.HasFailures(), report.String())
	require.Contains(t, clips, "Quad_Animation_0")

	clip := clips["Quad_Animation_0"]
	assert.Equal(t, 2500*time.Millisecond, clip.Duration)
	assert.Equal(t, animation.LoopInfinite, clip.RepeatMode)

	path := "[ModelComponent.Key].Skeleton.NodeTransformations[1].Transform.Position"
	assert.Equal(t, []string{path}, clip.CurvePaths())
	curve := clip.Curves[path].(*animation.AnimationCurve[mgl32.Vec3])
	assert.Equal(t, animation.InterpolationLinear, curve.InterpolationType)
	require.Len(t, curve.KeyFrames, 2, "collinear middle key is optimized away")
	assert.Equal(t, mgl32.Vec3{2.5, 0, 0}, curve.KeyFrames[1].Value)
}

func TestConvertAnimationsWithoutOptimization(t *testing.T) {
	doc, mapping := skinnedQuad(t)
	addTranslationAnimation(doc, "Slide", 2, []float32{0, 1, 2}, [][3]float32{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}})

	clips, _ := ConvertAnimations(doc, "Quad", mapping, false)
	clip := clips["Quad_Slide"]
	require.NotNil(t, clip)
	curve := clip.Curves[CurvePath(2, "Position")]
	require.NotNil(t, curve)
	assert.Equal(t, 3, curve.KeyCount())
}

func TestConvertAnimationsUniqueNames(t *testing.T) {
	doc, mapping := skinnedQuad(t)
	addTranslationAnimation(doc, "Walk", 1, []float32{0, 1}, [][3]float32{{0, 0, 0}, {1, 0, 0}})
	addTranslationAnimation(doc, "Walk", 2, []float32{0, 2}, [][3]float32{{0, 0, 0}, {0, 1, 0}})

	clips, report := ConvertAnimations(doc, "Quad", mapping, true)
	require.False(t, report.HasFailures())
	assert.Len(t, clips, 2)
	assert.Contains(t, clips, "Quad_Walk")
	assert.Contains(t, clips, "Quad_Walk_1")
	assert.Equal(t, 2*time.Second, clips["Quad_Walk_1"].Duration)
}

func TestAnimationClipNamesSuffixIsFree(t *testing.T) {
	doc, mapping := skinnedQuad(t)
	for i, name := range []string{"a", "a_2", "a"} {
		addTranslationAnimation(doc, name, 1, []float32{0, float32(i + 1)}, [][3]float32{{0, 0, 0}, {1, 0, 0}})
	}

	assert.Equal(t, []string{"Quad_a", "Quad_a_2", "Quad_a_2_2"}, AnimationClipNames(doc, "Quad"))

	clips, report := ConvertAnimations(doc, "Quad", mapping, true)
	require.False(t, report.HasFailures())
	assert.Len(t, clips, 3)
	assert.Equal(t, 3*time.Second, clips["Quad_a_2_2"].Duration)
}

func TestConvertAnimationRotationStep(t *testing.T) {
	doc, mapping := skinnedQuad(t)
	doc.Animations = []*gltf.Animation{{
		Name: "Turn",
		Samplers: []*gltf.AnimationSampler{{
			Input: gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 0.5, 1})),
			Output: gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, [][4]float32{
				{0, 0, 0, 1}, {0, 0, 0.7071068, 0.7071068}, {0, 0, 1, 0},
			})),
			Interpolation: gltf.InterpolationStep,
		}},
		Channels: []*gltf.Channel{
			{Sampler: gltf.Index(0), Target: gltf.ChannelTarget{Node: gltf.Index(2), Path: gltf.TRSRotation}},
			{Sampler: gltf.Index(0), Target: gltf.ChannelTarget{Node: gltf.Index(0), Path: gltf.TRSWeights}},
		},
	}}

	clip, err := ConvertAnimation(doc, doc.Animations[0], mapping, false)
	require.NoError(t, err)
	require.Len(t, clip.Curves, 1)

	curve := clip.Curves[CurvePath(2, "Rotation")].(*animation.AnimationCurve[mgl32.Quat])
	assert.Equal(t, animation.InterpolationConstant, curve.InterpolationType)
	require.Len(t, curve.KeyFrames, 3)
	assert.Equal(t, 500*time.Millisecond, curve.KeyFrames[1].Time)
	assert.Equal(t, float32(1), curve.KeyFrames[2].Value.V[2])
}

func TestConvertAnimationCubicSpline(t *testing.T) {
	doc, mapping := skinnedQuad(t)
	doc.Animations = []*gltf.Animation{{
		Samplers: []*gltf.AnimationSampler{{
			Input: gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 1})),
			Output: gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, [][3]float32{
				{0, 0, 0}, {1, 1, 1}, {0, 1, 0},
				{0, 0, 1}, {2, 2, 2}, {1, 0, 0},
			})),
			Interpolation: gltf.InterpolationCubicSpline,
		}},
		Channels: []*gltf.Channel{
			{Sampler: gltf.Index(0), Target: gltf.ChannelTarget{Node: gltf.Index(1), Path: gltf.TRSScale}},
		},
	}}

	clip, err := ConvertAnimation(doc, doc.Animations[0], mapping, true)
	require.NoError(t, err)
	curve := clip.Curves[CurvePath(1, "Scale")].(*animation.AnimationCurve[mgl32.Vec3])
	require.Len(t, curve.KeyFrames, 2)
	assert.Equal(t, animation.InterpolationCubic, curve.InterpolationType)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, curve.KeyFrames[1].TangentIn)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, curve.KeyFrames[1].Value)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, curve.KeyFrames[1].TangentOut)
}

func TestConvertAnimationsSkipsUnmappedNodes(t *testing.T) {
	doc := quadDocument(t)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "Loose"})
	addTranslationAnimation(doc, "Drift", 1, []float32{0, 1}, [][3]float32{{0, 0, 0}, {1, 0, 0}})

	_, mapping, err := ConvertSkeleton(doc, 0)
	require.NoError(t, err)
	clips, report := ConvertAnimations(doc, "Quad", mapping, true)
	require.False(t, report.HasFailures())
	assert.Empty(t, clips["Quad_Drift"].Curves)
	assert.Equal(t, time.Second, clips["Quad_Drift"].Duration)
}

func TestConvertAnimationsReportsFailures(t *testing.T) {
	doc, mapping := skinnedQuad(t)
	addTranslationAnimation(doc, "Good", 1, []float32{0, 1}, [][3]float32{{0, 0, 0}, {1, 0, 0}})
	addTranslationAnimation(doc, "Bad", 1, []float32{0, 1, 2}, [][3]float32{{0, 0, 0}, {1, 0, 0}})

	clips, report := ConvertAnimations(doc, "Quad", mapping, true)
	assert.Contains(t, clips, "Quad_Good")
	assert.NotContains(t, clips, "Quad_Bad")
	require.Len(t, report.Failures, 1)
	assert.Equal(t, KindAnimation, report.Failures[0].Kind)
	assert.ErrorIs(t, report.Failures[0].Err, ErrStructuralMismatch)
}

func TestTotalAnimationDuration(t *testing.T) {
	doc := quadDocument(t)
	assert.Equal(t, time.Duration(0), TotalAnimationDuration(doc))

	addTranslationAnimation(doc, "A", 0, []float32{0, 2.5}, [][3]float32{{0, 0, 0}, {1, 0, 0}})
	addTranslationAnimation(doc, "B", 0, []float32{0.5, 1}, [][3]float32{{0, 0, 0}, {1, 0, 0}})
	assert.Equal(t, 3500*time.Millisecond, TotalAnimationDuration(doc))

	seconds, err := AnimationDuration(doc, doc.Animations[1])
	require.NoError(t, err)
	assert.Equal(t, 1.0, seconds)
}
