package gltfimport

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/mogaika/gltf_importer/engine/animation"
	"github.com/mogaika/gltf_importer/logger"
)

// CurvePath is the target path of a transform curve for a skeleton node.
func CurvePath(node int, property string) string {
	return fmt.Sprintf("[ModelComponent.Key].Skeleton.NodeTransformations[%d].Transform.%s", node, property)
}

func convertInterpolation(i gltf.Interpolation) animation.InterpolationType {
	switch i {
	case gltf.InterpolationStep:
		return animation.InterpolationConstant
	case gltf.InterpolationCubicSpline:
		return animation.InterpolationCubic
	}
	return animation.InterpolationLinear
}

func samplerAt(doc *gltf.Document, anim *gltf.Animation, channel *gltf.Channel) (*gltf.AnimationSampler, error) {
	if channel.Sampler == nil || int(*channel.Sampler) >= len(anim.Samplers) {
		return nil, errors.Wrap(ErrStructuralMismatch, "channel sampler out of range")
	}
	sampler := anim.Samplers[*channel.Sampler]
	if sampler.Input == nil || sampler.Output == nil {
		return nil, errors.Wrap(ErrStructuralMismatch, "sampler without input or output")
	}
	return sampler, nil
}

// AnimationDuration is the largest key time over every sampler of anim, in seconds.
func AnimationDuration(doc *gltf.Document, anim *gltf.Animation) (float64, error) {
	var duration float64
	for i, sampler := range anim.Samplers {
		if sampler.Input == nil {
			continue
		}
		times, err := readFloats(doc, *sampler.Input)
		if err != nil {
			return 0, errors.Wrapf(err, "sampler %d input", i)
		}
		for _, t := range times {
			if float64(t) > duration {
				duration = float64(t)
			}
		}
	}
	return duration, nil
}

// TotalAnimationDuration sums the duration of every animation in the document.
// Animations with unreadable samplers count as zero.
func TotalAnimationDuration(doc *gltf.Document) time.Duration {
	var total time.Duration
	for i, anim := range doc.Animations {
		seconds, err := AnimationDuration(doc, anim)
		if err != nil {
			logger.Debug("Skipping animation duration", zap.Int("animation", i), zap.Error(err))
			continue
		}
		total += animation.SecondsToDuration(seconds)
	}
	return total
}

// splitCubic unpacks cubic spline output triples (in tangent, value, out tangent).
func splitCubic[T animation.Value](values []T, times []float32) ([]animation.KeyFrame[T], error) {
	if len(values) != len(times)*3 {
		return nil, errors.Wrapf(ErrStructuralMismatch, "cubic sampler has %d outputs for %d keys", len(values), len(times))
	}
	keys := make([]animation.KeyFrame[T], len(times))
	for i, t := range times {
		keys[i] = animation.KeyFrame[T]{
			Time:       animation.SecondsToDuration(float64(t)),
			TangentIn:  values[i*3],
			Value:      values[i*3+1],
			TangentOut: values[i*3+2],
		}
	}
	return keys, nil
}

func keyFrames[T animation.Value](values []T, times []float32, interpolation animation.InterpolationType) ([]animation.KeyFrame[T], error) {
	if interpolation == animation.InterpolationCubic {
		return splitCubic(values, times)
	}
	if len(values) != len(times) {
		return nil, errors.Wrapf(ErrStructuralMismatch, "sampler has %d outputs for %d keys", len(values), len(times))
	}
	keys := make([]animation.KeyFrame[T], len(times))
	for i, t := range times {
		keys[i] = animation.KeyFrame[T]{Time: animation.SecondsToDuration(float64(t)), Value: values[i]}
	}
	return keys, nil
}

func buildCurve[T animation.Value](values []T, times []float32, interpolation animation.InterpolationType) (*animation.AnimationCurve[T], error) {
	keys, err := keyFrames(values, times, interpolation)
	if err != nil {
		return nil, err
	}
	curve := animation.NewAnimationCurve[T](interpolation)
	for _, k := range keys {
		curve.AddKeyFrame(k)
	}
	return curve, nil
}

func convertChannel(doc *gltf.Document, sampler *gltf.AnimationSampler, path gltf.TRSProperty) (animation.Curve, string, error) {
	times, err := readFloats(doc, *sampler.Input)
	if err != nil {
		return nil, "", errors.Wrap(err, "sampler input")
	}
	interpolation := convertInterpolation(sampler.Interpolation)

	switch path {
	case gltf.TRSTranslation, gltf.TRSScale:
		values, err := readVec3s(doc, *sampler.Output)
		if err != nil {
			return nil, "", errors.Wrap(err, "sampler output")
		}
		curve, err := buildCurve[mgl32.Vec3](values, times, interpolation)
		property := "Position"
		if path == gltf.TRSScale {
			property = "Scale"
		}
		return curve, property, err
	case gltf.TRSRotation:
		values, err := readQuats(doc, *sampler.Output)
		if err != nil {
			return nil, "", errors.Wrap(err, "sampler output")
		}
		curve, err := buildCurve[mgl32.Quat](values, times, interpolation)
		return curve, "Rotation", err
	}
	return nil, "", nil
}

// ConvertAnimation builds one clip. Channels targeting nodes absent from nodeMapping
// and morph weight channels are skipped.
func ConvertAnimation(doc *gltf.Document, anim *gltf.Animation, nodeMapping map[uint32]int, optimize bool) (*animation.AnimationClip, error) {
	seconds, err := AnimationDuration(doc, anim)
	if err != nil {
		return nil, err
	}
	clip := animation.NewAnimationClip(animation.SecondsToDuration(seconds))
	clip.RepeatMode = animation.LoopInfinite

	for i, channel := range anim.Channels {
		if channel.Target.Node == nil {
			continue
		}
		node, ok := nodeMapping[*channel.Target.Node]
		if !ok {
			logger.Debug("Skipping channel for node outside the skeleton",
				zap.Int("channel", i), zap.Uint32("node", *channel.Target.Node))
			continue
		}
		sampler, err := samplerAt(doc, anim, channel)
		if err != nil {
			return nil, errors.Wrapf(err, "channel %d", i)
		}
		curve, property, err := convertChannel(doc, sampler, channel.Target.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "channel %d", i)
		}
		if curve == nil {
			continue
		}
		clip.AddCurve(CurvePath(node, property), curve)
	}

	if optimize {
		clip.Optimize()
	}
	return clip, nil
}

// ConvertAnimations converts every animation of the document into a named clip.
func ConvertAnimations(doc *gltf.Document, meshRoot string, nodeMapping map[uint32]int, optimize bool) (map[string]*animation.AnimationClip, *Report) {
	names := AnimationClipNames(doc, meshRoot)
	clips := make(map[string]*animation.AnimationClip, len(doc.Animations))
	report := &Report{}
	for i, anim := range doc.Animations {
		clip, err := ConvertAnimation(doc, anim, nodeMapping, optimize)
		if err != nil {
			logger.Warn("Animation conversion failed", zap.String("animation", names[i]), zap.Error(err))
			report.Add(KindAnimation, names[i], err)
			continue
		}
		clips[names[i]] = clip
	}
	return clips, report
}
