package animation

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func vec3Curve(interp InterpolationType, values ...mgl32.Vec3) *AnimationCurve[mgl32.Vec3] {
	c := NewAnimationCurve[mgl32.Vec3](interp)
	for i, v := range values {
		c.AddKeyFrame(KeyFrame[mgl32.Vec3]{Time: time.Duration(i) * time.Second, Value: v})
	}
	return c
}

func TestOptimizeLinearRemovesCollinearKeys(t *testing.T) {
	c := vec3Curve(InterpolationLinear,
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{1, 0, 0},
		mgl32.Vec3{2, 0, 0},
		mgl32.Vec3{3, 1, 0},
	)
	c.Optimize()

	assert.Equal(t, 3, c.KeyCount())
	assert.Equal(t, time.Duration(0), c.KeyFrames[0].Time)
	assert.Equal(t, 2*time.Second, c.KeyFrames[1].Time)
	assert.Equal(t, 3*time.Second, c.KeyFrames[2].Time)
}

func TestOptimizeConstantRemovesRepeats(t *testing.T) {
	c := vec3Curve(InterpolationConstant,
		mgl32.Vec3{1, 1, 1},
		mgl32.Vec3{1, 1, 1},
		mgl32.Vec3{1, 1, 1},
		mgl32.Vec3{2, 2, 2},
		mgl32.Vec3{2, 2, 2},
	)
	c.Optimize()

	var times []time.Duration
	for _, k := range c.KeyFrames {
		times = append(times, k.Time)
	}
	assert.Equal(t, []time.Duration{0, 3 * time.Second, 4 * time.Second}, times)
}

func TestOptimizeKeepsShortAndCubicCurves(t *testing.T) {
	short := vec3Curve(InterpolationLinear, mgl32.Vec3{}, mgl32.Vec3{})
	short.Optimize()
	assert.Equal(t, 2, short.KeyCount())

	cubic := vec3Curve(InterpolationCubic, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{})
	cubic.Optimize()
	assert.Equal(t, 3, cubic.KeyCount())
}

func TestOptimizeQuaternionCurve(t *testing.T) {
	c := NewAnimationCurve[mgl32.Quat](InterpolationLinear)
	id := mgl32.QuatIdent()
	for i := 0; i < 4; i++ {
		c.AddKeyFrame(KeyFrame[mgl32.Quat]{Time: time.Duration(i) * time.Second, Value: id})
	}
	// negated quaternion is the same rotation
	c.KeyFrames[2].Value = mgl32.Quat{W: -1}
	c.Optimize()
	assert.Equal(t, 2, c.KeyCount())
}

func TestClipOptimizeAndPaths(t *testing.T) {
	clip := NewAnimationClip(2500 * time.Millisecond)
	clip.AddCurve("b", vec3Curve(InterpolationLinear, mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{}))
	clip.AddCurve("a", vec3Curve(InterpolationLinear, mgl32.Vec3{}))
	clip.Optimize()

	assert.Equal(t, []string{"a", "b"}, clip.CurvePaths())
	assert.Equal(t, 2, clip.Curves["b"].KeyCount())
	assert.Equal(t, 2500*time.Millisecond, SecondsToDuration(2.5))
}

func TestRotationAngle(t *testing.T) {
	id := mgl32.QuatIdent()
	assert.InDelta(t, 0, rotationAngle(id, id), 1e-9)
	assert.InDelta(t, 0, rotationAngle(id, mgl32.Quat{W: -1}), 1e-9)

	q := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	assert.InDelta(t, math.Pi/2, rotationAngle(id, q), 1e-5)
	assert.InDelta(t, math.Pi/2, rotationAngle(id, q.Scale(-1)), 1e-5)
}

func TestOptimizeKeepsSmallRotations(t *testing.T) {
	c := NewAnimationCurve[mgl32.Quat](InterpolationConstant)
	for i, deg := range []float32{0, 0.1, 0.2} {
		c.AddKeyFrame(KeyFrame[mgl32.Quat]{
			Time:  time.Duration(i) * time.Second,
			Value: mgl32.QuatRotate(mgl32.DegToRad(deg), mgl32.Vec3{1, 0, 0}),
		})
	}
	c.Optimize()
	assert.Equal(t, 3, c.KeyCount())
}
