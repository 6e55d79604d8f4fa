package animation

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

type InterpolationType int

const (
	InterpolationLinear InterpolationType = iota
	InterpolationConstant
	InterpolationCubic
)

func (i InterpolationType) String() string {
	switch i {
	case InterpolationConstant:
		return "Constant"
	case InterpolationCubic:
		return "Cubic"
	default:
		return "Linear"
	}
}

// Value is the set of types a curve can animate.
type Value interface {
	mgl32.Vec3 | mgl32.Quat
}

type KeyFrame[T Value] struct {
	Time       time.Duration
	Value      T
	TangentIn  T
	TangentOut T
}

type Curve interface {
	KeyCount() int
	Interpolation() InterpolationType
	Optimize()
}

type AnimationCurve[T Value] struct {
	InterpolationType InterpolationType
	KeyFrames         []KeyFrame[T]
}

func NewAnimationCurve[T Value](interpolation InterpolationType) *AnimationCurve[T] {
	return &AnimationCurve[T]{InterpolationType: interpolation}
}

func (c *AnimationCurve[T]) KeyCount() int                    { return len(c.KeyFrames) }
func (c *AnimationCurve[T]) Interpolation() InterpolationType { return c.InterpolationType }

func (c *AnimationCurve[T]) AddKeyFrame(k KeyFrame[T]) {
	c.KeyFrames = append(c.KeyFrames, k)
}

const (
	optimizeEpsilon = 1e-5
	// radians, about 0.006 degrees
	rotationEpsilon = 1e-4
)

// rotationAngle is the angle between the rotations encoded by a and b.
func rotationAngle(a, b mgl32.Quat) float64 {
	// q and -q encode the same rotation
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	av := [4]float32{a.W, a.V[0], a.V[1], a.V[2]}
	bv := [4]float32{b.W, b.V[0], b.V[1], b.V[2]}
	var diff, sum float64
	for i := range av {
		d, s := float64(av[i])-float64(bv[i]), float64(av[i])+float64(bv[i])
		diff += d * d
		sum += s * s
	}
	return 4 * math.Atan2(math.Sqrt(diff), math.Sqrt(sum))
}

// Optimize drops keys that can be reproduced from their neighbours.
// First and last keys are always kept. Cubic curves are left untouched.
func (c *AnimationCurve[T]) Optimize() {
	if c.InterpolationType == InterpolationCubic || len(c.KeyFrames) < 3 {
		return
	}

	kept := []KeyFrame[T]{c.KeyFrames[0]}
	for i := 1; i < len(c.KeyFrames)-1; i++ {
		prev := kept[len(kept)-1]
		cur := c.KeyFrames[i]
		next := c.KeyFrames[i+1]

		var redundant bool
		if c.InterpolationType == InterpolationConstant {
			redundant = valuesEqual(prev.Value, cur.Value)
		} else {
			span := next.Time - prev.Time
			if span <= 0 {
				redundant = valuesEqual(prev.Value, cur.Value)
			} else {
				factor := float32(float64(cur.Time-prev.Time) / float64(span))
				redundant = valuesEqual(lerpValue(prev.Value, next.Value, factor), cur.Value)
			}
		}

		if !redundant {
			kept = append(kept, cur)
		}
	}
	kept = append(kept, c.KeyFrames[len(c.KeyFrames)-1])
	c.KeyFrames = kept
}

func lerpValue[T Value](a, b T, factor float32) T {
	switch av := any(a).(type) {
	case mgl32.Vec3:
		bv := any(b).(mgl32.Vec3)
		return any(av.Add(bv.Sub(av).Mul(factor))).(T)
	case mgl32.Quat:
		bv := any(b).(mgl32.Quat)
		if av.Dot(bv) < 0 {
			bv = bv.Scale(-1)
		}
		return any(av.Add(bv.Sub(av).Scale(factor)).Normalize()).(T)
	}
	return a
}

func valuesEqual[T Value](a, b T) bool {
	switch av := any(a).(type) {
	case mgl32.Vec3:
		return av.ApproxEqualThreshold(any(b).(mgl32.Vec3), optimizeEpsilon)
	case mgl32.Quat:
		return rotationAngle(av, any(b).(mgl32.Quat)) <= rotationEpsilon
	}
	return false
}
