package animation

import (
	"sort"
	"time"
)

type AnimationRepeatMode int

const (
	PlayOnce AnimationRepeatMode = iota
	LoopInfinite
	PlayOnceHold
)

type AnimationClip struct {
	Duration   time.Duration
	RepeatMode AnimationRepeatMode
	Curves     map[string]Curve
}

func NewAnimationClip(duration time.Duration) *AnimationClip {
	return &AnimationClip{
		Duration: duration,
		Curves:   make(map[string]Curve),
	}
}

func (c *AnimationClip) AddCurve(path string, curve Curve) {
	c.Curves[path] = curve
}

// CurvePaths returns curve target paths sorted.
func (c *AnimationClip) CurvePaths() []string {
	paths := make([]string, 0, len(c.Curves))
	for p := range c.Curves {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (c *AnimationClip) Optimize() {
	for _, curve := range c.Curves {
		curve.Optimize()
	}
}

// SecondsToDuration converts glTF key times to durations.
func SecondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
