package video

import (
	"context"
	"errors"
	"image"
	"math"
	"time"
)

var ErrStopIteration = errors.New("stop iteration")

type Info struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int
}

func (i Info) Duration() time.Duration {
	if i.FPS <= 0 || i.FrameCount <= 0 {
		return 0
	}
	return time.Duration(float64(i.FrameCount) / i.FPS * float64(time.Second))
}

// FrameFunc receives the source index of each delivered frame. Returning
// ErrStopIteration ends the walk without error.
type FrameFunc func(index int, img image.Image) error

type Source interface {
	Info() Info
	// Frames decodes the video in order and hands every step-th frame
	// (starting at index 0) to fn.
	Frames(ctx context.Context, step int, fn FrameFunc) error
}

// Step converts a sampling interval into a frame step for the given frame
// rate. Unknown frame rates sample every frame.
func Step(info Info, interval time.Duration) int {
	if interval <= 0 || info.FPS <= 0 {
		return 1
	}
	step := int(math.Round(info.FPS * interval.Seconds()))
	if step < 1 {
		return 1
	}
	return step
}
