package pose

import (
	"errors"
	"fmt"
)

var (
	ErrDegenerateFrame = errors.New("degenerate frame")
	ErrInvalidSkeleton = errors.New("skeleton size must be positive")
)

// Frame is a normalized frame of exactly 2K values (x0,y0,...,xK-1,yK-1).
type Frame []float64

// Sequence is one normalized frame per sampled video frame.
type Sequence []Frame

// Normalize divides x coordinates by width and y coordinates by height and
// right-sizes the result to 2k values: missing joints are zero-filled and
// extra values are dropped. Values are not clamped, so out-of-frame points
// stay above 1.
func Normalize(raw []float64, width, height float64, k int) (Frame, error) {
	if k <= 0 {
		return nil, ErrInvalidSkeleton
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %vx%v", ErrDegenerateFrame, width, height)
	}

	out := make(Frame, 2*k)
	n := min(len(raw), len(out))
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			out[i] = raw[i] / width
		} else {
			out[i] = raw[i] / height
		}
	}
	return out, nil
}

func NormalizeFrame(frame RawFrame, width, height float64, k int) (Frame, error) {
	return Normalize(frame.Flatten(), width, height, k)
}

// Point returns the normalized coordinates of joint i.
func (f Frame) Point(i int) (x, y float64) {
	return f[2*i], f[2*i+1]
}

func (f Frame) Joints() int {
	return len(f) / 2
}
