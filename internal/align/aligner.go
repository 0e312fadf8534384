package align

import (
	"errors"
	"math"

	"github.com/eleven-am/pose-coach/internal/pose"
)

var ErrNoComparableFrames = errors.New("no comparable frames")

type Mode string

const (
	// ModePerFrame truncates both sequences to the shorter length and runs
	// DTW across the descriptor values of each frame pair.
	ModePerFrame Mode = "per_frame"
	// ModeTemporal warps along the time axis with Euclidean frame cost.
	ModeTemporal Mode = "temporal"
)

func ParseMode(s string) Mode {
	if Mode(s) == ModeTemporal {
		return ModeTemporal
	}
	return ModePerFrame
}

type Alignment struct {
	Distance float64
	PerFrame []float64
	// Frames is the number of frame positions that were compared.
	Frames int
	// Dropped counts frames cut from the longer sequence by truncation.
	Dropped int
}

func (a *Alignment) Finite() bool {
	return !math.IsInf(a.Distance, 0) && !math.IsNaN(a.Distance)
}

type Aligner struct {
	mode Mode
}

func NewAligner(mode Mode) *Aligner {
	if mode == "" {
		mode = ModePerFrame
	}
	return &Aligner{mode: mode}
}

func (al *Aligner) Mode() Mode {
	return al.mode
}

func (al *Aligner) Align(a, b pose.DescriptorSequence) (*Alignment, error) {
	if al.mode == ModeTemporal {
		return alignTemporal(a, b)
	}
	return alignPerFrame(a, b)
}

func alignPerFrame(a, b pose.DescriptorSequence) (*Alignment, error) {
	n := min(len(a), len(b))
	if n == 0 {
		return nil, ErrNoComparableFrames
	}

	perFrame := make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		d := math.Inf(1)
		if a[i].Finite() && b[i].Finite() {
			d = DTW(a[i], b[i])
		}
		perFrame[i] = d
		sum += d
	}

	return &Alignment{
		Distance: sum / float64(n),
		PerFrame: perFrame,
		Frames:   n,
		Dropped:  max(len(a), len(b)) - n,
	}, nil
}

func alignTemporal(a, b pose.DescriptorSequence) (*Alignment, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrNoComparableFrames
	}

	xs := make([][]float64, len(a))
	for i, d := range a {
		if !d.Finite() {
			return &Alignment{Distance: math.Inf(1), Frames: min(len(a), len(b))}, nil
		}
		xs[i] = d
	}
	ys := make([][]float64, len(b))
	for i, d := range b {
		if !d.Finite() {
			return &Alignment{Distance: math.Inf(1), Frames: min(len(a), len(b))}, nil
		}
		ys[i] = d
	}

	return &Alignment{
		Distance: vectorDTW(xs, ys),
		Frames:   min(len(a), len(b)),
	}, nil
}
