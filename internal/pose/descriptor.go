package pose

import "math"

// Descriptor holds the Euclidean distance between every unordered joint
// pair of one frame, ordered (0,1),(0,2),...,(0,K-1),(1,2),...
type Descriptor []float64

type DescriptorSequence []Descriptor

func PairCount(k int) int {
	if k < 2 {
		return 0
	}
	return k * (k - 1) / 2
}

// PairAt maps a descriptor index back to its joint pair for a skeleton of
// size k. It returns ok=false when idx is out of range.
func PairAt(k, idx int) (i, j int, ok bool) {
	if idx < 0 || idx >= PairCount(k) {
		return 0, 0, false
	}
	for i = 0; i < k-1; i++ {
		row := k - 1 - i
		if idx < row {
			return i, i + 1 + idx, true
		}
		idx -= row
	}
	return 0, 0, false
}

// Encode computes the pairwise joint distances of a normalized frame.
func Encode(f Frame) Descriptor {
	k := f.Joints()
	out := make(Descriptor, 0, PairCount(k))
	for i := 0; i < k; i++ {
		x1, y1 := f.Point(i)
		for j := i + 1; j < k; j++ {
			x2, y2 := f.Point(j)
			out = append(out, math.Hypot(x2-x1, y2-y1))
		}
	}
	return out
}

func EncodeSequence(seq Sequence) DescriptorSequence {
	out := make(DescriptorSequence, len(seq))
	for i, f := range seq {
		out[i] = Encode(f)
	}
	return out
}

// Finite reports whether every value is a finite number.
func (d Descriptor) Finite() bool {
	for _, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Mean averages the sequence position-wise. Descriptors of a different
// width than the first are ignored.
func (s DescriptorSequence) Mean() Descriptor {
	if len(s) == 0 {
		return nil
	}
	width := len(s[0])
	out := make(Descriptor, width)
	var n int
	for _, d := range s {
		if len(d) != width {
			continue
		}
		for i, v := range d {
			out[i] += v
		}
		n++
	}
	for i := range out {
		out[i] /= float64(n)
	}
	return out
}
