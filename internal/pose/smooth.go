package pose

const DefaultSmoothingWindow = 3

// Smooth applies a valid-range moving average of the given window to every
// coordinate channel independently. The result has len(seq)-window+1 frames.
//
// Sequences that are not longer than the window are returned unchanged
// (as a copy) so short clips never shrink to nothing.
func Smooth(seq Sequence, window int) Sequence {
	n := len(seq)
	if window <= 1 || n <= window {
		return cloneSequence(seq)
	}

	width := len(seq[0])
	out := make(Sequence, n-window+1)
	for t := range out {
		f := make(Frame, width)
		for c := range f {
			var sum float64
			for _, src := range seq[t : t+window] {
				if c < len(src) {
					sum += src[c]
				}
			}
			f[c] = sum / float64(window)
		}
		out[t] = f
	}
	return out
}

func cloneSequence(seq Sequence) Sequence {
	if seq == nil {
		return nil
	}
	out := make(Sequence, len(seq))
	for i, f := range seq {
		out[i] = append(Frame(nil), f...)
	}
	return out
}
