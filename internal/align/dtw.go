package align

import "math"

// DTW returns the dynamic time warping distance between two 1-D series.
// Local cost is the squared difference; the result is the square root of
// the cheapest accumulated path cost. Empty input yields +Inf.
func DTW(a, b []float64) float64 {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	for j := range prev {
		prev[j] = math.Inf(1)
	}
	prev[0] = 0

	for i := 0; i < n; i++ {
		curr[0] = math.Inf(1)
		for j := 0; j < m; j++ {
			d := a[i] - b[j]
			curr[j+1] = d*d + min(prev[j], prev[j+1], curr[j])
		}
		prev, curr = curr, prev
	}
	return math.Sqrt(prev[m])
}

// vectorDTW aligns two series of vectors with Euclidean local cost and
// returns the accumulated cost divided by the longer length.
func vectorDTW(a, b [][]float64) float64 {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	for j := range prev {
		prev[j] = math.Inf(1)
	}
	prev[0] = 0

	for i := 0; i < n; i++ {
		curr[0] = math.Inf(1)
		for j := 0; j < m; j++ {
			curr[j+1] = euclidean(a[i], b[j]) + min(prev[j], prev[j+1], curr[j])
		}
		prev, curr = curr, prev
	}
	return prev[m] / float64(max(n, m))
}

func euclidean(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
