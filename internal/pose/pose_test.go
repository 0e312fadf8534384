package pose

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_DividesByDimensions(t *testing.T) {
	raw := []float64{320, 240, 640, 480, 1280, 960}
	got, err := Normalize(raw, 640, 480, 3)
	require.NoError(t, err)

	assert.Equal(t, Frame{0.5, 0.5, 1, 1, 2, 2}, got)
}

func TestNormalize_DoesNotClamp(t *testing.T) {
	got, err := Normalize([]float64{-10, 1000}, 100, 100, 1)
	require.NoError(t, err)

	assert.Equal(t, -0.1, got[0])
	assert.Equal(t, 10.0, got[1])
}

func TestNormalize_FixedLength(t *testing.T) {
	tests := []struct {
		name string
		raw  []float64
		k    int
	}{
		{name: "empty", raw: nil, k: 17},
		{name: "partial", raw: []float64{1, 2, 3, 4}, k: 17},
		{name: "odd length", raw: []float64{1, 2, 3}, k: 2},
		{name: "exact", raw: make([]float64, 34), k: 17},
		{name: "too long", raw: make([]float64, 60), k: 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, 10, 20, tt.k)
			require.NoError(t, err)
			assert.Len(t, got, 2*tt.k)
		})
	}
}

func TestNormalize_PadsWithZeros(t *testing.T) {
	got, err := Normalize([]float64{10, 20}, 10, 20, 3)
	require.NoError(t, err)

	assert.Equal(t, Frame{1, 1, 0, 0, 0, 0}, got)
}

func TestNormalize_TruncatesExtraValues(t *testing.T) {
	got, err := Normalize([]float64{10, 20, 30, 40, 50, 60}, 10, 10, 2)
	require.NoError(t, err)

	assert.Equal(t, Frame{1, 2, 3, 4}, got)
}

func TestNormalize_DegenerateDimensions(t *testing.T) {
	_, err := Normalize([]float64{1, 2}, 0, 10, 1)
	assert.True(t, errors.Is(err, ErrDegenerateFrame))

	_, err = Normalize([]float64{1, 2}, 10, 0, 1)
	assert.True(t, errors.Is(err, ErrDegenerateFrame))
}

func TestNormalize_InvalidSkeleton(t *testing.T) {
	_, err := Normalize([]float64{1, 2}, 10, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidSkeleton)
}

func TestNormalizeFrame_FlattensKeypoints(t *testing.T) {
	frame := RawFrame{{X: 50, Y: 25, Confidence: 0.9}, {X: 100, Y: 50, Confidence: 0.8}}
	got, err := NormalizeFrame(frame, 100, 50, 2)
	require.NoError(t, err)

	assert.Equal(t, Frame{0.5, 0.5, 1, 1}, got)
}

func TestSmooth_ValidRangeLength(t *testing.T) {
	seq := make(Sequence, 10)
	for i := range seq {
		seq[i] = Frame{float64(i), float64(i * 2)}
	}

	for _, w := range []int{2, 3, 5, 9} {
		got := Smooth(seq, w)
		assert.Len(t, got, len(seq)-w+1, "window %d", w)
	}
}

func TestSmooth_MovingAverage(t *testing.T) {
	seq := Sequence{{0, 10}, {3, 10}, {6, 40}, {9, 40}}
	got := Smooth(seq, 3)

	require.Len(t, got, 2)
	assert.InDelta(t, 3.0, got[0][0], 1e-12)
	assert.InDelta(t, 20.0, got[0][1], 1e-12)
	assert.InDelta(t, 6.0, got[1][0], 1e-12)
	assert.InDelta(t, 30.0, got[1][1], 1e-12)
}

func TestSmooth_PassThrough(t *testing.T) {
	seq := Sequence{{1, 2}, {3, 4}, {5, 6}}

	assert.Equal(t, seq, Smooth(seq, 5), "window longer than sequence")
	assert.Equal(t, seq, Smooth(seq, 3), "window equal to sequence")
	assert.Equal(t, seq, Smooth(seq, 1), "unit window")
	assert.Empty(t, Smooth(nil, 3))
}

func TestSmooth_DoesNotAliasInput(t *testing.T) {
	seq := Sequence{{1, 2}}
	got := Smooth(seq, 3)
	got[0][0] = 99

	assert.Equal(t, 1.0, seq[0][0])
}

func TestEncode_Length(t *testing.T) {
	for _, k := range []int{1, 2, 5, 17, 33} {
		f := make(Frame, 2*k)
		assert.Len(t, Encode(f), k*(k-1)/2, "k=%d", k)
	}
}

func TestEncode_PairDistances(t *testing.T) {
	f := Frame{0, 0, 3, 4, 0, 1}
	got := Encode(f)

	require.Len(t, got, 3)
	assert.InDelta(t, 5.0, got[0], 1e-12)
	assert.InDelta(t, 1.0, got[1], 1e-12)
	assert.InDelta(t, math.Sqrt(9+9), got[2], 1e-12)
}

func TestEncode_TranslationInvariant(t *testing.T) {
	f := Frame{0.1, 0.2, 0.4, 0.6, 0.3, 0.9}
	shifted := make(Frame, len(f))
	for i, v := range f {
		shifted[i] = v + 0.25
	}

	a, b := Encode(f), Encode(shifted)
	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-12)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	f := Frame{0.1, 0.7, 0.4, 0.2, 0.3, 0.9, 0.5, 0.5}
	assert.Equal(t, Encode(f), Encode(f))
}

func TestPairAt_LexicographicOrder(t *testing.T) {
	k := 5
	idx := 0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			gi, gj, ok := PairAt(k, idx)
			require.True(t, ok)
			assert.Equal(t, i, gi)
			assert.Equal(t, j, gj)
			idx++
		}
	}

	_, _, ok := PairAt(k, idx)
	assert.False(t, ok)
	_, _, ok = PairAt(k, -1)
	assert.False(t, ok)
}

func TestDescriptor_Finite(t *testing.T) {
	assert.True(t, Descriptor{0, 1, 2}.Finite())
	assert.False(t, Descriptor{0, math.NaN()}.Finite())
	assert.False(t, Descriptor{math.Inf(1)}.Finite())
}

func TestDescriptorSequence_Mean(t *testing.T) {
	seq := DescriptorSequence{{1, 2}, {3, 4}, {9}}
	assert.Equal(t, Descriptor{2, 3}, seq.Mean())
	assert.Nil(t, DescriptorSequence{}.Mean())
}

func TestMostConfident(t *testing.T) {
	people := []RawFrame{
		{{Confidence: 0.2}, {Confidence: 0.4}},
		{{Confidence: 0.9}},
		{},
	}

	got, ok := MostConfident(people)
	require.True(t, ok)
	assert.Equal(t, people[1], got)

	_, ok = MostConfident([]RawFrame{{}})
	assert.False(t, ok)
}

func TestSkeletonOfSize(t *testing.T) {
	assert.Equal(t, COCO17, SkeletonOfSize(17))

	s := SkeletonOfSize(5)
	assert.Equal(t, 5, s.Size())
	assert.Equal(t, 10, s.FrameWidth())
	assert.Equal(t, 10, s.DescriptorWidth())
	assert.Equal(t, 136, COCO17.DescriptorWidth())
}
