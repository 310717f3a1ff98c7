package models

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxisStumpFindsSeparatingThreshold(t *testing.T) {
	X := make([][]float64, 10)
	y := make([]int, 10)
	ix := make([]int, 10)
	for i := range X {
		X[i] = []float64{float64(i)}
		if i >= 5 {
			y[i] = 1
		}
		ix[i] = i
	}

	s, err := AxisStump{}.Train(X, y, ix, 2, 200, seeded(1))
	require.NoError(t, err)
	assert.Equal(t, []int{0}, s.Features)
	assert.Greater(t, s.Threshold, 4.0)
	assert.LessOrEqual(t, s.Threshold, 5.0)
	for i := range X {
		want := Left
		if y[i] == 1 {
			want = Right
		}
		assert.Equal(t, want, AxisStump{}.Test(X[i], s), "row %d", i)
	}
}

func TestAxisStumpOnlyLooksAtRelevantRows(t *testing.T) {
	X := [][]float64{{0}, {1}, {100}, {200}}
	y := []int{0, 1, 0, 1}
	ix := []int{2, 3}

	s, err := AxisStump{}.Train(X, y, ix, 2, 10, seeded(3))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.Threshold, 100.0)
	assert.LessOrEqual(t, s.Threshold, 200.0)
}

func TestNilSplitRoutesLeft(t *testing.T) {
	x := []float64{1, 2, 3}
	assert.Equal(t, Left, AxisStump{}.Test(x, nil))
	assert.Equal(t, Left, ProjectionStump{}.Test(x, nil))
	assert.Equal(t, Left, LearnerFuncs{ID: "f"}.Test(x, nil))
}

func TestStumpTestIsStrictlyLess(t *testing.T) {
	s := &Split{Features: []int{1}, Weights: []float64{1}, Threshold: 2}
	assert.Equal(t, Right, AxisStump{}.Test([]float64{0, 2}, s))
	assert.Equal(t, Left, AxisStump{}.Test([]float64{0, 1.999}, s))
}

func TestProjectionStumpPicksTwoDistinctDimensions(t *testing.T) {
	X, y := threeClusters(10, 11)
	ix := make([]int, len(X))
	for i := range ix {
		ix[i] = i
	}
	rng := seeded(5)
	for k := 0; k < 50; k++ {
		s, err := ProjectionStump{}.Train(X, y, ix, 3, 10, rng)
		require.NoError(t, err)
		require.Len(t, s.Features, 2)
		assert.NotEqual(t, s.Features[0], s.Features[1])
		for _, f := range s.Features {
			assert.True(t, f >= 0 && f < 3)
		}
		assert.InDelta(t, 1.0, math.Hypot(s.Weights[0], s.Weights[1]), 1e-12)
	}
}

func TestProjectionStumpUsesChosenDimensionsAtTest(t *testing.T) {
	s := &Split{Features: []int{2, 1}, Weights: []float64{1, 0}, Threshold: 0.5}
	assert.Equal(t, Left, ProjectionStump{}.Test([]float64{10, 10, 0}, s))
	assert.Equal(t, Right, ProjectionStump{}.Test([]float64{-10, -10, 1}, s))
}

func TestProjectionStumpTwoColumns(t *testing.T) {
	X, y := twoClusters()
	ix := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	s, err := ProjectionStump{}.Train(X, y, ix, 2, 10, seeded(9))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, s.Features)
}

func TestWeakLearnersRejectTooFewRows(t *testing.T) {
	X, y := twoClusters()
	for _, l := range []WeakLearner{AxisStump{}, ProjectionStump{}} {
		_, err := l.Train(X, y, []int{3}, 2, 10, seeded(1))
		assert.ErrorIs(t, err, ErrTooFewRows, l.Name())
		_, err = l.Train(X, y, nil, 2, 10, seeded(1))
		assert.ErrorIs(t, err, ErrTooFewRows, l.Name())
	}
}

func TestDistinctPair(t *testing.T) {
	rng := seeded(2)
	seen := map[[2]int]bool{}
	for k := 0; k < 2000; k++ {
		i, j := distinctPair(4, rng)
		require.NotEqual(t, i, j)
		require.True(t, i >= 0 && i < 4 && j >= 0 && j < 4)
		seen[[2]int{i, j}] = true
	}
	assert.Len(t, seen, 12)
}

func TestRegisterLearner(t *testing.T) {
	calls := 0
	custom := LearnerFuncs{
		ID: "median-of-first",
		TrainFunc: func(X [][]float64, y []int, ix []int, numClasses, numTries int, rng *rand.Rand) (*Split, error) {
			calls++
			return &Split{Features: []int{0}, Weights: []float64{1}, Threshold: X[ix[len(ix)/2]][0]}, nil
		},
	}
	require.NoError(t, RegisterLearner(custom))

	l, err := LookupLearner("median-of-first")
	require.NoError(t, err)
	assert.Equal(t, "median-of-first", l.Name())

	X, y := twoClusters()
	dt := NewDecisionTree()
	dt.Learner = "median-of-first"
	require.NoError(t, dt.Train(X, y, 2, seeded(1)))
	assert.Positive(t, calls)

	_, err = LookupLearner("does-not-exist")
	assert.ErrorIs(t, err, ErrUnknownLearner)
	assert.ErrorIs(t, RegisterLearner(LearnerFuncs{}), ErrUnknownLearner)
}
