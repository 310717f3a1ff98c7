package models

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
)

type Direction int

const (
	Left  Direction = 1
	Right Direction = -1
)

var (
	ErrTooFewRows     = errors.New("weak learner needs at least two relevant rows")
	ErrUnknownLearner = errors.New("unknown weak learner")
)

// Split is the decision boundary learned at one internal node: a row goes
// left when the weighted sum of its selected features is below Threshold.
type Split struct {
	Features  []int     `json:"features"`
	Weights   []float64 `json:"weights"`
	Threshold float64   `json:"threshold"`
}

func (s *Split) Project(x []float64) float64 {
	v := 0.0
	for k, f := range s.Features {
		v += s.Weights[k] * x[f]
	}
	return v
}

// WeakLearner searches a split for the rows in ix. Implementations must be
// stateless: all randomness comes from rng.
type WeakLearner interface {
	Name() string
	Train(X [][]float64, y []int, ix []int, numClasses, numTries int, rng *rand.Rand) (*Split, error)
	Test(x []float64, s *Split) Direction
}

// testSplit routes by projection. A nil split belongs to a node that never
// received data and sends everything left.
func testSplit(x []float64, s *Split) Direction {
	if s == nil {
		return Left
	}
	if s.Project(x) < s.Threshold {
		return Left
	}
	return Right
}

// AxisStump thresholds a single randomly chosen feature.
type AxisStump struct{}

func (AxisStump) Name() string { return "stump" }

func (AxisStump) Test(x []float64, s *Split) Direction { return testSplit(x, s) }

func (AxisStump) Train(X [][]float64, y []int, ix []int, numClasses, numTries int, rng *rand.Rand) (*Split, error) {
	if len(ix) < 2 {
		return nil, ErrTooFewRows
	}
	f := rng.IntN(len(X[ix[0]]))
	s := &Split{Features: []int{f}, Weights: []float64{1}}
	values := make([]float64, len(ix))
	for j, i := range ix {
		values[j] = X[i][f]
	}
	s.Threshold = bestThreshold(values, y, ix, numClasses, numTries, rng)
	return s, nil
}

// ProjectionStump thresholds the projection of two features onto a random
// unit direction.
type ProjectionStump struct{}

func (ProjectionStump) Name() string { return "projection" }

func (ProjectionStump) Test(x []float64, s *Split) Direction { return testSplit(x, s) }

func (ProjectionStump) Train(X [][]float64, y []int, ix []int, numClasses, numTries int, rng *rand.Rand) (*Split, error) {
	if len(ix) < 2 {
		return nil, ErrTooFewRows
	}
	if numTries < 1 {
		numTries = 1
	}
	d := len(X[ix[0]])
	f1, f2 := 0, 1
	switch {
	case d == 1:
		f2 = 0
	case d > 2:
		f1, f2 = distinctPair(d, rng)
	}

	parent := entropy(classCounts(y, ix, numClasses), numClasses)
	dots := make([]float64, len(ix))
	best := &Split{Features: []int{f1, f2}}
	bestGain := 0.0
	for t := 0; t < numTries; t++ {
		alpha := rng.Float64() * 2 * math.Pi
		w1, w2 := math.Cos(alpha), math.Sin(alpha)
		for j, i := range ix {
			dots[j] = w1*X[i][f1] + w2*X[i][f2]
		}
		thr := interpolate(dots, rng)
		left, right := partitionCounts(dots, thr, y, ix, numClasses)
		gain := informationGain(parent, left, right, numClasses)
		if t == 0 || gain > bestGain {
			bestGain = gain
			best.Weights = []float64{w1, w2}
			best.Threshold = thr
		}
	}
	return best, nil
}

// bestThreshold runs the random threshold search over precomputed values,
// values[j] belonging to row ix[j]. The first candidate is the baseline and is
// only replaced by a strictly better one.
func bestThreshold(values []float64, y []int, ix []int, numClasses, numTries int, rng *rand.Rand) float64 {
	if numTries < 1 {
		numTries = 1
	}
	parent := entropy(classCounts(y, ix, numClasses), numClasses)
	bestGain, bestThr := 0.0, 0.0
	for t := 0; t < numTries; t++ {
		thr := interpolate(values, rng)
		left, right := partitionCounts(values, thr, y, ix, numClasses)
		gain := informationGain(parent, left, right, numClasses)
		if t == 0 || gain > bestGain {
			bestGain = gain
			bestThr = thr
		}
	}
	return bestThr
}

// interpolate picks two distinct positions and returns a random point between
// their values.
func interpolate(values []float64, rng *rand.Rand) float64 {
	j1, j2 := distinctPair(len(values), rng)
	a := rng.Float64()
	return values[j1]*a + values[j2]*(1-a)
}

func distinctPair(n int, rng *rand.Rand) (int, int) {
	i := rng.IntN(n)
	j := rng.IntN(n - 1)
	if j >= i {
		j++
	}
	return i, j
}

// LearnerFuncs adapts a train/test function pair to WeakLearner.
type LearnerFuncs struct {
	ID        string
	TrainFunc func(X [][]float64, y []int, ix []int, numClasses, numTries int, rng *rand.Rand) (*Split, error)
	TestFunc  func(x []float64, s *Split) Direction
}

func (l LearnerFuncs) Name() string { return l.ID }

func (l LearnerFuncs) Train(X [][]float64, y []int, ix []int, numClasses, numTries int, rng *rand.Rand) (*Split, error) {
	if l.TrainFunc == nil {
		return nil, fmt.Errorf("learner %q has no train function", l.ID)
	}
	return l.TrainFunc(X, y, ix, numClasses, numTries, rng)
}

func (l LearnerFuncs) Test(x []float64, s *Split) Direction {
	if s == nil {
		return Left
	}
	if l.TestFunc == nil {
		return testSplit(x, s)
	}
	return l.TestFunc(x, s)
}

var (
	learnersMu sync.RWMutex
	learners   = map[string]WeakLearner{
		AxisStump{}.Name():       AxisStump{},
		ProjectionStump{}.Name(): ProjectionStump{},
	}
)

// RegisterLearner makes l available by name to forests and snapshots.
func RegisterLearner(l WeakLearner) error {
	if l == nil || l.Name() == "" {
		return fmt.Errorf("%w: learner must have a name", ErrUnknownLearner)
	}
	learnersMu.Lock()
	defer learnersMu.Unlock()
	learners[l.Name()] = l
	return nil
}

func LookupLearner(name string) (WeakLearner, error) {
	learnersMu.RLock()
	defer learnersMu.RUnlock()
	l, ok := learners[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLearner, name)
	}
	return l, nil
}
