package models

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

var ErrNotTrained = errors.New("forest is not trained")

type RandomForest struct {
	NumTrees    int
	MaxDepth    int
	NumTries    int
	MinSamples  int
	MinEntropy  float64
	Growth      Growth
	Learner     string
	Workers     int
	Seed        uint64
	NumClasses  int
	NumFeatures int
	Trees       []*DecisionTree
}

func NewRandomForest() *RandomForest {
	return &RandomForest{
		NumTrees:   100,
		MaxDepth:   4,
		NumTries:   10,
		MinSamples: 2,
		MinEntropy: 0.1,
		Growth:     Adaptive,
		Learner:    AxisStump{}.Name(),
		Trees:      []*DecisionTree{},
	}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

// Clone copies the configuration without any trained trees.
func (rf *RandomForest) Clone() *RandomForest {
	c := *rf
	c.NumClasses, c.NumFeatures = 0, 0
	c.Trees = []*DecisionTree{}
	return &c
}

func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	return rf.Train(X, y, inferClasses(y))
}

// Train grows NumTrees trees on the full training set. Tree i draws from its
// own generator seeded with (Seed, i), so a fixed Seed reproduces the forest
// whatever the scheduling. The trained trees replace the previous ones only
// when every tree succeeded. A non-positive NumTrees trains 100 trees.
func (rf *RandomForest) Train(X [][]float64, y []int, numClasses int) error {
	numTrees := rf.NumTrees
	if numTrees <= 0 {
		numTrees = 100
	}
	if err := validateTrainingSet(X, y, numClasses); err != nil {
		return err
	}
	seed := rf.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	workers := rf.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trees := make([]*DecisionTree, numTrees)
	errs := make([]error, numTrees)
	var g errgroup.Group
	g.SetLimit(workers)
	for k := range trees {
		g.Go(func() error {
			dt := &DecisionTree{
				MaxDepth:   rf.MaxDepth,
				NumTries:   rf.NumTries,
				MinSamples: rf.MinSamples,
				MinEntropy: rf.MinEntropy,
				Growth:     rf.Growth,
				Learner:    rf.Learner,
			}
			rng := rand.New(rand.NewPCG(seed, uint64(k)))
			if err := dt.Train(X, y, numClasses, rng); err != nil {
				errs[k] = fmt.Errorf("tree %d: %w", k, err)
				return errs[k]
			}
			trees[k] = dt
			return nil
		})
	}
	if g.Wait() != nil {
		return multierr.Combine(errs...)
	}

	rf.Trees = trees
	rf.NumClasses = numClasses
	rf.NumFeatures = len(X[0])
	return nil
}

// PredictOne averages the per-tree class distributions.
func (rf *RandomForest) PredictOne(x []float64) []float64 {
	dec := make([]float64, rf.NumClasses)
	if len(rf.Trees) == 0 {
		return dec
	}
	for _, dt := range rf.Trees {
		floats.Add(dec, dt.PredictOne(x))
	}
	floats.Scale(1/float64(len(rf.Trees)), dec)
	return dec
}

func (rf *RandomForest) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = rf.PredictOne(X[i])
	}
	return out
}

func (rf *RandomForest) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range X {
		out[i] = argmax(rf.PredictOne(X[i]))
	}
	return out
}

func (rf *RandomForest) Trained() bool { return len(rf.Trees) > 0 }

func argmax(p []float64) int {
	if len(p) == 0 {
		return -1
	}
	return floats.MaxIdx(p)
}
