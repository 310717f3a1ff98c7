package models

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

var (
	ErrEmptyDataset  = errors.New("empty training set")
	ErrLabelMismatch = errors.New("X and y length mismatch")
	ErrLabelRange    = errors.New("label out of range")
	ErrRaggedRows    = errors.New("rows differ in width")
	ErrDepth         = errors.New("invalid max depth")
)

// maxFixedDepth bounds the complete arena of the fixed-depth policy.
const maxFixedDepth = 24

type Growth int

const (
	// Adaptive grows depth first and stops on entropy, sample count or depth.
	Adaptive Growth = iota
	// FixedDepth grows a complete binary tree breadth first down to MaxDepth.
	FixedDepth
)

func (g Growth) String() string {
	switch g {
	case Adaptive:
		return "adaptive"
	case FixedDepth:
		return "fixed"
	default:
		return fmt.Sprintf("growth(%d)", int(g))
	}
}

func ParseGrowth(s string) (Growth, error) {
	switch strings.ToLower(s) {
	case "", "adaptive":
		return Adaptive, nil
	case "fixed", "fixed_depth":
		return FixedDepth, nil
	}
	return Adaptive, fmt.Errorf("unknown growth policy %q", s)
}

// Node is one record of a tree arena. Internal nodes hold a split and the
// arena indices of their children; leaves hold per-class training counts.
type Node struct {
	Split  *Split `json:"split,omitempty"`
	Left   int    `json:"left"`
	Right  int    `json:"right"`
	Leaf   bool   `json:"leaf,omitempty"`
	Counts []int  `json:"counts,omitempty"`
}

// Probabilities smooths the leaf counts with one pseudo-count per class.
func (n Node) Probabilities(numClasses int) []float64 {
	counts := n.Counts
	if len(counts) != numClasses {
		counts = make([]int, numClasses)
	}
	return smoothed(counts, numClasses)
}

func leaf(counts []int) Node {
	return Node{Left: -1, Right: -1, Leaf: true, Counts: counts}
}

type DecisionTree struct {
	MaxDepth    int
	NumTries    int
	MinSamples  int
	MinEntropy  float64
	Growth      Growth
	Learner     string
	NumClasses  int
	NumFeatures int
	Nodes       []Node

	learner WeakLearner
}

func NewDecisionTree() *DecisionTree {
	return &DecisionTree{MaxDepth: 4, NumTries: 10, MinSamples: 2, MinEntropy: 0.1, Growth: Adaptive, Learner: AxisStump{}.Name()}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

// Fit trains with the class count inferred from the largest label and a
// randomly seeded generator.
func (dt *DecisionTree) Fit(X [][]float64, y []int) error {
	return dt.Train(X, y, inferClasses(y), rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// Train replaces the tree's nodes with a tree grown on every row of X.
func (dt *DecisionTree) Train(X [][]float64, y []int, numClasses int, rng *rand.Rand) error {
	if err := validateTrainingSet(X, y, numClasses); err != nil {
		return err
	}
	learner, err := LookupLearner(dt.Learner)
	if err != nil {
		return err
	}
	if dt.MaxDepth < 0 || (dt.Growth == FixedDepth && dt.MaxDepth > maxFixedDepth) {
		return fmt.Errorf("%w: %d for %s growth", ErrDepth, dt.MaxDepth, dt.Growth)
	}
	cfg := growConfig{
		numClasses: numClasses,
		maxDepth:   dt.MaxDepth,
		numTries:   dt.NumTries,
		minSamples: dt.MinSamples,
		minEntropy: dt.MinEntropy,
		learner:    learner,
	}

	rows := make([]int, len(X))
	for i := range rows {
		rows[i] = i
	}
	var nodes []Node
	switch dt.Growth {
	case FixedDepth:
		nodes = growFixed(X, y, rows, cfg, rng)
	default:
		nodes = growAdaptive(X, y, rows, 0, cfg, rng)
	}

	dt.NumClasses = numClasses
	dt.NumFeatures = len(X[0])
	dt.Nodes = nodes
	dt.learner = learner
	return nil
}

type growConfig struct {
	numClasses int
	maxDepth   int
	numTries   int
	minSamples int
	minEntropy float64
	learner    WeakLearner
}

// splitRows trains the weak learner on ix and routes every row of ix. The two
// returned sets are disjoint, their union is ix and both keep ix's order.
func splitRows(X [][]float64, y []int, ix []int, cfg growConfig, rng *rand.Rand) (*Split, []int, []int, error) {
	split, err := cfg.learner.Train(X, y, ix, cfg.numClasses, cfg.numTries, rng)
	if err != nil {
		return nil, nil, nil, err
	}
	left := make([]int, 0, len(ix))
	right := make([]int, 0, len(ix))
	for _, i := range ix {
		if cfg.learner.Test(X[i], split) == Left {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return split, left, right, nil
}

// growFixed lays out a complete tree where node n has children 2n+1 and
// 2n+2. Leaves are the last 2^maxDepth slots and are tallied once all
// splitting is done.
func growFixed(X [][]float64, y []int, rows []int, cfg growConfig, rng *rand.Rand) []Node {
	numInternals := 1<<cfg.maxDepth - 1
	total := 1<<(cfg.maxDepth+1) - 1
	nodes := make([]Node, total)
	relevant := make([][]int, total)
	relevant[0] = rows

	for n := 0; n < numInternals; n++ {
		l, r := 2*n+1, 2*n+2
		nodes[n] = Node{Left: l, Right: r}
		ix := relevant[n]
		relevant[n] = nil
		switch len(ix) {
		case 0:
			continue
		case 1:
			relevant[l] = ix
			continue
		}
		split, left, right, err := splitRows(X, y, ix, cfg, rng)
		if err != nil {
			relevant[l] = ix
			continue
		}
		nodes[n].Split = split
		relevant[l], relevant[r] = left, right
	}
	for n := numInternals; n < total; n++ {
		nodes[n] = leaf(classCounts(y, relevant[n], cfg.numClasses))
	}
	return nodes
}

// growAdaptive returns the subtree for rows as an arena rooted at index 0.
func growAdaptive(X [][]float64, y []int, rows []int, depth int, cfg growConfig, rng *rand.Rand) []Node {
	counts := classCounts(y, rows, cfg.numClasses)
	h := entropy(counts, cfg.numClasses)
	if math.IsNaN(h) || math.IsInf(h, 0) ||
		len(rows) < 2 || len(rows) == cfg.minSamples ||
		h < cfg.minEntropy || depth >= cfg.maxDepth {
		return []Node{leaf(counts)}
	}
	split, left, right, err := splitRows(X, y, rows, cfg, rng)
	if err != nil {
		return []Node{leaf(counts)}
	}

	l := growAdaptive(X, y, left, depth+1, cfg, rng)
	r := growAdaptive(X, y, right, depth+1, cfg, rng)
	nodes := make([]Node, 0, 1+len(l)+len(r))
	nodes = append(nodes, Node{Split: split, Left: 1, Right: 1 + len(l)})
	nodes = appendShifted(nodes, l, 1)
	nodes = appendShifted(nodes, r, 1+len(l))
	return nodes
}

func appendShifted(dst, sub []Node, offset int) []Node {
	for _, n := range sub {
		if !n.Leaf {
			n.Left += offset
			n.Right += offset
		}
		dst = append(dst, n)
	}
	return dst
}

// leafFor descends from the root to the leaf reached by x.
func (dt *DecisionTree) leafFor(x []float64) int {
	learner := dt.learner
	if learner == nil {
		learner = AxisStump{}
	}
	n := 0
	for !dt.Nodes[n].Leaf {
		node := &dt.Nodes[n]
		if learner.Test(x, node.Split) == Left {
			n = node.Left
		} else {
			n = node.Right
		}
	}
	return n
}

// PredictOne returns the smoothed class distribution of the leaf reached by x.
func (dt *DecisionTree) PredictOne(x []float64) []float64 {
	if len(dt.Nodes) == 0 {
		return smoothed(make([]int, dt.NumClasses), dt.NumClasses)
	}
	return dt.Nodes[dt.leafFor(x)].Probabilities(dt.NumClasses)
}

func (dt *DecisionTree) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = dt.PredictOne(X[i])
	}
	return out
}

func (dt *DecisionTree) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range X {
		out[i] = argmax(dt.PredictOne(X[i]))
	}
	return out
}

// Depth is the length of the longest root-to-leaf path.
func (dt *DecisionTree) Depth() int {
	if len(dt.Nodes) == 0 {
		return 0
	}
	var walk func(n int) int
	walk = func(n int) int {
		if dt.Nodes[n].Leaf {
			return 0
		}
		return 1 + max(walk(dt.Nodes[n].Left), walk(dt.Nodes[n].Right))
	}
	return walk(0)
}

func (dt *DecisionTree) NumLeaves() int {
	c := 0
	for _, n := range dt.Nodes {
		if n.Leaf {
			c++
		}
	}
	return c
}

func validateTrainingSet(X [][]float64, y []int, numClasses int) error {
	if len(X) == 0 {
		return ErrEmptyDataset
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d rows, %d labels", ErrLabelMismatch, len(X), len(y))
	}
	if numClasses < 1 {
		return fmt.Errorf("%w: need at least one class, got %d", ErrLabelRange, numClasses)
	}
	d := len(X[0])
	if d == 0 {
		return fmt.Errorf("%w: rows have no features", ErrRaggedRows)
	}
	for i := range X {
		if len(X[i]) != d {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrRaggedRows, i, len(X[i]), d)
		}
		if y[i] < 0 || y[i] >= numClasses {
			return fmt.Errorf("%w: row %d has label %d, want [0,%d)", ErrLabelRange, i, y[i], numClasses)
		}
	}
	return nil
}

func inferClasses(y []int) int {
	k := 0
	for _, v := range y {
		if v+1 > k {
			k = v + 1
		}
	}
	return k
}
