package models

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

const snapshotVersion = 1

var ErrInvalidSnapshot = errors.New("invalid forest snapshot")

// Snapshot is the flat persisted form of a forest: the training
// configuration plus every tree as an arena of node records.
type Snapshot struct {
	Version     int            `json:"version"`
	NumTrees    int            `json:"num_trees"`
	MaxDepth    int            `json:"max_depth"`
	NumTries    int            `json:"num_tries"`
	MinSamples  int            `json:"min_samples"`
	MinEntropy  float64        `json:"min_entropy"`
	Growth      string         `json:"growth"`
	Learner     string         `json:"learner"`
	Seed        uint64         `json:"seed,omitempty"`
	NumClasses  int            `json:"num_classes"`
	NumFeatures int            `json:"num_features"`
	Trees       []TreeSnapshot `json:"trees"`
}

type TreeSnapshot struct {
	Nodes []Node `json:"nodes"`
}

func (rf *RandomForest) Snapshot() Snapshot {
	s := Snapshot{
		Version:     snapshotVersion,
		NumTrees:    rf.NumTrees,
		MaxDepth:    rf.MaxDepth,
		NumTries:    rf.NumTries,
		MinSamples:  rf.MinSamples,
		MinEntropy:  rf.MinEntropy,
		Growth:      rf.Growth.String(),
		Learner:     rf.Learner,
		Seed:        rf.Seed,
		NumClasses:  rf.NumClasses,
		NumFeatures: rf.NumFeatures,
		Trees:       make([]TreeSnapshot, len(rf.Trees)),
	}
	for i, dt := range rf.Trees {
		s.Trees[i] = TreeSnapshot{Nodes: dt.Nodes}
	}
	return s
}

// ForestFromSnapshot rebuilds a forest from its persisted arenas. Every node
// is checked so that prediction on the result always terminates at a leaf.
func ForestFromSnapshot(s Snapshot) (*RandomForest, error) {
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrInvalidSnapshot, s.Version, snapshotVersion)
	}
	growth, err := ParseGrowth(s.Growth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	learner, err := LookupLearner(s.Learner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if len(s.Trees) > 0 && (s.NumClasses < 1 || s.NumFeatures < 1) {
		return nil, fmt.Errorf("%w: %d classes, %d features", ErrInvalidSnapshot, s.NumClasses, s.NumFeatures)
	}

	rf := &RandomForest{
		NumTrees:    s.NumTrees,
		MaxDepth:    s.MaxDepth,
		NumTries:    s.NumTries,
		MinSamples:  s.MinSamples,
		MinEntropy:  s.MinEntropy,
		Growth:      growth,
		Learner:     s.Learner,
		Seed:        s.Seed,
		NumClasses:  s.NumClasses,
		NumFeatures: s.NumFeatures,
		Trees:       make([]*DecisionTree, len(s.Trees)),
	}
	for t, ts := range s.Trees {
		if err := validateArena(ts.Nodes, s.NumClasses, s.NumFeatures); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrInvalidSnapshot, t, err)
		}
		rf.Trees[t] = &DecisionTree{
			MaxDepth:    s.MaxDepth,
			NumTries:    s.NumTries,
			MinSamples:  s.MinSamples,
			MinEntropy:  s.MinEntropy,
			Growth:      growth,
			Learner:     s.Learner,
			NumClasses:  s.NumClasses,
			NumFeatures: s.NumFeatures,
			Nodes:       ts.Nodes,
			learner:     learner,
		}
	}
	return rf, nil
}

// validateArena requires children to live after their parent, which rules
// out cycles.
func validateArena(nodes []Node, numClasses, numFeatures int) error {
	if len(nodes) == 0 {
		return errors.New("no nodes")
	}
	for i, n := range nodes {
		if n.Leaf {
			if len(n.Counts) != numClasses {
				return fmt.Errorf("leaf %d has %d counts, want %d", i, len(n.Counts), numClasses)
			}
			for _, c := range n.Counts {
				if c < 0 {
					return fmt.Errorf("leaf %d has a negative count", i)
				}
			}
			continue
		}
		if n.Left <= i || n.Left >= len(nodes) || n.Right <= i || n.Right >= len(nodes) {
			return fmt.Errorf("node %d has children %d/%d outside (%d,%d)", i, n.Left, n.Right, i, len(nodes))
		}
		if n.Split == nil {
			continue
		}
		if len(n.Split.Features) != len(n.Split.Weights) {
			return fmt.Errorf("node %d split has %d features and %d weights", i, len(n.Split.Features), len(n.Split.Weights))
		}
		for _, f := range n.Split.Features {
			if f < 0 || f >= numFeatures {
				return fmt.Errorf("node %d splits on feature %d of %d", i, f, numFeatures)
			}
		}
	}
	return nil
}

func (rf *RandomForest) Save(w io.Writer) error {
	return gob.NewEncoder(w).Encode(rf.Snapshot())
}

func LoadForest(r io.Reader) (*RandomForest, error) {
	var s Snapshot
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode forest: %w", err)
	}
	return ForestFromSnapshot(s)
}

func (rf *RandomForest) MarshalJSON() ([]byte, error) {
	return json.Marshal(rf.Snapshot())
}

func UnmarshalForestJSON(b []byte) (*RandomForest, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode forest: %w", err)
	}
	return ForestFromSnapshot(s)
}
