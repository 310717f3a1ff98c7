package models

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainedForest(t *testing.T, growth Growth, learner string) *RandomForest {
	t.Helper()
	X, y := threeClusters(10, 21)
	rf := NewRandomForest()
	rf.NumTrees = 12
	rf.Growth = growth
	rf.Learner = learner
	rf.Seed = 3
	require.NoError(t, rf.Train(X, y, 3))
	return rf
}

func TestSnapshotGobRoundTrip(t *testing.T) {
	for _, s := range setups {
		rf := trainedForest(t, s.growth, s.learner)
		var buf bytes.Buffer
		require.NoError(t, rf.Save(&buf))

		restored, err := LoadForest(&buf)
		require.NoError(t, err, s.String())
		X, _ := threeClusters(5, 99)
		assert.Equal(t, rf.PredictProba(X), restored.PredictProba(X), s.String())
		assert.Equal(t, rf.Growth, restored.Growth)
		assert.Equal(t, rf.Learner, restored.Learner)
	}
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	rf := trainedForest(t, FixedDepth, "projection")
	b, err := json.Marshal(rf)
	require.NoError(t, err)

	restored, err := UnmarshalForestJSON(b)
	require.NoError(t, err)
	X, _ := threeClusters(5, 98)
	assert.Equal(t, rf.Predict(X), restored.Predict(X))
	assert.Equal(t, rf.Snapshot(), restored.Snapshot())
}

func TestSnapshotRejectsCorruptArenas(t *testing.T) {
	good := trainedForest(t, Adaptive, "stump").Snapshot()

	clone := func() Snapshot {
		b, err := json.Marshal(good)
		require.NoError(t, err)
		var s Snapshot
		require.NoError(t, json.Unmarshal(b, &s))
		return s
	}

	cases := map[string]func(s *Snapshot){
		"version":       func(s *Snapshot) { s.Version = 99 },
		"growth":        func(s *Snapshot) { s.Growth = "sideways" },
		"learner":       func(s *Snapshot) { s.Learner = "unregistered" },
		"classes":       func(s *Snapshot) { s.NumClasses = 0 },
		"empty tree":    func(s *Snapshot) { s.Trees[0].Nodes = nil },
		"self child":    func(s *Snapshot) { s.Trees[0].Nodes[0] = Node{Left: 0, Right: 0} },
		"child outside": func(s *Snapshot) { s.Trees[0].Nodes[0] = Node{Left: 1, Right: 10000} },
		"leaf counts": func(s *Snapshot) {
			s.Trees[0].Nodes = []Node{{Leaf: true, Counts: []int{1, 2}}}
		},
		"negative count": func(s *Snapshot) {
			s.Trees[0].Nodes = []Node{{Leaf: true, Counts: []int{1, -2, 0}}}
		},
		"feature range": func(s *Snapshot) {
			s.Trees[0].Nodes = []Node{
				{Split: &Split{Features: []int{7}, Weights: []float64{1}}, Left: 1, Right: 2},
				{Leaf: true, Counts: []int{1, 0, 0}},
				{Leaf: true, Counts: []int{0, 1, 0}},
			}
		},
	}
	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			s := clone()
			corrupt(&s)
			_, err := ForestFromSnapshot(s)
			assert.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}

	_, err := ForestFromSnapshot(clone())
	assert.NoError(t, err)
}

func TestLoadForestRejectsGarbage(t *testing.T) {
	_, err := LoadForest(bytes.NewReader([]byte("not a forest")))
	assert.Error(t, err)
	_, err = UnmarshalForestJSON([]byte(`{"version":1,"growth":"adaptive","learner":"stump","num_classes":2,"num_features":2,"trees":[{"nodes":[{"Left":5,"Right":6}]}]}`))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}
