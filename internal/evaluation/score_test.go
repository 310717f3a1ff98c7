package evaluation

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"randforest/internal/data"
	"randforest/internal/models"
)

func TestScoreSeparatedClusters(t *testing.T) {
	ds := data.Generate(data.GenerateOptions{Samples: 300, Classes: 3, Dims: 3, Spread: 0.3, Separation: 20, Seed: 4})
	train, test := ds.Split(0.2, rand.New(rand.NewPCG(4, 4)))

	rf := models.NewRandomForest()
	rf.NumTrees = 30
	rf.Seed = 9
	clf, err := Train(rf, train)
	require.NoError(t, err)

	res, err := Score(clf, test)
	require.NoError(t, err)
	assert.Greater(t, res.Accuracy, 0.9)
	assert.Less(t, res.LogLoss, 1.0)
	assert.Zero(t, res.Unseen)
	require.Len(t, res.Confusion, 3)

	total := 0
	for _, row := range res.Confusion {
		for _, v := range row {
			total += v
		}
	}
	assert.Equal(t, test.Len(), total)
}

func TestScoreCountsUnseenLabels(t *testing.T) {
	train := data.Dataset{X: [][]float64{{0}, {1}, {10}, {11}}, Labels: []string{"a", "a", "b", "b"}}
	rf := models.NewRandomForest()
	rf.NumTrees = 5
	rf.Seed = 1
	clf, err := Train(rf, train)
	require.NoError(t, err)

	res, err := Score(clf, data.Dataset{X: [][]float64{{0, 7}, {5}}, Labels: []string{"a", "z"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Unseen)
	assert.LessOrEqual(t, res.Accuracy, 0.5)
}
