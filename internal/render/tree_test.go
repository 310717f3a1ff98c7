package render

import (
	"bytes"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-graphviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"randforest/internal/models"
)

func smallTree(t *testing.T, growth models.Growth) *models.DecisionTree {
	t.Helper()
	X := [][]float64{{0, 0}, {0, 1}, {1, 0}, {5, 5}, {5, 6}, {6, 5}}
	y := []int{0, 0, 0, 1, 1, 1}
	dt := models.NewDecisionTree()
	dt.Growth = growth
	dt.MaxDepth = 2
	dt.MinEntropy = 0
	require.NoError(t, dt.Train(X, y, 2, rand.New(rand.NewPCG(1, 2))))
	return dt
}

func TestRenderSVG(t *testing.T) {
	for _, g := range []models.Growth{models.Adaptive, models.FixedDepth} {
		var buf bytes.Buffer
		labels := Labels{Features: []string{"width", "height"}, Classes: []string{"small", "large"}}
		require.NoError(t, Render(smallTree(t, g), labels, graphviz.SVG, &buf))
		assert.Contains(t, buf.String(), "<svg")
		assert.Contains(t, buf.String(), "small")
	}
}

func TestRenderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trees", "tree.svg")
	require.NoError(t, RenderFile(smallTree(t, models.Adaptive), Labels{}, path))
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, st.Size())

	assert.Error(t, RenderFile(smallTree(t, models.Adaptive), Labels{}, "tree.bmp"))
	_, _, err = DrawTree(models.NewDecisionTree(), Labels{})
	assert.ErrorIs(t, err, models.ErrNotTrained)
}

func TestCaptions(t *testing.T) {
	l := Labels{Features: []string{"a"}}
	assert.Equal(t, "a < 1.5", splitCaption(&models.Split{Features: []int{0}, Weights: []float64{1}, Threshold: 1.5}, l))
	assert.Equal(t, "0.6*a + 0.8*f1 < 2", splitCaption(&models.Split{Features: []int{0, 1}, Weights: []float64{0.6, 0.8}, Threshold: 2}, l))
	assert.Equal(t, "no data", splitCaption(nil, l))
	assert.Equal(t, `0: 3 (0.80)\n1: 0 (0.20)`, leafCaption(models.Node{Leaf: true, Counts: []int{3, 0}}, 2, Labels{}))
}
