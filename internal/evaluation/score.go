package evaluation

import (
	"fmt"

	"randforest/internal/classifier"
	"randforest/internal/data"
	"randforest/internal/features"
	"randforest/internal/models"
)

// Train builds a classifier with template's configuration from every row of
// ds.
func Train(template *models.RandomForest, ds data.Dataset, opts ...classifier.Option) (*classifier.Classifier, error) {
	clf := classifier.New(template, opts...)
	for i, row := range ds.X {
		if err := clf.AddExample(row, ds.Labels[i]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	if err := clf.Train(); err != nil {
		return nil, err
	}
	return clf, nil
}

type Result struct {
	Accuracy  float64
	LogLoss   float64
	Confusion [][]int
	// Classes labels the rows and columns of Confusion.
	Classes []any
	Unseen  int
}

// Score classifies every row of ds. Rows are resized to the classifier's
// width; rows whose label the classifier never saw count as errors.
func Score(clf *classifier.Classifier, ds data.Dataset) (Result, error) {
	labels := clf.Labels()
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[fmt.Sprint(l)] = i
	}
	width := clf.Width()

	res := Result{Classes: labels}
	y := make([]int, ds.Len())
	pred := make([]int, ds.Len())
	proba := make([][]float64, ds.Len())
	for i, row := range ds.X {
		ranked, err := clf.Classifications(features.Resize(row, width))
		if err != nil {
			return Result{}, fmt.Errorf("row %d: %w", i, err)
		}
		p := make([]float64, len(labels))
		for _, c := range ranked {
			p[index[fmt.Sprint(c.Label)]] = c.Probability
		}
		proba[i] = p
		pred[i] = index[fmt.Sprint(ranked[0].Label)]
		k, ok := index[ds.Labels[i]]
		if !ok {
			k = -1
			res.Unseen++
		}
		y[i] = k
	}
	res.Accuracy = Accuracy(y, pred)
	res.LogLoss = LogLoss(y, proba)
	res.Confusion = Confusion(y, pred, len(labels))
	return res, nil
}
