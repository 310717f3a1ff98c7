package evaluation

import (
	"math"
)

func Accuracy(y, p []int) float64 {
	if len(y) == 0 {
		return 0
	}
	c := 0
	for i := range y {
		if y[i] == p[i] {
			c++
		}
	}
	return float64(c) / float64(len(y))
}

const logLossEps = 1e-15

// LogLoss is the mean negative log probability given to the true class.
func LogLoss(y []int, proba [][]float64) float64 {
	if len(y) == 0 {
		return 0
	}
	s := 0.0
	for i := range y {
		p := 0.0
		if y[i] >= 0 && y[i] < len(proba[i]) {
			p = proba[i][y[i]]
		}
		s -= math.Log(math.Max(p, logLossEps))
	}
	return s / float64(len(y))
}

// Confusion counts rows by (true class, predicted class).
func Confusion(y, p []int, numClasses int) [][]int {
	m := make([][]int, numClasses)
	for i := range m {
		m[i] = make([]int, numClasses)
	}
	for i := range y {
		if y[i] < 0 || y[i] >= numClasses || p[i] < 0 || p[i] >= numClasses {
			continue
		}
		m[y[i]][p[i]]++
	}
	return m
}

// CurveSizes picks training-set sizes between min and total, evenly or
// geometrically spaced, strictly increasing and ending at total.
func CurveSizes(total, points, min int, useLog bool) []int {
	if total <= 0 {
		return nil
	}
	if points <= 1 {
		points = 2
	}
	if min < 10 {
		min = 10
	}
	if min > total {
		min = int(math.Max(1, float64(total)/2))
	}
	sizes := make([]int, 0, points)
	if useLog {
		ratio := math.Pow(float64(total)/float64(min), 1.0/float64(points-1))
		for i := 0; i < points; i++ {
			sizes = append(sizes, int(math.Round(float64(min)*math.Pow(ratio, float64(i)))))
		}
	} else {
		step := float64(total-min) / float64(points-1)
		for i := 0; i < points; i++ {
			sizes = append(sizes, int(math.Round(float64(min)+float64(i)*step)))
		}
	}
	cleaned := make([]int, 0, len(sizes))
	last := 0
	for _, s := range sizes {
		if s <= last {
			s = last + 1
		}
		if s > total {
			s = total
		}
		if s != last {
			cleaned = append(cleaned, s)
			last = s
		}
	}
	cleaned[len(cleaned)-1] = total
	return cleaned
}
