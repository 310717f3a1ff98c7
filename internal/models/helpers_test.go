package models

import (
	"math/rand/v2"
)

// twoClusters is a small 2D set: class 0 around (0,1), class 1 around (2,2).
func twoClusters() ([][]float64, []int) {
	X := [][]float64{
		{-0.4326, 1.1909},
		{1.5, 3.0},
		{0.1253, -0.0376},
		{0.2877, 0.3273},
		{-1.1465, 0.1746},
		{1.8133, 2.1139},
		{2.7258, 3.0668},
		{1.4117, 2.0593},
		{4.1832, 1.9044},
		{1.8636, 1.1677},
	}
	y := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
	return X, y
}

var clusterCenters = [][]float64{
	{0, 0, 0},
	{5, 5, 0},
	{0, 5, 5},
}

// threeClusters draws perClass points around each center with unit-less
// spread 0.5.
func threeClusters(perClass int, seed uint64) ([][]float64, []int) {
	rng := rand.New(rand.NewPCG(seed, seed))
	var X [][]float64
	var y []int
	for c, center := range clusterCenters {
		for i := 0; i < perClass; i++ {
			row := make([]float64, len(center))
			for j := range row {
				row[j] = center[j] + 0.5*rng.NormFloat64()
			}
			X = append(X, row)
			y = append(y, c)
		}
	}
	return X, y
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func sum(p []float64) float64 {
	s := 0.0
	for _, v := range p {
		s += v
	}
	return s
}
