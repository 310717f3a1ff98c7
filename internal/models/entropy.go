package models

import (
	"gonum.org/v1/gonum/stat"
)

func classCounts(y []int, ix []int, numClasses int) []int {
	counts := make([]int, numClasses)
	for _, i := range ix {
		counts[y[i]]++
	}
	return counts
}

// smoothed applies add-one smoothing over all classes, so an empty
// partition yields the uniform distribution.
func smoothed(counts []int, numClasses int) []float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	p := make([]float64, numClasses)
	den := float64(total + numClasses)
	for c := range p {
		p[c] = float64(counts[c]+1) / den
	}
	return p
}

// entropy is the natural-log entropy of the smoothed class distribution.
func entropy(counts []int, numClasses int) float64 {
	if numClasses == 0 {
		return 0
	}
	return stat.Entropy(smoothed(counts, numClasses))
}

// partitionCounts tallies classes on both sides of thr; row ix[j] goes left
// iff values[j] < thr.
func partitionCounts(values []float64, thr float64, y []int, ix []int, numClasses int) (left, right []int) {
	left = make([]int, numClasses)
	right = make([]int, numClasses)
	for j, i := range ix {
		if values[j] < thr {
			left[y[i]]++
		} else {
			right[y[i]]++
		}
	}
	return left, right
}

// informationGain compares the parent entropy with the unweighted sum of the
// child entropies.
func informationGain(parent float64, left, right []int, numClasses int) float64 {
	return parent - (entropy(left, numClasses) + entropy(right, numClasses))
}
