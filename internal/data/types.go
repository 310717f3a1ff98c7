package data

import (
	"errors"
	"math/rand/v2"
	"slices"
)

var ErrEmpty = errors.New("dataset has no rows")

// Dataset is a labeled feature matrix as read from disk. Labels keep their
// textual form; Encode maps them to class indices.
type Dataset struct {
	Names  []string
	X      [][]float64
	Labels []string
}

func (d Dataset) Len() int { return len(d.X) }

// Width is the widest row.
func (d Dataset) Width() int {
	w := 0
	for _, r := range d.X {
		w = max(w, len(r))
	}
	return w
}

// Encode assigns dense indices to labels in order of first appearance.
func (d Dataset) Encode() (y []int, classes []string) {
	index := map[string]int{}
	y = make([]int, len(d.Labels))
	for i, l := range d.Labels {
		k, ok := index[l]
		if !ok {
			k = len(classes)
			index[l] = k
			classes = append(classes, l)
		}
		y[i] = k
	}
	return y, classes
}

// Split shuffles the rows and holds out testFraction of them.
func (d Dataset) Split(testFraction float64, rng *rand.Rand) (train, test Dataset) {
	idx := rng.Perm(d.Len())
	nTest := int(testFraction * float64(d.Len()))
	pick := func(ix []int) Dataset {
		out := Dataset{Names: slices.Clone(d.Names), X: make([][]float64, len(ix)), Labels: make([]string, len(ix))}
		for i, j := range ix {
			out.X[i] = d.X[j]
			out.Labels[i] = d.Labels[j]
		}
		return out
	}
	return pick(idx[nTest:]), pick(idx[:nTest])
}

// Head returns the first n rows, or all of them when n is larger.
func (d Dataset) Head(n int) Dataset {
	n = min(n, d.Len())
	return Dataset{Names: d.Names, X: d.X[:n], Labels: d.Labels[:n]}
}
