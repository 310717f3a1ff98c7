package data

import (
	"encoding/csv"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"randforest/internal/features"
)

type GenerateOptions struct {
	Samples int
	Classes int
	Dims    int
	// Spread is the standard deviation around each class center.
	Spread float64
	// Separation is the side of the cube the class centers are drawn from.
	Separation float64
	Seed       uint64
}

func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{Samples: 3000, Classes: 3, Dims: 3, Spread: 1, Separation: 10}
}

// Generate draws Gaussian clusters, one per class, with classes assigned
// round-robin so every class gets Samples/Classes rows.
func Generate(opts GenerateOptions) Dataset {
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	if opts.Classes < 1 {
		opts.Classes = 1
	}
	if opts.Dims < 1 {
		opts.Dims = 1
	}
	if opts.Separation <= 0 {
		opts.Separation = 10
	}

	centers := make([][]float64, opts.Classes)
	for c := range centers {
		centers[c] = make([]float64, opts.Dims)
		for j := range centers[c] {
			centers[c][j] = rng.Float64() * opts.Separation
		}
	}

	ds := Dataset{
		Names:  features.Names(opts.Dims),
		X:      make([][]float64, opts.Samples),
		Labels: make([]string, opts.Samples),
	}
	for i := 0; i < opts.Samples; i++ {
		c := i % opts.Classes
		row := make([]float64, opts.Dims)
		for j := range row {
			row[j] = centers[c][j] + opts.Spread*rng.NormFloat64()
		}
		ds.X[i] = row
		ds.Labels[i] = strconv.Itoa(c)
	}
	return ds
}

func GenerateClusters(opts GenerateOptions, outPath string) error {
	return WriteCSV(Generate(opts), outPath)
}

// WriteCSV writes a header of feature names plus "label", then one record
// per row.
func WriteCSV(ds Dataset, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := ds.Names
	if len(names) != ds.Width() {
		names = features.Names(ds.Width())
	}
	if err := w.Write(append(append([]string{}, names...), features.LabelColumn)); err != nil {
		return err
	}
	for i, row := range ds.X {
		if err := w.Write(features.Format(row, ds.Labels[i])); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
