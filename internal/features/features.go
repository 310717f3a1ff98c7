package features

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const LabelColumn = "label"

var ErrNoLabel = errors.New("record has no label")

// Names returns the default column names f0..f{d-1}.
func Names(d int) []string {
	names := make([]string, d)
	for i := range names {
		names[i] = "f" + strconv.Itoa(i)
	}
	return names
}

// Parse turns a CSV record into a feature vector and its label, the label
// being the last column.
func Parse(record []string) ([]float64, string, error) {
	if len(record) < 2 {
		return nil, "", fmt.Errorf("%w: %d columns", ErrNoLabel, len(record))
	}
	label := strings.TrimSpace(record[len(record)-1])
	if label == "" {
		return nil, "", ErrNoLabel
	}
	vec := make([]float64, len(record)-1)
	for i, s := range record[:len(record)-1] {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, "", fmt.Errorf("column %d: %w", i, err)
		}
		vec[i] = v
	}
	return vec, label, nil
}

// IsHeader reports whether the feature columns of record are not numeric.
func IsHeader(record []string) bool {
	if len(record) < 2 {
		return false
	}
	for _, s := range record[:len(record)-1] {
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return true
		}
	}
	return false
}

func Format(vec []float64, label string) []string {
	rec := make([]string, 0, len(vec)+1)
	for _, v := range vec {
		rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return append(rec, label)
}

// Resize zero-pads or truncates vec to width.
func Resize(vec []float64, width int) []float64 {
	out := make([]float64, width)
	copy(out, vec)
	return out
}
