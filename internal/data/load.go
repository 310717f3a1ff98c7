package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sbinet/npyio"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"

	"randforest/internal/features"
)

func LoadCSV(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses every record and reports all bad rows at once. The header
// row is optional; the last column is the label.
func ReadCSV(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && features.IsHeader(rows[0]) {
		hdr := rows[0]
		rows = rows[1:]
		ds, err := parseRecords(rows, 2)
		ds.Names = hdr[:len(hdr)-1]
		return ds, err
	}
	return parseRecords(rows, 1)
}

func parseRecords(rows [][]string, firstLine int) (Dataset, error) {
	var ds Dataset
	var errs error
	for i, rec := range rows {
		vec, label, err := features.Parse(rec)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", i+firstLine, err))
			continue
		}
		ds.X = append(ds.X, vec)
		ds.Labels = append(ds.Labels, label)
	}
	if errs != nil {
		return ds, errs
	}
	if ds.Len() == 0 {
		return ds, ErrEmpty
	}
	return ds, nil
}

// LoadNPY reads an N×D float64 feature matrix and a float64 label array of
// N elements. Labels are formatted back to text so integral class ids stay
// readable.
func LoadNPY(featuresPath, labelsPath string) (Dataset, error) {
	m, err := readDense(featuresPath)
	if err != nil {
		return Dataset{}, err
	}
	labels, err := readFloats(labelsPath)
	if err != nil {
		return Dataset{}, err
	}
	r, c := m.Dims()
	if len(labels) != r {
		return Dataset{}, fmt.Errorf("%s has %d rows but %s has %d labels", featuresPath, r, labelsPath, len(labels))
	}

	ds := Dataset{Names: features.Names(c), X: make([][]float64, r), Labels: make([]string, r)}
	for i := 0; i < r; i++ {
		ds.X[i] = mat.Row(nil, i, m)
		ds.Labels[i] = strconv.FormatFloat(labels[i], 'g', -1, 64)
	}
	if r == 0 {
		return ds, ErrEmpty
	}
	return ds, nil
}

func readDense(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m := &mat.Dense{}
	if err := r.Read(m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func readFloats(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var out []float64
	if err := r.Read(&out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// SaveNPY writes the pair of files LoadNPY reads. Labels must be numeric.
func SaveNPY(ds Dataset, featuresPath, labelsPath string) error {
	if ds.Len() == 0 || ds.Width() == 0 {
		return ErrEmpty
	}
	m := mat.NewDense(ds.Len(), ds.Width(), nil)
	labels := make([]float64, ds.Len())
	for i, row := range ds.X {
		for j, v := range row {
			m.Set(i, j, v)
		}
		v, err := strconv.ParseFloat(ds.Labels[i], 64)
		if err != nil {
			return fmt.Errorf("row %d: label %q is not numeric", i, ds.Labels[i])
		}
		labels[i] = v
	}
	return multierr.Combine(writeNPY(featuresPath, m), writeNPY(labelsPath, labels))
}

func writeNPY(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))
	return npyio.Write(f, v)
}
