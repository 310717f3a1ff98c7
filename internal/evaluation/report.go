package evaluation

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// CurvePoint is one x position of a learning or ensemble-size curve.
type CurvePoint struct {
	X            int
	TrainAcc     float64
	TestAcc      float64
	TrainLogLoss float64
	TestLogLoss  float64
}

func WriteCurveCSV(path, xName string, pts []CurvePoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{xName, "train_acc", "test_acc", "train_logloss", "test_logloss"}); err != nil {
		return err
	}
	for _, p := range pts {
		rec := []string{strconv.Itoa(p.X),
			fmt.Sprintf("%.6f", p.TrainAcc), fmt.Sprintf("%.6f", p.TestAcc),
			fmt.Sprintf("%.6f", p.TrainLogLoss), fmt.Sprintf("%.6f", p.TestLogLoss),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// PlotCurve draws train and test accuracy against X.
func PlotCurve(path, title, xLabel string, pts []CurvePoint) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Accuracy"
	p.Y.Min = 0
	p.Y.Max = 1

	train := make(plotter.XYs, len(pts))
	test := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		train[i].X, train[i].Y = float64(pt.X), pt.TrainAcc
		test[i].X, test[i].Y = float64(pt.X), pt.TestAcc
	}
	if err := plotutil.AddLinePoints(p, "Train", train, "Test", test); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
