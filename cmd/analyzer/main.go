package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"randforest/internal/config"
	"randforest/internal/data"
	"randforest/internal/evaluation"
	"randforest/internal/features"
	"randforest/internal/models"
	"randforest/internal/render"
	"randforest/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	configPath := flag.String("config", "", "YAML config file")
	dataPath := flag.String("data", "", "CSV (or NPY features) input; defaults to data.path")
	labelsPath := flag.String("labels", "", "NPY labels file")
	runs := flag.Int("runs", 100, "Retrains for the stability report")
	probes := flag.Int("probes", 5, "Held-out rows probed in every retrain")
	trees := flag.Int("trees", 0, "Trees per retrain (0 = config)")
	treeCounts := flag.String("tree_counts", "1,2,5,10,25,50,100", "Forest sizes for the accuracy curve")
	seed := flag.Uint64("seed", 1, "Base seed; run i uses seed+i")
	outImg := flag.String("out_img", "reports/accuracy_vs_trees.png", "Accuracy curve PNG")
	outCsv := flag.String("out_csv", "reports/accuracy_vs_trees.csv", "Accuracy curve CSV")
	renderPath := flag.String("render", "", "Render the first tree of the final forest (.svg, .png, .jpg or .dot)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	if *labelsPath != "" {
		cfg.Data.Labels = *labelsPath
	}
	var ds data.Dataset
	if cfg.Data.Labels != "" {
		ds, err = data.LoadNPY(cfg.Data.Path, cfg.Data.Labels)
	} else {
		ds, err = data.LoadCSV(cfg.Data.Path)
	}
	if err != nil {
		logger.Fatal("Failed to load dataset", zap.String("path", cfg.Data.Path), zap.Error(err))
	}
	train, test := ds.Split(cfg.Data.TestFraction, rand.New(rand.NewPCG(*seed, 0)))
	if test.Len() == 0 {
		logger.Fatal("No held-out rows; raise data.test_fraction")
	}

	template, err := cfg.Forest.Forest()
	if err != nil {
		logger.Fatal("Invalid forest config", zap.Error(err))
	}
	if *trees > 0 {
		template.NumTrees = *trees
	}

	probeSet := test.Head(*probes)
	hits := make([]int, probeSet.Len())
	for run := 0; run < *runs; run++ {
		rf := template.Clone()
		rf.Seed = *seed + uint64(run)
		clf, err := evaluation.Train(rf, train)
		if err != nil {
			logger.Fatal("Retrain failed", zap.Int("run", run), zap.Error(err))
		}
		for i, row := range probeSet.X {
			label, err := clf.Classify(features.Resize(row, clf.Width()))
			if err != nil {
				logger.Fatal("Classification failed", zap.Error(err))
			}
			if fmt.Sprint(label) == probeSet.Labels[i] {
				hits[i]++
			}
		}
	}
	fmt.Printf("Stability over %d retrains (%s growth, %s learner, %d trees)\n", *runs, template.Growth, template.Learner, template.NumTrees)
	for i, row := range probeSet.X {
		fmt.Printf("  probe %d %v expected=%s hits=%d/%d\n", i, row, probeSet.Labels[i], hits[i], *runs)
	}

	counts, err := parseCounts(*treeCounts)
	if err != nil {
		logger.Fatal("Invalid -tree_counts", zap.Error(err))
	}
	var pts []evaluation.CurvePoint
	var last *models.RandomForest
	for _, n := range counts {
		rf := template.Clone()
		rf.NumTrees = n
		rf.Seed = *seed
		clf, err := evaluation.Train(rf, train)
		if err != nil {
			logger.Fatal("Training failed", zap.Int("trees", n), zap.Error(err))
		}
		trainRes, err := evaluation.Score(clf, train)
		if err != nil {
			logger.Fatal("Scoring failed", zap.Error(err))
		}
		testRes, err := evaluation.Score(clf, test)
		if err != nil {
			logger.Fatal("Scoring failed", zap.Error(err))
		}
		pts = append(pts, evaluation.CurvePoint{
			X:            n,
			TrainAcc:     trainRes.Accuracy,
			TestAcc:      testRes.Accuracy,
			TrainLogLoss: trainRes.LogLoss,
			TestLogLoss:  testRes.LogLoss,
		})
		fmt.Printf("trees=%d | train=%.3f | test=%.3f | test_logloss=%.3f\n", n, trainRes.Accuracy, testRes.Accuracy, testRes.LogLoss)
		last, _ = clf.Forest()
	}

	if err := evaluation.WriteCurveCSV(*outCsv, "trees", pts); err != nil {
		logger.Warn("Failed to save CSV", zap.Error(err))
	} else {
		fmt.Println("Curve saved to:", *outCsv)
	}
	if err := evaluation.PlotCurve(*outImg, "Accuracy vs forest size", "Trees", pts); err != nil {
		logger.Warn("Failed to save PNG", zap.Error(err))
	} else {
		fmt.Println("Plot saved to:", *outImg)
	}

	if *renderPath != "" && last != nil {
		_, classes := train.Encode()
		labels := render.Labels{Features: ds.Names, Classes: classes}
		if err := render.RenderFile(last.Trees[0], labels, *renderPath); err != nil {
			logger.Warn("Failed to render tree", zap.Error(err))
		} else {
			fmt.Println("Tree rendered to:", *renderPath)
		}
	}
}

func parseCounts(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, fmt.Errorf("forest size %d", n)
		}
		out = append(out, n)
	}
	return out, nil
}
