package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"randforest/internal/classifier"
	"randforest/internal/config"
	"randforest/internal/data"
	"randforest/internal/evaluation"
	"randforest/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	configPath := flag.String("config", "", "YAML config file")
	dataPath := flag.String("data", "", "CSV (or NPY features) input; defaults to data.path")
	labelsPath := flag.String("labels", "", "NPY labels file; switches -data to NPY")
	regen := flag.Bool("regen", false, "Generate a synthetic cluster dataset at -data first")
	n := flag.Int("n", 0, "Synthetic rows")
	classes := flag.Int("classes", 0, "Synthetic classes")
	dims := flag.Int("dims", 0, "Synthetic feature dimensions")
	spread := flag.Float64("spread", 0, "Synthetic cluster standard deviation")
	trees := flag.Int("trees", 0, "Trees in the forest")
	maxDepth := flag.Int("max_depth", -1, "Maximum tree depth")
	tries := flag.Int("tries", 0, "Threshold candidates per split")
	minSamples := flag.Int("min_samples", -1, "Row count at which an adaptive node becomes a leaf")
	minEntropy := flag.Float64("min_entropy", -1, "Entropy below which an adaptive node becomes a leaf")
	growth := flag.String("growth", "", "Growth policy: adaptive|fixed")
	learner := flag.String("learner", "", "Weak learner: stump|projection")
	workers := flag.Int("workers", -1, "Parallel tree builders (0 = GOMAXPROCS)")
	seed := flag.Uint64("seed", 0, "Random seed (0 = random)")
	testFraction := flag.Float64("test_fraction", -1, "Share of rows held out for evaluation")
	out := flag.String("out", "", "Model output path; defaults to server.model_path")
	curve := flag.Bool("curve", false, "Write a learning curve (PNG and CSV)")
	curvePoints := flag.Int("curve_points", 8, "Points on the curve")
	curveMin := flag.Int("curve_min", 50, "Smallest training size on the curve")
	curveLog := flag.Bool("curve_log", true, "Space curve sizes geometrically")
	curveImg := flag.String("curve_out_img", "reports/learning_curve.png", "Curve PNG")
	curveCsv := flag.String("curve_out_csv", "reports/learning_curve.csv", "Curve CSV")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	override := func(name string, apply func()) {
		if set[name] {
			apply()
		}
	}
	override("data", func() { cfg.Data.Path = *dataPath })
	override("labels", func() { cfg.Data.Labels = *labelsPath })
	override("n", func() { cfg.Data.Samples = *n })
	override("classes", func() { cfg.Data.Classes = *classes })
	override("dims", func() { cfg.Data.Dims = *dims })
	override("spread", func() { cfg.Data.Spread = *spread })
	override("test_fraction", func() { cfg.Data.TestFraction = *testFraction })
	override("trees", func() { cfg.Forest.NumTrees = *trees })
	override("max_depth", func() { cfg.Forest.MaxDepth = *maxDepth })
	override("tries", func() { cfg.Forest.NumTries = *tries })
	override("min_samples", func() { cfg.Forest.MinSamples = *minSamples })
	override("min_entropy", func() { cfg.Forest.MinEntropy = *minEntropy })
	override("growth", func() { cfg.Forest.Growth = *growth })
	override("learner", func() { cfg.Forest.Learner = *learner })
	override("workers", func() { cfg.Forest.Workers = *workers })
	override("seed", func() { cfg.Forest.Seed = *seed })
	override("out", func() { cfg.Server.ModelPath = *out })
	if err := config.Validate(cfg); err != nil {
		logger.Fatal("Invalid flags", zap.Error(err))
	}

	if *regen {
		opts := data.GenerateOptions{
			Samples: cfg.Data.Samples,
			Classes: cfg.Data.Classes,
			Dims:    cfg.Data.Dims,
			Spread:  cfg.Data.Spread,
			Seed:    cfg.Forest.Seed,
		}
		logger.Info("Generating synthetic clusters", zap.Int("n", opts.Samples), zap.Int("classes", opts.Classes), zap.String("out", cfg.Data.Path))
		if err := data.GenerateClusters(opts, cfg.Data.Path); err != nil {
			logger.Fatal("Failed to generate dataset", zap.Error(err))
		}
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

	splitSeed := cfg.Forest.Seed
	if splitSeed == 0 {
		splitSeed = uint64(time.Now().UnixNano())
	}
	train, test := ds.Split(cfg.Data.TestFraction, rand.New(rand.NewPCG(splitSeed, 0)))
	_, labels := ds.Encode()
	logger.Info("Dataset loaded",
		zap.Int("rows", ds.Len()),
		zap.Int("features", ds.Width()),
		zap.Int("classes", len(labels)),
		zap.Int("train", train.Len()),
		zap.Int("test", test.Len()),
	)

	template, err := cfg.Forest.Forest()
	if err != nil {
		logger.Fatal("Invalid forest config", zap.Error(err))
	}
	clf, err := evaluation.Train(template, train, classifier.WithLogger(logger))
	if err != nil {
		logger.Fatal("Failed to train forest", zap.Error(err))
	}

	if test.Len() > 0 {
		res, err := evaluation.Score(clf, test)
		if err != nil {
			logger.Fatal("Failed to evaluate", zap.Error(err))
		}
		logger.Info("Holdout metrics",
			zap.Float64("accuracy", res.Accuracy),
			zap.Float64("log_loss", res.LogLoss),
			zap.Int("unseen_labels", res.Unseen),
		)
		printConfusion(res)
	}

	if err := clf.SaveFile(cfg.Server.ModelPath); err != nil {
		logger.Fatal("Failed to save model", zap.Error(err))
	}
	logger.Info("Model saved", zap.String("path", cfg.Server.ModelPath))

	if *curve && test.Len() > 0 {
		var pts []evaluation.CurvePoint
		for _, s := range evaluation.CurveSizes(train.Len(), *curvePoints, *curveMin, *curveLog) {
			sub := train.Head(s)
			cm, err := evaluation.Train(template, sub)
			if err != nil {
				logger.Fatal("Failed to train curve point", zap.Int("size", s), zap.Error(err))
			}
			trainRes, err := evaluation.Score(cm, sub)
			if err != nil {
				logger.Fatal("Failed to score curve point", zap.Error(err))
			}
			testRes, err := evaluation.Score(cm, test)
			if err != nil {
				logger.Fatal("Failed to score curve point", zap.Error(err))
			}
			pts = append(pts, evaluation.CurvePoint{
				X:            s,
				TrainAcc:     trainRes.Accuracy,
				TestAcc:      testRes.Accuracy,
				TrainLogLoss: trainRes.LogLoss,
				TestLogLoss:  testRes.LogLoss,
			})
			logger.Debug("Curve point", zap.Int("size", s), zap.Float64("test_acc", testRes.Accuracy))
		}
		if err := evaluation.WriteCurveCSV(*curveCsv, "size", pts); err != nil {
			logger.Warn("Failed to save curve CSV", zap.Error(err))
		}
		if err := evaluation.PlotCurve(*curveImg, "Learning curve", "Training rows", pts); err != nil {
			logger.Warn("Failed to save curve PNG", zap.Error(err))
		} else {
			logger.Info("Learning curve written", zap.String("png", *curveImg), zap.String("csv", *curveCsv))
		}
	}
}

func printConfusion(res evaluation.Result) {
	fmt.Printf("%-12s", "true\\pred")
	for _, c := range res.Classes {
		fmt.Printf("%10v", c)
	}
	fmt.Println()
	for i, row := range res.Confusion {
		fmt.Printf("%-12v", res.Classes[i])
		for _, v := range row {
			fmt.Printf("%10d", v)
		}
		fmt.Println()
	}
}
