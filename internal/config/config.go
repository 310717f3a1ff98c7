package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"randforest/internal/models"
)

type Config struct {
	Forest ForestConfig `yaml:"forest"`
	Data   DataConfig   `yaml:"data"`
	Server ServerConfig `yaml:"server"`
}

type ForestConfig struct {
	NumTrees   int     `yaml:"num_trees" validate:"gte=1"`
	MaxDepth   int     `yaml:"max_depth" validate:"gte=0,lte=64"`
	NumTries   int     `yaml:"num_tries" validate:"gte=1"`
	MinSamples int     `yaml:"min_samples" validate:"gte=0"`
	MinEntropy float64 `yaml:"min_entropy" validate:"gte=0"`
	Growth     string  `yaml:"growth" validate:"oneof=adaptive fixed fixed_depth"`
	Learner    string  `yaml:"learner" validate:"required"`
	Workers    int     `yaml:"workers" validate:"gte=0"`
	Seed       uint64  `yaml:"seed"`
}

type DataConfig struct {
	Path         string  `yaml:"path"`
	Labels       string  `yaml:"labels"`
	Samples      int     `yaml:"samples" validate:"gte=1"`
	Classes      int     `yaml:"classes" validate:"gte=1"`
	Dims         int     `yaml:"dims" validate:"gte=1"`
	Spread       float64 `yaml:"spread" validate:"gt=0"`
	TestFraction float64 `yaml:"test_fraction" validate:"gte=0,lt=1"`
}

type ServerConfig struct {
	Port      string `yaml:"port" validate:"required,numeric"`
	APIKey    string `yaml:"api_key"`
	ModelPath string `yaml:"model_path" validate:"required"`
}

func Default() Config {
	return Config{
		Forest: ForestConfig{
			NumTrees:   100,
			MaxDepth:   4,
			NumTries:   10,
			MinSamples: 2,
			MinEntropy: 0.1,
			Growth:     "adaptive",
			Learner:    "stump",
		},
		Data: DataConfig{
			Path:         "data/clusters.csv",
			Samples:      3000,
			Classes:      3,
			Dims:         3,
			Spread:       1.0,
			TestFraction: 0.2,
		},
		Server: ServerConfig{
			Port:      "8080",
			ModelPath: "models/classifier.gob",
		},
	}
}

// Load starts from Default, overlays the YAML file at path when path is not
// empty, then the environment, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		cfg.Server.ModelPath = v
	}
	if v := os.Getenv("FOREST_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FOREST_WORKERS: %w", err)
		}
		cfg.Forest.Workers = n
	}
	if v := os.Getenv("FOREST_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("FOREST_SEED: %w", err)
		}
		cfg.Forest.Seed = n
	}
	return nil
}

func (f ForestConfig) Apply(rf *models.RandomForest) error {
	growth, err := models.ParseGrowth(f.Growth)
	if err != nil {
		return err
	}
	if _, err := models.LookupLearner(f.Learner); err != nil {
		return err
	}
	rf.NumTrees = f.NumTrees
	rf.MaxDepth = f.MaxDepth
	rf.NumTries = f.NumTries
	rf.MinSamples = f.MinSamples
	rf.MinEntropy = f.MinEntropy
	rf.Growth = growth
	rf.Learner = f.Learner
	rf.Workers = f.Workers
	rf.Seed = f.Seed
	return nil
}

func (f ForestConfig) Forest() (*models.RandomForest, error) {
	rf := models.NewRandomForest()
	if err := f.Apply(rf); err != nil {
		return nil, err
	}
	return rf, nil
}
