package classifier

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"randforest/internal/metrics"
	"randforest/internal/models"
)

var (
	ErrMissingLabel  = errors.New("example has no label")
	ErrInvalidLabel  = errors.New("label is not comparable")
	ErrWidthMismatch = errors.New("feature width mismatch")
	ErrNotTrained    = errors.New("classifier is not trained")
	ErrNoExamples    = errors.New("no training examples")
)

type Classification struct {
	Label       any     `json:"label"`
	Probability float64 `json:"probability"`
}

// Classifier accumulates labeled examples, maps arbitrary label values to
// dense class indices and answers queries from the last trained forest.
type Classifier struct {
	mu       sync.RWMutex
	template *models.RandomForest
	forest   *models.RandomForest
	trained  []any // label table the forest was trained with

	rows   [][]float64
	y      []int
	labels []any
	index  map[any]int
	width  int

	logger *zap.Logger
}

type Option func(*Classifier)

func WithLogger(l *zap.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// New uses template's configuration for every training run. A nil template
// means the forest defaults.
func New(template *models.RandomForest, opts ...Option) *Classifier {
	if template == nil {
		template = models.NewRandomForest()
	}
	c := &Classifier{
		template: template.Clone(),
		index:    map[any]int{},
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// AddExample stores one row. A row wider than any seen before zero-pads
// every stored row; a narrower one is padded itself.
func (c *Classifier) AddExample(features []float64, label any) error {
	if label == nil {
		return ErrMissingLabel
	}
	if !reflect.TypeOf(label).Comparable() {
		return fmt.Errorf("%w: %T", ErrInvalidLabel, label)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	idx, ok, err := c.indexOf(label)
	if err != nil {
		return err
	}
	if len(features) > c.width {
		for i, r := range c.rows {
			c.rows[i] = padded(r, len(features))
		}
		c.width = len(features)
	}
	if !ok {
		idx = len(c.labels)
		c.index[label] = idx
		c.labels = append(c.labels, label)
	}
	c.rows = append(c.rows, padded(features, c.width))
	c.y = append(c.y, idx)
	metrics.SetExamples(len(c.rows))
	return nil
}

// indexOf looks label up in the label index. A comparable type can still
// carry an unhashable dynamic value, such as a slice inside an interface
// field, and the map lookup panics on it.
func (c *Classifier) indexOf(label any) (idx int, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %T: %v", ErrInvalidLabel, label, r)
		}
	}()
	idx, ok = c.index[label]
	return idx, ok, nil
}

// padded always returns a fresh slice so rows handed to a running training
// are never written to.
func padded(r []float64, width int) []float64 {
	out := make([]float64, width)
	copy(out, r)
	return out
}

// Train retrains from scratch on every accumulated example. The previous
// forest keeps serving until the new one is complete, and survives a failure.
func (c *Classifier) Train() error {
	c.mu.RLock()
	if len(c.rows) == 0 {
		c.mu.RUnlock()
		return ErrNoExamples
	}
	X := slices.Clone(c.rows)
	y := slices.Clone(c.y)
	labels := slices.Clone(c.labels)
	rf := c.template.Clone()
	c.mu.RUnlock()

	start := time.Now()
	if err := rf.Train(X, y, len(labels)); err != nil {
		c.logger.Error("forest training failed", zap.Int("examples", len(X)), zap.Error(err))
		return fmt.Errorf("train forest: %w", err)
	}
	took := time.Since(start)
	metrics.TrainingDone(len(rf.Trees), took)

	c.mu.Lock()
	c.forest = rf
	c.trained = labels
	c.mu.Unlock()

	c.logger.Info("forest trained",
		zap.Int("examples", len(X)),
		zap.Int("features", rf.NumFeatures),
		zap.Int("classes", len(labels)),
		zap.Int("trees", len(rf.Trees)),
		zap.String("growth", rf.Growth.String()),
		zap.String("learner", rf.Learner),
		zap.Duration("took", took),
	)
	return nil
}

// Classifications ranks every label known to the forest by descending
// probability; ties keep label order.
func (c *Classifier) Classifications(features []float64) ([]Classification, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.forest == nil {
		metrics.Classified(metrics.OutcomeUntrained)
		return nil, ErrNotTrained
	}
	if len(features) != c.width {
		metrics.Classified(metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrWidthMismatch, len(features), c.width)
	}

	p := c.forest.PredictOne(features)
	out := make([]Classification, len(p))
	for i, v := range p {
		out[i] = Classification{Label: c.trained[i], Probability: v}
	}
	slices.SortStableFunc(out, func(a, b Classification) int {
		switch {
		case a.Probability > b.Probability:
			return -1
		case a.Probability < b.Probability:
			return 1
		}
		return 0
	})
	metrics.Classified(metrics.OutcomeOK)
	return out, nil
}

// Classify returns the most probable label.
func (c *Classifier) Classify(features []float64) (any, error) {
	ranked, err := c.Classifications(features)
	if err != nil {
		return nil, err
	}
	return ranked[0].Label, nil
}

func (c *Classifier) Width() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.width
}

func (c *Classifier) NumExamples() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// Labels lists distinct labels in index order.
func (c *Classifier) Labels() []any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.labels)
}

func (c *Classifier) Trained() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.forest != nil
}

// Forest returns the serving forest. Callers must treat it as read-only.
func (c *Classifier) Forest() (*models.RandomForest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.forest == nil {
		return nil, ErrNotTrained
	}
	return c.forest, nil
}
