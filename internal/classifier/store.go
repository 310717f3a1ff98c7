package classifier

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"randforest/internal/metrics"
	"randforest/internal/models"
)

// state is the gob form of a classifier. Labels of types other than gob's
// built-in basics must be registered with gob.Register by the caller.
type state struct {
	Rows    [][]float64
	Y       []int
	Labels  []any
	Width   int
	Trained []any
	Forest  *models.Snapshot
}

func (c *Classifier) Save(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := state{
		Rows:    c.rows,
		Y:       c.y,
		Labels:  c.labels,
		Width:   c.width,
		Trained: c.trained,
	}
	if c.forest != nil {
		snap := c.forest.Snapshot()
		s.Forest = &snap
	}
	if err := gob.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("encode classifier: %w", err)
	}
	return nil
}

// Load restores a saved classifier. Future trainings use template's
// configuration, or the saved forest's when template is nil.
func Load(r io.Reader, template *models.RandomForest, opts ...Option) (*Classifier, error) {
	var s state
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode classifier: %w", err)
	}
	if len(s.Rows) != len(s.Y) {
		return nil, fmt.Errorf("decode classifier: %d rows, %d labels", len(s.Rows), len(s.Y))
	}

	var forest *models.RandomForest
	if s.Forest != nil {
		rf, err := models.ForestFromSnapshot(*s.Forest)
		if err != nil {
			return nil, err
		}
		if rf.NumClasses > len(s.Trained) {
			return nil, fmt.Errorf("%w: forest has %d classes, %d labels saved", models.ErrInvalidSnapshot, rf.NumClasses, len(s.Trained))
		}
		forest = rf
		if template == nil {
			template = rf
		}
	}

	c := New(template, opts...)
	c.rows = s.Rows
	c.y = s.Y
	c.width = s.Width
	c.forest = forest
	c.trained = slices.Clone(s.Trained)
	for i, l := range s.Labels {
		c.index[l] = i
		c.labels = append(c.labels, l)
	}
	for i, y := range c.y {
		if y < 0 || y >= len(c.labels) {
			return nil, fmt.Errorf("decode classifier: row %d has label index %d", i, y)
		}
	}
	metrics.SetExamples(len(c.rows))
	return c, nil
}

// SaveFile writes to a temporary file next to path and renames it into place.
func (c *Classifier) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := c.Save(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func LoadFile(path string, template *models.RandomForest, opts ...Option) (*Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, template, opts...)
}
