package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"randforest/internal/models"
)

var formats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
	"dot": graphviz.XDOT,
}

// FormatFor picks the output format from a file extension.
func FormatFor(path string) (graphviz.Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	f, ok := formats[ext]
	if !ok {
		return "", fmt.Errorf("unsupported image format %q", ext)
	}
	return f, nil
}

// Labels names features and classes in node captions. Missing names fall
// back to indices.
type Labels struct {
	Features []string
	Classes  []string
}

func (l Labels) feature(i int) string {
	if i < len(l.Features) {
		return l.Features[i]
	}
	return fmt.Sprintf("f%d", i)
}

func (l Labels) class(i int) string {
	if i < len(l.Classes) {
		return l.Classes[i]
	}
	return fmt.Sprint(i)
}

func DrawTree(dt *models.DecisionTree, labels Labels) (*graphviz.Graphviz, *cgraph.Graph, error) {
	if len(dt.Nodes) == 0 {
		return nil, nil, models.ErrNotTrained
	}
	gv := graphviz.New()
	graph, err := gv.Graph()
	if err != nil {
		return nil, nil, err
	}
	if err := draw(graph, dt, labels, 0, nil); err != nil {
		graph.Close()
		gv.Close()
		return nil, nil, err
	}
	return gv, graph, nil
}

func draw(g *cgraph.Graph, dt *models.DecisionTree, labels Labels, n int, parent *cgraph.Node) error {
	node, err := g.CreateNode(fmt.Sprint(n))
	if err != nil {
		return err
	}
	if parent != nil {
		if _, err := g.CreateEdge("", parent, node); err != nil {
			return err
		}
	}
	rec := dt.Nodes[n]
	if rec.Leaf {
		node.Set("label", leafCaption(rec, dt.NumClasses, labels))
		node.Set("shape", "box")
		return nil
	}
	node.Set("label", splitCaption(rec.Split, labels))
	if err := draw(g, dt, labels, rec.Left, node); err != nil {
		return err
	}
	return draw(g, dt, labels, rec.Right, node)
}

func splitCaption(s *models.Split, labels Labels) string {
	if s == nil {
		return "no data"
	}
	terms := make([]string, len(s.Features))
	for k, f := range s.Features {
		if len(s.Features) == 1 && s.Weights[k] == 1 {
			terms[k] = labels.feature(f)
			continue
		}
		terms[k] = fmt.Sprintf("%.3g*%s", s.Weights[k], labels.feature(f))
	}
	return fmt.Sprintf("%s < %.4g", strings.Join(terms, " + "), s.Threshold)
}

func leafCaption(n models.Node, numClasses int, labels Labels) string {
	p := n.Probabilities(numClasses)
	lines := make([]string, numClasses)
	for c := range lines {
		count := 0
		if c < len(n.Counts) {
			count = n.Counts[c]
		}
		lines[c] = fmt.Sprintf("%s: %d (%.2f)", labels.class(c), count, p[c])
	}
	return strings.Join(lines, "\\n")
}

func Render(dt *models.DecisionTree, labels Labels, format graphviz.Format, w io.Writer) error {
	gv, graph, err := DrawTree(dt, labels)
	if err != nil {
		return err
	}
	defer gv.Close()
	defer graph.Close()
	return gv.Render(graph, format, w)
}

// RenderFile writes the tree to path in the format named by its extension.
func RenderFile(dt *models.DecisionTree, labels Labels, path string) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	gv, graph, err := DrawTree(dt, labels)
	if err != nil {
		return err
	}
	defer gv.Close()
	defer graph.Close()
	return gv.RenderFilename(graph, format, path)
}
