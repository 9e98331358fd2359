package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
)

var (
	// ErrArtefactMissing is returned when the configured model path does not exist.
	ErrArtefactMissing = errors.New("model artefact missing")
	// ErrArtefactInvalid is returned when the artefact loads but cannot predict.
	ErrArtefactInvalid = errors.New("model artefact invalid")
)

// Tree is one regressor of the gradient-boosted forest, stored as parallel
// node arrays. A node with Feature[i] < 0 is a leaf carrying Value[i].
type Tree struct {
	Feature   []int     `json:"feature"`
	Threshold []float64 `json:"threshold"`
	Left      []int     `json:"left"`
	Right     []int     `json:"right"`
	Value     []float64 `json:"value"`
}

// Calibration maps the raw boosting margin to a probability via
// sigmoid(Slope*margin + Intercept).
type Calibration struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Artefact is the loaded classifier: a tree ensemble plus the ordered list of
// feature names its rows must follow.
type Artefact struct {
	SchemaVersion int          `json:"schema_version"`
	Names         []string     `json:"feature_names"`
	BaseScore     float64      `json:"base_score"`
	Calib         *Calibration `json:"calibration"`
	Trees         []Tree       `json:"trees"`

	columnIndex map[string]int
}

// FeatureNames returns the ordered column list the artefact expects.
func (a *Artefact) FeatureNames() []string {
	return a.Names
}

// ColumnIndex returns the feature-name-to-column map derived at load time.
func (a *Artefact) ColumnIndex() map[string]int {
	return a.columnIndex
}

// PredictProba scores a batch of rows. Each row must have exactly
// len(FeatureNames()) columns in artefact order. Results are in [0, 1].
func (a *Artefact) PredictProba(rows [][]float64) ([]float64, error) {
	width := len(a.Names)
	probs := make([]float64, len(rows))

	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), width)
		}

		margin := a.BaseScore
		for t := range a.Trees {
			leaf, err := a.Trees[t].evaluate(row)
			if err != nil {
				return nil, fmt.Errorf("tree %d: %w", t, err)
			}
			margin += leaf
		}

		if a.Calib != nil {
			margin = a.Calib.Slope*margin + a.Calib.Intercept
		}
		probs[i] = sigmoid(margin)
	}

	return probs, nil
}

func (t *Tree) evaluate(row []float64) (float64, error) {
	node := 0
	// Bounded by node count so a malformed tree cannot loop forever.
	for steps := 0; steps <= len(t.Feature); steps++ {
		f := t.Feature[node]
		if f < 0 {
			return t.Value[node], nil
		}
		if f >= len(row) {
			return 0, fmt.Errorf("node %d references feature %d beyond row width %d", node, f, len(row))
		}
		if row[f] < t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
		if node < 0 || node >= len(t.Feature) {
			return 0, fmt.Errorf("node index %d out of range", node)
		}
	}
	return 0, errors.New("tree traversal did not reach a leaf")
}

func (t *Tree) validate() error {
	n := len(t.Feature)
	if n == 0 {
		return errors.New("tree has no nodes")
	}
	if len(t.Threshold) != n || len(t.Left) != n || len(t.Right) != n || len(t.Value) != n {
		return errors.New("tree node arrays have mismatched lengths")
	}
	return nil
}

func sigmoid(x float64) float64 {
	p := 1.0 / (1.0 + math.Exp(-x))
	if math.IsNaN(p) {
		return 0
	}
	return math.Min(math.Max(p, 0), 1)
}

// Loader memoises a single artefact load. Concurrent first callers observe
// exactly one load and share the immutable result.
type Loader struct {
	path string

	once     sync.Once
	artefact *Artefact
	err      error
}

// NewLoader creates a loader for the given artefact path
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads, parses, and validates the artefact on first call; subsequent
// calls return the memoised result.
func (l *Loader) Load() (*Artefact, error) {
	l.once.Do(func() {
		l.artefact, l.err = loadArtefact(l.path)
	})
	return l.artefact, l.err
}

func loadArtefact(path string) (*Artefact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtefactMissing, path)
		}
		return nil, fmt.Errorf("failed to read model artefact: %w", err)
	}

	var artefact Artefact
	if err := json.Unmarshal(raw, &artefact); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtefactInvalid, err)
	}

	if len(artefact.Names) == 0 {
		return nil, fmt.Errorf("%w: empty feature name list", ErrArtefactInvalid)
	}
	if len(artefact.Trees) == 0 {
		return nil, fmt.Errorf("%w: no trees", ErrArtefactInvalid)
	}
	for i := range artefact.Trees {
		if err := artefact.Trees[i].validate(); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrArtefactInvalid, i, err)
		}
	}

	artefact.columnIndex = make(map[string]int, len(artefact.Names))
	for i, name := range artefact.Names {
		artefact.columnIndex[name] = i
	}

	return &artefact, nil
}
