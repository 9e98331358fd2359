package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoFeatureArtefact builds a two-tree ensemble over features f0 and f1:
//
//	tree 0: f0 < 5  -> -2.0, else +2.0
//	tree 1: f1 < 10 -> -1.0, else +1.0
func twoFeatureArtefact() *Artefact {
	return &Artefact{
		SchemaVersion: 1,
		Names:         []string{"f0", "f1"},
		BaseScore:     0.5,
		Trees: []Tree{
			{
				Feature:   []int{0, -1, -1},
				Threshold: []float64{5, 0, 0},
				Left:      []int{1, 0, 0},
				Right:     []int{2, 0, 0},
				Value:     []float64{0, -2.0, 2.0},
			},
			{
				Feature:   []int{1, -1, -1},
				Threshold: []float64{10, 0, 0},
				Left:      []int{1, 0, 0},
				Right:     []int{2, 0, 0},
				Value:     []float64{0, -1.0, 1.0},
			},
		},
	}
}

func writeArtefact(t *testing.T, artefact *Artefact) string {
	t.Helper()
	raw, err := json.Marshal(artefact)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestPredictProba(t *testing.T) {
	artefact := twoFeatureArtefact()
	artefact.columnIndex = map[string]int{"f0": 0, "f1": 1}

	probs, err := artefact.PredictProba([][]float64{
		{0, 0},   // margin 0.5 - 2 - 1 = -2.5
		{10, 20}, // margin 0.5 + 2 + 1 = 3.5
	})
	require.NoError(t, err)
	require.Len(t, probs, 2)

	assert.InDelta(t, 0.0759, probs[0], 1e-4)
	assert.InDelta(t, 0.9706, probs[1], 1e-4)
	assert.Greater(t, probs[1], probs[0])
}

func TestPredictProbaCalibration(t *testing.T) {
	artefact := twoFeatureArtefact()
	artefact.Calib = &Calibration{Slope: 0, Intercept: 0}

	probs, err := artefact.PredictProba([][]float64{{0, 0}, {10, 20}})
	require.NoError(t, err)

	// Zero slope collapses every margin to sigmoid(0)
	assert.InDelta(t, 0.5, probs[0], 1e-12)
	assert.InDelta(t, 0.5, probs[1], 1e-12)
}

func TestPredictProbaRowWidthMismatch(t *testing.T) {
	artefact := twoFeatureArtefact()

	_, err := artefact.PredictProba([][]float64{{1, 2, 3}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "columns")
}

func TestLoaderRoundTrip(t *testing.T) {
	path := writeArtefact(t, twoFeatureArtefact())

	loader := NewLoader(path)
	artefact, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"f0", "f1"}, artefact.FeatureNames())
	assert.Equal(t, map[string]int{"f0": 0, "f1": 1}, artefact.ColumnIndex())

	probs, err := artefact.PredictProba([][]float64{{10, 20}})
	require.NoError(t, err)
	assert.InDelta(t, 0.9706, probs[0], 1e-4)
}

func TestLoaderMemoises(t *testing.T) {
	path := writeArtefact(t, twoFeatureArtefact())

	loader := NewLoader(path)
	first, err := loader.Load()
	require.NoError(t, err)

	// Deleting the file must not matter once the artefact is cached
	require.NoError(t, os.Remove(path))
	second, err := loader.Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoaderConcurrentFirstLoad(t *testing.T) {
	path := writeArtefact(t, twoFeatureArtefact())
	loader := NewLoader(path)

	const goroutines = 16
	results := make([]*Artefact, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			artefact, err := loader.Load()
			assert.NoError(t, err)
			results[i] = artefact
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestLoaderMissingFile(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "absent.json"))

	_, err := loader.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArtefactMissing)

	// The failure is memoised too
	_, err = loader.Load()
	assert.ErrorIs(t, err, ErrArtefactMissing)
}

func TestLoaderInvalidArtefact(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := NewLoader(path).Load()
		assert.ErrorIs(t, err, ErrArtefactInvalid)
	})

	t.Run("no feature names", func(t *testing.T) {
		artefact := twoFeatureArtefact()
		artefact.Names = nil

		_, err := NewLoader(writeArtefact(t, artefact)).Load()
		assert.ErrorIs(t, err, ErrArtefactInvalid)
	})

	t.Run("no trees", func(t *testing.T) {
		artefact := twoFeatureArtefact()
		artefact.Trees = nil

		_, err := NewLoader(writeArtefact(t, artefact)).Load()
		assert.ErrorIs(t, err, ErrArtefactInvalid)
	})

	t.Run("mismatched node arrays", func(t *testing.T) {
		artefact := twoFeatureArtefact()
		artefact.Trees[0].Value = artefact.Trees[0].Value[:1]

		_, err := NewLoader(writeArtefact(t, artefact)).Load()
		assert.ErrorIs(t, err, ErrArtefactInvalid)
	})
}

func TestTreeEvaluateMalformed(t *testing.T) {
	t.Run("feature beyond row width", func(t *testing.T) {
		tree := Tree{
			Feature:   []int{7, -1},
			Threshold: []float64{1, 0},
			Left:      []int{1, 0},
			Right:     []int{1, 0},
			Value:     []float64{0, 1},
		}
		_, err := tree.evaluate([]float64{1, 2})
		assert.Error(t, err)
	})

	t.Run("cyclic tree terminates", func(t *testing.T) {
		tree := Tree{
			Feature:   []int{0, 0},
			Threshold: []float64{1, 1},
			Left:      []int{1, 0},
			Right:     []int{1, 0},
			Value:     []float64{0, 0},
		}
		_, err := tree.evaluate([]float64{0})
		assert.Error(t, err)
	})
}

func TestSigmoid(t *testing.T) {
	assert.InDelta(t, 0.5, sigmoid(0), 1e-12)
	assert.Greater(t, sigmoid(10), 0.9999)
	assert.Less(t, sigmoid(-10), 0.0001)
	assert.Equal(t, 1.0, sigmoid(1000))
	assert.Equal(t, 0.0, sigmoid(-1000))
}
