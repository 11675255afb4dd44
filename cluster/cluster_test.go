package cluster

import (
	"context"
	"fmt"
	"testing"

	"github.com/croghan-lab/scbridge/matrix"
	"github.com/stretchr/testify/require"
)

// twoBlockMatrix builds a matrix with two obvious observation groups: the
// first half expresses the first feature block, the second half the other.
func twoBlockMatrix(t *testing.T, cells int) *matrix.Matrix {
	t.Helper()
	const features = 10
	values := make([]float64, features*cells)
	for i := 0; i < features; i++ {
		for j := 0; j < cells; j++ {
			if (i < features/2) == (j < cells/2) {
				values[i*cells+j] = 50
			}
		}
	}
	m, err := matrix.FromDense(features, cells, values)
	require.NoError(t, err)
	return m
}

func TestScoreSeparatedClusters(t *testing.T) {
	s := &Scorer{K: 2, Seed: 1}
	score, err := s.Score(context.Background(), twoBlockMatrix(t, 20))
	require.NoError(t, err)
	require.Greater(t, score, 2.5)
	require.LessOrEqual(t, score, 5.0)
}

func TestScoreBounds(t *testing.T) {
	// Uniform noise still has to land in the scale.
	const features, cells = 6, 12
	values := make([]float64, features*cells)
	for i := range values {
		values[i] = float64((i*7)%5 + 1)
	}
	m, err := matrix.FromDense(features, cells, values)
	require.NoError(t, err)

	s := &Scorer{Seed: 3}
	score, err := s.Score(context.Background(), m)
	require.NoError(t, err)
	require.GreaterOrEqual(t, score, 0.0)
	require.LessOrEqual(t, score, 5.0)
}

func TestScoreDeterministicForSeed(t *testing.T) {
	m := twoBlockMatrix(t, 16)
	s := &Scorer{K: 2, Seed: 7}
	first, err := s.Score(context.Background(), m)
	require.NoError(t, err)
	second, err := s.Score(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestScoreTooFewObservations(t *testing.T) {
	m, err := matrix.FromDense(3, 1, []float64{1, 2, 3})
	require.NoError(t, err)

	var s Scorer
	score, err := s.Score(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, 0.0, score)
}

func TestScoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Scorer{K: 2, Seed: 1}
	_, err := s.Score(ctx, twoBlockMatrix(t, 20))
	require.Error(t, err)
}

func TestVariableFeatureSelection(t *testing.T) {
	// Feature 1 varies, features 0 and 2 are flat.
	m, err := matrix.FromDense(3, 4, []float64{
		1, 1, 1, 1,
		0, 9, 0, 9,
		2, 2, 2, 2,
	})
	require.NoError(t, err)

	keep := variableFeatures(m, 1)
	require.Equal(t, []int{1}, keep)
}

func ExampleScorer() {
	values := []float64{
		9, 9, 0, 0,
		0, 0, 9, 9,
	}
	m, _ := matrix.FromDense(2, 4, values)
	s := &Scorer{K: 2, Seed: 1}
	score, _ := s.Score(context.Background(), m)
	fmt.Println(score > 0)
	// Output: true
}
