// Package cluster scores how much cluster structure a counts matrix carries.
//
// The pipeline is deliberately small: log1p-transform the counts of the most
// variable features, project the observations onto their top principal
// components, k-means the projection and rate the partition with a
// simplified silhouette. The result is scaled to [0, 5].
package cluster

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/croghan-lab/scbridge/matrix"
)

// Scorer rates cluster structure on a [0, 5] scale. The zero value uses the
// defaults below.
type Scorer struct {
	// K is the number of clusters. Default 5, capped at the number of
	// observations.
	K int
	// TopFeatures bounds the number of most-variable features used.
	// Default 2000.
	TopFeatures int
	// Components is the number of principal components kept. Default 10.
	Components int
	// MaxIter bounds the k-means iterations. Default 50.
	MaxIter int
	// Seed fixes the k-means initialization.
	Seed int64
}

const (
	defaultK           = 5
	defaultTopFeatures = 2000
	defaultComponents  = 10
	defaultMaxIter     = 50
)

// Score rates the matrix. Matrices with fewer observations than clusters
// score 0; there is no structure to rate.
func (s *Scorer) Score(ctx context.Context, m *matrix.Matrix) (float64, error) {
	k := s.K
	if k <= 0 {
		k = defaultK
	}
	topFeatures := s.TopFeatures
	if topFeatures <= 0 {
		topFeatures = defaultTopFeatures
	}
	components := s.Components
	if components <= 0 {
		components = defaultComponents
	}
	maxIter := s.MaxIter
	if maxIter <= 0 {
		maxIter = defaultMaxIter
	}

	rows, cols := m.Dims()
	if cols < 2 || rows == 0 {
		return 0, nil
	}
	if k > cols {
		k = cols
	}
	if k < 2 {
		return 0, nil
	}

	points, err := project(ctx, m, topFeatures, components)
	if err != nil {
		return 0, err
	}
	assign, centroids, err := kmeans(ctx, points, k, maxIter, s.Seed)
	if err != nil {
		return 0, err
	}
	return 2.5 * (silhouette(points, assign, centroids) + 1), nil
}

// project builds a cells-by-components embedding: log1p counts of the most
// variable features, centered, projected via thin SVD.
func project(ctx context.Context, m *matrix.Matrix, topFeatures, components int) ([][]float64, error) {
	_, cols := m.Dims()
	keep := variableFeatures(m, topFeatures)

	// Dense cells-by-features with log1p counts, centered per feature.
	dense := mat.NewDense(cols, len(keep), nil)
	for fi, i := range keep {
		idx, vals := m.Row(i)
		rowSum := 0.0
		logged := make([]float64, len(vals))
		for k, v := range vals {
			logged[k] = math.Log1p(v)
			rowSum += logged[k]
		}
		mean := rowSum / float64(cols)
		for j := 0; j < cols; j++ {
			dense.Set(j, fi, -mean)
		}
		for k, j := range idx {
			dense.Set(j, fi, logged[k]-mean)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var svd mat.SVD
	if !svd.Factorize(dense, mat.SVDThinU) {
		// Degenerate input; fall back to the raw centered values.
		return denseRows(dense, components), nil
	}
	var u mat.Dense
	svd.UTo(&u)
	sigma := svd.Values(nil)

	n, total := dense.RawMatrix().Rows, len(sigma)
	if components > total {
		components = total
	}
	points := make([][]float64, n)
	for i := 0; i < n; i++ {
		p := make([]float64, components)
		for c := 0; c < components; c++ {
			p[c] = u.At(i, c) * sigma[c]
		}
		points[i] = p
	}
	return points, nil
}

func denseRows(d *mat.Dense, limit int) [][]float64 {
	r, c := d.Dims()
	if limit > c {
		limit = c
	}
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		out[i] = mat.Row(nil, i, d)[:limit]
	}
	return out
}

// variableFeatures returns the indices of the top features by log1p count
// variance, in original row order.
func variableFeatures(m *matrix.Matrix, top int) []int {
	rows, cols := m.Dims()
	if top > rows {
		top = rows
	}
	type fv struct {
		i int
		v float64
	}
	scored := make([]fv, rows)
	for i := 0; i < rows; i++ {
		_, vals := m.Row(i)
		var sum, sumSq float64
		for _, v := range vals {
			lv := math.Log1p(v)
			sum += lv
			sumSq += lv * lv
		}
		n := float64(cols)
		mean := sum / n
		scored[i] = fv{i: i, v: sumSq/n - mean*mean}
	}
	// Partial selection sort; top is small relative to rows.
	for k := 0; k < top; k++ {
		best := k
		for j := k + 1; j < rows; j++ {
			if scored[j].v > scored[best].v {
				best = j
			}
		}
		scored[k], scored[best] = scored[best], scored[k]
	}
	keep := make([]int, top)
	for k := 0; k < top; k++ {
		keep[k] = scored[k].i
	}
	// Restore row order for cache-friendly extraction.
	for i := 1; i < len(keep); i++ {
		for j := i; j > 0 && keep[j-1] > keep[j]; j-- {
			keep[j-1], keep[j] = keep[j], keep[j-1]
		}
	}
	return keep
}

// kmeans partitions points into k clusters with k-means++ seeding.
func kmeans(ctx context.Context, points [][]float64, k, maxIter int, seed int64) ([]int, [][]float64, error) {
	n, d := len(points), len(points[0])
	r := rand.New(rand.NewSource(seed))

	centroids := initCenters(points, k, r)
	assign := make([]int, n)

	for it := 0; it < maxIter; it++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		changed := false
		for i, p := range points {
			best, bestD := 0, math.MaxFloat64
			for c := range centroids {
				if d2 := euclidSquared(p, centroids[c]); d2 < bestD {
					best, bestD = c, d2
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && it > 0 {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, d)
		}
		for i, p := range points {
			c := assign[i]
			counts[c]++
			for j, v := range p {
				sums[c][j] += v
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for j := range centroids[c] {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}
	return assign, centroids, nil
}

// initCenters seeds k-means++ style: each further center is drawn with
// probability proportional to its squared distance from the nearest chosen
// center.
func initCenters(points [][]float64, k int, r *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := points[r.Intn(len(points))]
	centroids = append(centroids, append([]float64(nil), first...))

	for len(centroids) < k {
		distSq := make([]float64, len(points))
		total := 0.0
		for i, p := range points {
			minD := math.MaxFloat64
			for _, c := range centroids {
				if d2 := euclidSquared(p, c); d2 < minD {
					minD = d2
				}
			}
			distSq[i] = minD
			total += minD
		}
		if total == 0 {
			// All points coincide with a center already.
			centroids = append(centroids, append([]float64(nil), points[0]...))
			continue
		}
		target := r.Float64() * total
		cumulative := 0.0
		for i, d2 := range distSq {
			cumulative += d2
			if cumulative >= target {
				centroids = append(centroids, append([]float64(nil), points[i]...))
				break
			}
		}
	}
	return centroids
}

// silhouette computes the simplified (centroid-based) silhouette in [-1, 1]:
// a is the distance to the own centroid, b the distance to the nearest other
// centroid.
func silhouette(points [][]float64, assign []int, centroids [][]float64) float64 {
	if len(centroids) < 2 {
		return 0
	}
	total := 0.0
	for i, p := range points {
		own := math.Sqrt(euclidSquared(p, centroids[assign[i]]))
		other := math.MaxFloat64
		for c := range centroids {
			if c == assign[i] {
				continue
			}
			if d := math.Sqrt(euclidSquared(p, centroids[c])); d < other {
				other = d
			}
		}
		if m := math.Max(own, other); m > 0 {
			total += (other - own) / m
		}
	}
	return total / float64(len(points))
}

func euclidSquared(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
