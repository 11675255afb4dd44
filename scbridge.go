package scbridge

import (
	"context"
	"fmt"

	"github.com/croghan-lab/scbridge/cluster"
	"github.com/croghan-lab/scbridge/format"
	"github.com/croghan-lab/scbridge/homology"
	"github.com/croghan-lab/scbridge/matrix"
	"github.com/croghan-lab/scbridge/notify"
)

// Scorer rates how much cluster structure a matrix carries, on a [0, 5]
// scale.
type Scorer interface {
	Score(ctx context.Context, m *matrix.Matrix) (float64, error)
}

// Bridge is the facade over loading, detection and harmonization.
// A Bridge is safe for concurrent use; each call opens and closes its own
// container handles.
type Bridge struct {
	opts options
}

// New creates a Bridge. Without options it logs to stderr, keeps
// notifications off and scores with the default cluster scorer.
func New(optFns ...Option) *Bridge {
	opts := options{
		logger:   NewLogger(nil),
		notifier: notify.Nop{},
		scorer:   &cluster.Scorer{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Bridge{opts: opts}
}

// Load reads a counts matrix from path, dispatching on the file extension
// among the four recognized container formats.
func (b *Bridge) Load(ctx context.Context, path string) (*matrix.Matrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := format.Load(path, format.Options{
		MinCells:    b.opts.minCells,
		MinFeatures: b.opts.minFeatures,
	})
	if err != nil {
		err = translateError(err)
		b.opts.logger.LogLoad(ctx, path, 0, 0, err)
		return nil, err
	}
	rows, cols := m.Dims()
	b.opts.logger.LogLoad(ctx, path, rows, cols, nil)
	return m, nil
}

// LoadHomologyTable fetches and decodes the reference homology table from a
// local path, an http(s) URL or an s3 URI.
func (b *Bridge) LoadHomologyTable(ctx context.Context, location string) (*homology.Table, error) {
	t, err := homology.LoadTable(ctx, location, homology.SourceOptions{
		Client:  b.opts.httpClient,
		Timeout: b.opts.httpTimeout,
		Strict:  b.opts.strictProbe,
		Store:   b.opts.tableStore,
	})
	if err != nil {
		return nil, translateError(err)
	}
	return t, nil
}

// HarmonizeResult is the outcome of a Harmonize call.
type HarmonizeResult struct {
	// Matrix holds the harmonized counts, its features renamed to the
	// target vocabulary.
	Matrix *matrix.Matrix

	// Detection describes the identifier vocabulary found in the query.
	Detection homology.Detection

	// Found and Attempted count remapping coverage. Unmatched features are
	// dropped data, not errors.
	Found     int
	Attempted int

	// Score rates cluster structure of the harmonized matrix in [0, 5].
	// Zero when scoring is disabled.
	Score float64
}

// Harmonize detects the query matrix's identifier vocabulary against the
// table and remaps its features onto the same vocabulary for the target
// species.
func (b *Bridge) Harmonize(ctx context.Context, query *matrix.Matrix, table *homology.Table, target homology.Species) (*HarmonizeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	det := homology.Detect(query.RowNames(), table, b.opts.sampleSize, b.opts.randSource)
	b.opts.logger.LogDetect(ctx, det.Column, det.Overlap, det.Sampled)
	if det.Column == "" {
		return nil, fmt.Errorf("%w: empty homology table", ErrNoTargetColumn)
	}

	to, ok := table.ColumnFor(det.IDType, target)
	if !ok {
		return nil, fmt.Errorf("%w: vocabulary %q, species %s", ErrNoTargetColumn, det.IDType, target)
	}

	m, rep, err := homology.Remap(query, table, det.Column, to)
	if err != nil {
		return nil, translateError(err)
	}
	b.opts.logger.LogRemap(ctx, det.Column, to, rep.Found, rep.Attempted)

	res := &HarmonizeResult{
		Matrix:    m,
		Detection: det,
		Found:     rep.Found,
		Attempted: rep.Attempted,
	}
	if b.opts.scorer != nil {
		score, err := b.opts.scorer.Score(ctx, m)
		b.opts.logger.LogScore(ctx, score, err)
		if err != nil {
			return nil, err
		}
		res.Score = score
	}

	// Notification is scoped to actual remaps; the same-column case changes
	// nothing worth announcing.
	if det.Column != to {
		b.opts.notifier.Notify(ctx, fmt.Sprintf(
			"harmonized %d of %d features from %s to %s",
			rep.Found, rep.Attempted, det.Column, to,
		))
	}
	return res, nil
}
