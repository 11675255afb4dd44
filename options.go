package scbridge

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/croghan-lab/scbridge/blobstore"
	"github.com/croghan-lab/scbridge/notify"
)

type options struct {
	logger      *Logger
	notifier    notify.Notifier
	scorer      Scorer
	httpClient  *http.Client
	httpTimeout time.Duration
	strictProbe bool
	sampleSize  int
	randSource  rand.Source
	minCells    int
	minFeatures int
	tableStore  blobstore.Store
}

// Option configures Bridge behavior.
type Option func(*options)

// WithLogger configures structured logging. Pass NoopLogger() to disable
// logging entirely.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithNotifier configures the notifier that receives operation summaries.
// Notifications never affect outcomes.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithScorer configures the cluster-structure scorer consulted by
// Harmonize. Pass nil to skip scoring.
func WithScorer(s Scorer) Option {
	return func(o *options) {
		o.scorer = s
	}
}

// WithHTTPClient configures the client used for remote homology tables.
// Overrides WithHTTPTimeout.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithHTTPTimeout bounds remote homology-table operations. The default is
// homology.DefaultTimeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(o *options) {
		o.httpTimeout = d
	}
}

// WithStrictProbe makes the remote reachability probe reject any status
// >= 400 instead of only server errors.
func WithStrictProbe(strict bool) Option {
	return func(o *options) {
		o.strictProbe = strict
	}
}

// WithSampleSize bounds the number of feature names compared during
// identifier detection. The default is homology.DefaultSampleSize. Feature
// lists at or under the bound are always used whole.
func WithSampleSize(n int) Option {
	return func(o *options) {
		o.sampleSize = n
	}
}

// WithRandSource fixes the source used to sample feature names during
// detection, making detection deterministic for large feature lists.
func WithRandSource(src rand.Source) Option {
	return func(o *options) {
		o.randSource = src
	}
}

// WithMinCells keeps only features detected in at least n observations when
// loading columnar containers. The default is 1.
func WithMinCells(n int) Option {
	return func(o *options) {
		o.minCells = n
	}
}

// WithMinFeatures keeps only observations with at least n detected features
// when loading columnar containers. The default is 1.
func WithMinFeatures(n int) Option {
	return func(o *options) {
		o.minFeatures = n
	}
}

// WithTableStore overrides homology-table location resolution: locations
// are fetched from the given store verbatim. Use for pre-configured object
// stores (blobstore/s3, blobstore/minio) or fixtures.
func WithTableStore(s blobstore.Store) Option {
	return func(o *options) {
		o.tableStore = s
	}
}
