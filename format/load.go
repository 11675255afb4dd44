package format

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/croghan-lab/scbridge/matrix"
	"github.com/croghan-lab/scbridge/store"
)

// Options control format-specific loading behavior.
type Options struct {
	// MinCells keeps only features detected in at least this many
	// observations. Values below 1 mean 1.
	MinCells int

	// MinFeatures keeps only observations with at least this many detected
	// features. Values below 1 mean 1.
	MinFeatures int
}

func (o Options) withDefaults() Options {
	if o.MinCells < 1 {
		o.MinCells = 1
	}
	if o.MinFeatures < 1 {
		o.MinFeatures = 1
	}
	return o
}

// Load reads a counts matrix from path, dispatching on the extension.
//
// The returned matrix is features by observations with unique row names.
// Unrecognized extensions fail with ErrUnsupportedFormat.
func Load(path string, opts Options) (*matrix.Matrix, error) {
	opts = opts.withDefaults()

	// Container decoding churns through large transient buffers; give them
	// back eagerly so consecutive loads do not stack peaks.
	defer runtime.GC()

	switch Detect(path) {
	case FormatTenX:
		return withH5(path, func(s store.Store) (*matrix.Matrix, error) {
			return ExtractTenX(s, opts)
		})
	case FormatRDS:
		return loadRDS(path)
	case FormatH5Seurat:
		return withH5(path, ExtractH5Seurat)
	case FormatAnnData:
		return withH5(path, ExtractAnnData)
	}
	return nil, &ErrUnsupportedFormat{
		Ext: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
	}
}

func withH5(path string, extract func(store.Store) (*matrix.Matrix, error)) (*matrix.Matrix, error) {
	s, err := store.OpenH5(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return extract(s)
}
