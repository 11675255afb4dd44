package scbridge

import (
	"errors"
	"fmt"

	"github.com/croghan-lab/scbridge/format"
	"github.com/croghan-lab/scbridge/homology"
	"github.com/croghan-lab/scbridge/store"
)

var (
	// ErrStoreAccess indicates a missing, closed or corrupt container.
	ErrStoreAccess = errors.New("store access failed")

	// ErrSchema indicates a well-formed container violating a structural
	// expectation.
	ErrSchema = errors.New("schema violation")

	// ErrMissingIndex indicates that no row-label dataset could be resolved.
	ErrMissingIndex = errors.New("missing index")

	// ErrMissingMatrix indicates that no candidate matrix location resolved.
	ErrMissingMatrix = errors.New("missing matrix")

	// ErrMissingAssay indicates the selected assay is absent or empty.
	ErrMissingAssay = errors.New("missing assay")

	// ErrUnsupportedPayload indicates a serialized object outside the
	// accepted payload shapes.
	ErrUnsupportedPayload = errors.New("unsupported payload")

	// ErrUnsupportedFormat indicates an unrecognized file extension.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrHomologyLookup indicates the reference homology table could not be
	// obtained.
	ErrHomologyLookup = errors.New("homology lookup failed")

	// ErrNoTargetColumn indicates the homology table has no column for the
	// requested vocabulary and species.
	ErrNoTargetColumn = errors.New("no matching homology column")
)

// translateError maps subpackage error types onto the package-level
// sentinels, so callers can errors.Is against this package alone. The
// original error stays reachable through Unwrap.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var sa *store.ErrStoreAccess
	if errors.As(err, &sa) {
		return fmt.Errorf("%w: %w", ErrStoreAccess, err)
	}
	var se *store.ErrSchema
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}
	var mi *store.ErrMissingIndex
	if errors.As(err, &mi) {
		return fmt.Errorf("%w: %w", ErrMissingIndex, err)
	}

	var mm *format.ErrMissingMatrix
	if errors.As(err, &mm) {
		return fmt.Errorf("%w: %w", ErrMissingMatrix, err)
	}
	var ma *format.ErrMissingAssay
	if errors.As(err, &ma) {
		return fmt.Errorf("%w: %w", ErrMissingAssay, err)
	}
	var up *format.ErrUnsupportedPayload
	if errors.As(err, &up) {
		return fmt.Errorf("%w: %w", ErrUnsupportedPayload, err)
	}
	var uf *format.ErrUnsupportedFormat
	if errors.As(err, &uf) {
		return fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	var hl *homology.ErrHomologyLookup
	if errors.As(err, &hl) {
		return fmt.Errorf("%w: %w", ErrHomologyLookup, err)
	}

	return err
}
