// Package matrix defines the normalized in-memory representation of a
// gene-by-cell expression matrix and its per-observation metadata table.
//
// A Matrix always has rows = feature identifiers and columns = observation
// identifiers, regardless of the orientation of the container it was loaded
// from. The optional metadata Table is kept row-for-row consistent with the
// Matrix's column order; any observation subsetting applies to both.
package matrix
