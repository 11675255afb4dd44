// Package format loads gene-by-cell count matrices from the container
// formats commonly seen in single-cell pipelines: 10x Genomics HDF5 (.h5),
// R serialized objects (.rds), h5Seurat (.h5seurat) and AnnData (.h5ad).
//
// Load dispatches on the file extension and normalizes every container into
// a features-by-observations matrix.Matrix with row names, column names and,
// when the container carries one, a per-observation metadata table.
package format

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Format identifies a recognized container format.
type Format int

const (
	FormatUnsupported Format = iota
	FormatTenX
	FormatRDS
	FormatH5Seurat
	FormatAnnData
)

func (f Format) String() string {
	switch f {
	case FormatTenX:
		return "10x-h5"
	case FormatRDS:
		return "rds"
	case FormatH5Seurat:
		return "h5seurat"
	case FormatAnnData:
		return "anndata"
	}
	return "unsupported"
}

// Detect maps a file's extension onto a Format, case-insensitively.
func Detect(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".h5":
		return FormatTenX
	case ".rds":
		return FormatRDS
	case ".h5seurat":
		return FormatH5Seurat
	case ".h5ad":
		return FormatAnnData
	}
	return FormatUnsupported
}

// makeUnique disambiguates duplicate names the way R's make.unique does:
// the first occurrence is kept verbatim, later ones get a ".1", ".2", ...
// suffix. Feature lists in the wild carry duplicate symbols routinely.
func makeUnique(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		n, dup := seen[name]
		if !dup {
			seen[name] = 0
			out[i] = name
			continue
		}
		for {
			n++
			candidate := name + "." + strconv.Itoa(n)
			if _, taken := seen[candidate]; !taken {
				seen[name] = n
				seen[candidate] = 0
				out[i] = candidate
				break
			}
		}
	}
	return out
}
