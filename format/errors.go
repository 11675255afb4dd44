package format

import (
	"fmt"
	"strings"
)

// ErrUnsupportedFormat indicates a file extension outside the dispatch table.
type ErrUnsupportedFormat struct {
	Ext string
}

func (e *ErrUnsupportedFormat) Error() string {
	if e.Ext == "" {
		return "unsupported format: file has no extension"
	}
	return fmt.Sprintf("unsupported format %q", e.Ext)
}

// ErrMissingMatrix indicates that none of a container's candidate matrix
// locations resolved.
type ErrMissingMatrix struct {
	Tried []string
}

func (e *ErrMissingMatrix) Error() string {
	return fmt.Sprintf("no matrix found, tried %s", strings.Join(e.Tried, ", "))
}

// ErrMissingAssay indicates that the selected assay is absent or carries no
// counts.
type ErrMissingAssay struct {
	Assay string
}

func (e *ErrMissingAssay) Error() string {
	return fmt.Sprintf("assay %q missing or has no counts", e.Assay)
}

// ErrUnsupportedPayload indicates a serialized object outside the accepted
// payload shapes (Seurat object, numeric matrix, data frame).
type ErrUnsupportedPayload struct {
	Type string
}

func (e *ErrUnsupportedPayload) Error() string {
	return fmt.Sprintf("unsupported payload type %q", e.Type)
}
