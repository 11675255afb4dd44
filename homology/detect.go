package homology

import (
	"math/rand"
	"regexp"
	"time"
)

// DefaultSampleSize bounds the number of identifiers inspected during
// detection.
const DefaultSampleSize = 5000

// Versioned stable accessions ("ENSG00000141510.11") are compared without
// the version token.
var versionedAccession = regexp.MustCompile(`^(ENS[A-Z]*[0-9]+)\.[0-9]+$`)

// Detection is the outcome of identifier vocabulary detection.
type Detection struct {
	// Column is the homology-table column with the largest overlap.
	Column string
	// IDType is the column's vocabulary, its species suffix stripped.
	IDType string
	// Species encoded by the column name.
	Species Species
	// Overlap is the number of sampled identifiers found in the column.
	Overlap int
	// Sampled is the number of identifiers actually compared.
	Sampled int
}

// Detect finds the table column that best matches a list of feature names.
//
// Names are normalized first: empties are dropped and versioned accessions
// lose their version suffix. When more names remain than sampleSize
// (DefaultSampleSize if not positive), a random sample without replacement
// drawn from src is compared instead; lists at or under the limit are used
// whole, keeping the common case deterministic. Ties on overlap resolve to
// the earlier column in table order. Detect never fails; against an empty
// table it returns a zero Detection.
func Detect(names []string, t *Table, sampleSize int, src rand.Source) Detection {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if m := versionedAccession.FindStringSubmatch(name); m != nil {
			name = m[1]
		}
		cleaned = append(cleaned, name)
	}

	sample := cleaned
	if len(cleaned) > sampleSize {
		if src == nil {
			src = rand.NewSource(time.Now().UnixNano())
		}
		r := rand.New(src)
		sample = make([]string, 0, sampleSize)
		for _, i := range r.Perm(len(cleaned))[:sampleSize] {
			sample = append(sample, cleaned[i])
		}
	}
	sampleSet := make(map[string]struct{}, len(sample))
	for _, name := range sample {
		sampleSet[name] = struct{}{}
	}

	best := Detection{Sampled: len(sample)}
	for i, col := range t.Names() {
		ids := t.columns[col]
		colSet := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			colSet[id] = struct{}{}
		}
		overlap := 0
		for name := range sampleSet {
			if _, ok := colSet[name]; ok {
				overlap++
			}
		}
		if i == 0 || overlap > best.Overlap {
			best.Column = col
			best.IDType = IDTypeOf(col)
			best.Species = SpeciesOf(col)
			best.Overlap = overlap
		}
	}
	return best
}
