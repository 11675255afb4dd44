// Package scbridge loads single-cell gene-by-cell count matrices from the
// common container formats and harmonizes their gene identifiers across
// vocabularies and species.
//
// Four container formats are recognized by extension: 10x Genomics HDF5
// (.h5), R serialized objects (.rds), h5Seurat (.h5seurat) and AnnData
// (.h5ad). Every container normalizes to a features-by-observations
// matrix.Matrix with row names, column names and optional per-observation
// metadata.
//
// Harmonization works against a reference homology table of aligned
// identifier columns: the query's vocabulary and species are detected by
// overlap sampling, then features are remapped onto the target species'
// column. Unmatched features are dropped and counted, not failed.
//
// # Quick start
//
//	ctx := context.Background()
//	bridge := scbridge.New(
//	    scbridge.WithSampleSize(5000),
//	    scbridge.WithRandSource(rand.NewSource(1)),
//	)
//
//	query, err := bridge.Load(ctx, "mouse_counts.h5ad")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	table, err := bridge.LoadHomologyTable(ctx, "https://example.org/homologs.rds")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := bridge.Harmonize(ctx, query, table, homology.SpeciesHuman)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("kept %d of %d features\n", res.Found, res.Attempted)
package scbridge
