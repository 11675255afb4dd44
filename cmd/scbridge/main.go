// Command scbridge loads a single-cell counts container, harmonizes its
// gene identifiers against a reference homology table and reports coverage.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/croghan-lab/scbridge"
	"github.com/croghan-lab/scbridge/homology"
	"github.com/croghan-lab/scbridge/matrix"
	"github.com/croghan-lab/scbridge/notify"
)

func main() {
	var (
		queryPath   = flag.String("query", "", "counts container (.h5, .rds, .h5seurat, .h5ad)")
		tableLoc    = flag.String("table", "", "homology table location (path, http(s):// or s3://)")
		species     = flag.String("species", "human", "target species: human or mouse")
		minCells    = flag.Int("min-cells", 1, "keep features detected in at least this many observations")
		minFeatures = flag.Int("min-features", 1, "keep observations with at least this many detected features")
		seed        = flag.Int64("seed", 0, "detection sampling seed, 0 for time-based")
		timeout     = flag.Duration("timeout", homology.DefaultTimeout, "remote fetch timeout")
		strict      = flag.Bool("strict", false, "fail on any probe status >= 400")
		jsonLogs    = flag.Bool("json", false, "log in JSON")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *queryPath == "" || *tableLoc == "" {
		flag.Usage()
		os.Exit(2)
	}
	target := homology.SpeciesHuman
	switch *species {
	case "human":
	case "mouse":
		target = homology.SpeciesMouse
	default:
		fmt.Fprintf(os.Stderr, "unknown species %q\n", *species)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := scbridge.NewTextLogger(level)
	if *jsonLogs {
		logger = scbridge.NewJSONLogger(level)
	}

	src := rand.NewSource(time.Now().UnixNano())
	if *seed != 0 {
		src = rand.NewSource(*seed)
	}

	bridge := scbridge.New(
		scbridge.WithLogger(logger),
		scbridge.WithNotifier(notify.NewLogNotifier(logger.Logger)),
		scbridge.WithRandSource(src),
		scbridge.WithMinCells(*minCells),
		scbridge.WithMinFeatures(*minFeatures),
		scbridge.WithHTTPTimeout(*timeout),
		scbridge.WithStrictProbe(*strict),
	)

	ctx := context.Background()
	if err := run(ctx, bridge, *queryPath, *tableLoc, target); err != nil {
		logger.ErrorContext(ctx, "harmonization failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, bridge *scbridge.Bridge, queryPath, tableLoc string, target homology.Species) error {
	var (
		query *matrix.Matrix
		table *homology.Table
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		query, err = bridge.Load(gctx, queryPath)
		return err
	})
	g.Go(func() error {
		var err error
		table, err = bridge.LoadHomologyTable(gctx, tableLoc)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	res, err := bridge.Harmonize(ctx, query, table, target)
	if err != nil {
		return err
	}

	rows, cols := res.Matrix.Dims()
	fmt.Printf("detected %s (%s, overlap %d/%d)\n",
		res.Detection.Column, res.Detection.Species, res.Detection.Overlap, res.Detection.Sampled)
	fmt.Printf("harmonized %d of %d features, %d x %d matrix, structure score %.2f\n",
		res.Found, res.Attempted, rows, cols, res.Score)
	return nil
}
