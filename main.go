package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/AhmedRagabRG/scraper/config"
	"github.com/AhmedRagabRG/scraper/models"
	"github.com/AhmedRagabRG/scraper/scraper/gmaps"
	"github.com/AhmedRagabRG/scraper/server"
	"github.com/AhmedRagabRG/scraper/storage"
	"github.com/AhmedRagabRG/scraper/utils"
)

func main() {
	var (
		query    = flag.String("query", "", "search query for business extraction")
		placeURL = flag.String("url", "", "place URL for review extraction")
		reviews  = flag.Bool("reviews", false, "extract reviews instead of businesses (requires -url)")
		output   = flag.String("output", "", "CSV output path (default: <output dir>/results.csv)")
		max      = flag.Int("max", 0, "cap on extracted records (0 = no cap)")
		headless = flag.Bool("headless", true, "run the browser headless")
		serve    = flag.Bool("serve", false, "start the HTTP job API instead of a one-shot run")
	)
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()
	cfg.Headless = *headless

	if *serve {
		runServer(cfg, logger)
		return
	}

	target, err := buildTarget(*query, *placeURL, *reviews, *max)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	outPath := *output
	if outPath == "" {
		outPath = filepath.Join(cfg.CSVOutputDir, "results.csv")
	}

	if err := runOnce(cfg, logger, target, outPath); err != nil {
		logger.Error("Run failed: %v", err)
		os.Exit(1)
	}
}

func buildTarget(query, placeURL string, reviews bool, max int) (models.ExtractionTarget, error) {
	if reviews {
		if placeURL == "" {
			return models.ExtractionTarget{}, fmt.Errorf("-reviews requires -url")
		}
		return models.ExtractionTarget{Kind: models.TargetReview, Query: placeURL, Cap: max}, nil
	}
	if query == "" {
		return models.ExtractionTarget{}, fmt.Errorf("either -query or -reviews with -url is required")
	}
	return models.ExtractionTarget{Kind: models.TargetBusiness, Query: query, Cap: max}, nil
}

// runOnce executes a single extraction and streams accepted records to CSV.
func runOnce(cfg *config.Config, logger *utils.Logger, target models.ExtractionTarget, outPath string) error {
	logger.Info("=== Lead extraction starting ===")

	csvWriter, err := storage.NewCSVWriter(outPath, target.Kind)
	if err != nil {
		return err
	}
	defer csvWriter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := func(rec models.Record, progress models.RunProgress) error {
		return csvWriter.WriteRecord(rec)
	}

	runner := gmaps.NewRunner(cfg, logger)
	result, err := runner.Run(ctx, target, sink)
	if err != nil {
		return err
	}

	logger.Info("Extracted %d records (%d duplicates removed) → %s",
		result.Summary.TotalAccepted, result.Summary.DuplicatesRemoved, outPath)

	if result.Place != nil && result.Place.PlaceName != "" {
		logger.Info("Place: %s", result.Place.PlaceName)
	}
	return nil
}

// runServer starts the HTTP job API. PostgreSQL is optional: without it,
// results are served from CSV downloads only.
func runServer(cfg *config.Config, logger *utils.Logger) {
	var store storage.JobStore
	if pg, err := storage.NewPostgresStore(cfg.DSN()); err != nil {
		logger.Warn("PostgreSQL unavailable (%v) — running without persistence", err)
	} else {
		store = pg
		defer pg.Close()
	}

	srv := server.New(cfg, logger, store)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Server stopped: %v", err)
		os.Exit(1)
	}
}
