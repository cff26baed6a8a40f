package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/orderlens/order-extract-backend/internal/extract/page"
	"github.com/orderlens/order-extract-backend/internal/extract/pipeline"
	"github.com/orderlens/order-extract-backend/internal/infrastructure/config"
	"github.com/orderlens/order-extract-backend/internal/infrastructure/logging"
	"github.com/orderlens/order-extract-backend/internal/infrastructure/storage"
)

// extract runs the pipeline over a captured page snapshot on disk and
// prints the extracted orders as JSON. Exit code 1 means nothing was
// found.
func main() {
	var (
		htmlPath      = flag.String("html", "", "Path to the captured page HTML (required)")
		globalsPath   = flag.String("globals", "", "Path to a JSON object of captured page globals")
		configFile    = flag.String("config", "", "Configuration file path")
		markProcessed = flag.Bool("mark-processed", false, "Record extracted orders in the database")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *htmlPath == "" {
		fmt.Fprintln(os.Stderr, "usage: extract -html <page.html> [-globals <globals.json>] [-mark-processed]")
		os.Exit(2)
	}

	var cfg *config.Config
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", *configFile, err)
			os.Exit(2)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrEnv()
	}
	if *verbose {
		cfg.Observability.Logging.Level = "debug"
	}

	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "pipeline")

	htmlSrc, err := os.ReadFile(*htmlPath)
	if err != nil {
		logger.Error("failed to read page html", slog.Any("error", err))
		os.Exit(2)
	}

	var globals map[string]json.RawMessage
	if *globalsPath != "" {
		data, err := os.ReadFile(*globalsPath)
		if err != nil {
			logger.Error("failed to read globals", slog.Any("error", err))
			os.Exit(2)
		}
		if err := json.Unmarshal(data, &globals); err != nil {
			logger.Error("globals file is not a JSON object", slog.Any("error", err))
			os.Exit(2)
		}
	}

	snap, err := page.NewSnapshot(string(htmlSrc), globals)
	if err != nil {
		logger.Error("failed to parse page html", slog.Any("error", err))
		os.Exit(2)
	}

	// advisory only: extraction proceeds regardless
	if !snap.LooksLikeOrderPage() {
		logger.Warn("page does not look like an order listing", slog.String("path", *htmlPath))
	}

	orchestrator := pipeline.New(cfg.Extraction.PipelineConfig(), snap, logger)

	started := time.Now()
	result := orchestrator.Extract(context.Background())
	elapsed := time.Since(started)

	if *markProcessed {
		store, err := storage.NewStorage(cfg.Storage.DatabasePath)
		if err != nil {
			logger.Error("failed to initialize storage", slog.Any("error", err))
			os.Exit(2)
		}
		defer func() { _ = store.Close() }()

		run := &storage.ExtractionRun{
			ID:         uuid.NewString(),
			CreatedAt:  started.UTC(),
			Strategy:   orchestrator.LastState().String(),
			DurationMS: elapsed.Milliseconds(),
		}
		if result != nil {
			run.OrderCount = len(result.Orders)
			for _, o := range result.Orders {
				if store.IsProcessed(o.OrderNumber) {
					run.Duplicates++
					continue
				}
				run.NewOrders++
				if err := store.SaveOrder(storage.RecordFromOrder(o, run.ID)); err != nil {
					logger.Error("failed to save order",
						slog.String("order_number", o.OrderNumber),
						slog.Any("error", err),
					)
				}
			}
		}
		if err := store.SaveRun(run); err != nil {
			logger.Error("failed to save extraction run", slog.Any("error", err))
		}
	}

	if result == nil {
		logger.Warn("no orders found", slog.Duration("elapsed", elapsed))
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("failed to encode result", slog.Any("error", err))
		os.Exit(2)
	}
	fmt.Println(string(out))

	logger.Info("extraction complete",
		slog.Int("orders", len(result.Orders)),
		slog.String("strategy", orchestrator.LastState().String()),
		slog.Duration("elapsed", elapsed),
	)
}
