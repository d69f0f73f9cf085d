package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/variance-drafts/internal/app"
	"github.com/joseph-ayodele/variance-drafts/internal/batch"
	"github.com/joseph-ayodele/variance-drafts/internal/common"
	"github.com/joseph-ayodele/variance-drafts/internal/export"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory to process (required)")
		out        = flag.String("out", "", "JSON lines output file (default stdout)")
		xlsxDir    = flag.String("xlsx-dir", "", "write one XLSX export per document here (default OUTPUT_DIR)")
		exts       = flag.String("ext", "", "comma separated extensions to include (default all supported)")
		workers    = flag.Int("workers", 0, "parallel documents (default BATCH_WORKERS)")
		categories = flag.String("categories", "", "cost code to category table (CSV/XLSX)")
		vendors    = flag.String("vendors", "", "project cost code vendor table (CSV/XLSX)")
		orders     = flag.String("change-orders", "", "change order table (CSV/XLSX)")
		watch      = flag.Bool("watch", false, "keep running and process files as they appear")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}
	if *xlsxDir == "" {
		*xlsxDir = cfg.Batch.OutputDir
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := app.NewEngine(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize engine", "error", err)
		os.Exit(1)
	}
	opts, err := eng.Options(ctx, cfg, app.RefPaths{Categories: *categories, Vendors: *vendors, ChangeOrders: *orders})
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	var include []string
	if *exts != "" {
		include = strings.Split(*exts, ",")
	}
	runner := batch.New(batch.Config{
		Workers:     cfg.Batch.Workers,
		DocTimeout:  cfg.Batch.DocTimeout,
		SkipHidden:  cfg.Batch.SkipHidden,
		IncludeExts: include,
	}, eng, logger)

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Error("failed to create output", "path", *out, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if *watch {
		logger.Info("watching", "dir", *dir, "workers", cfg.Batch.Workers)
		ch, err := runner.StartWatch(ctx, *dir, opts, batch.WatchConfig{InitialScan: true})
		if err != nil {
			logger.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
		for o := range ch {
			if err := enc.Encode(o); err != nil {
				logger.Error("failed to write outcome", "path", o.Path, "error", err)
			}
			if *xlsxDir != "" {
				writeExports(logger, *xlsxDir, []batch.Outcome{o})
			}
		}
		return
	}

	logger.Info("starting batch", "dir", *dir, "workers", cfg.Batch.Workers)
	outcomes, stats, runErr := runner.RunDirectory(ctx, *dir, opts)
	for _, o := range outcomes {
		if err := enc.Encode(o); err != nil {
			logger.Error("failed to write outcome", "path", o.Path, "error", err)
		}
	}

	if *xlsxDir != "" {
		writeExports(logger, *xlsxDir, outcomes)
	}

	logger.Info("batch complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"timed_out", stats.TimedOut,
		"failed", stats.Failed,
	)
	if runErr != nil {
		logger.Error("batch interrupted", "error", runErr)
		os.Exit(2)
	}
}

func writeExports(logger *slog.Logger, dir string, outcomes []batch.Outcome) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("failed to create export dir", "dir", dir, "error", err)
		return
	}
	svc := export.NewService(logger)
	for _, o := range outcomes {
		if o.Result == nil || o.Deduplicated {
			continue
		}
		b, err := svc.ResultXLSX(*o.Result, o.Path)
		if err != nil {
			logger.Error("failed to export", "path", o.Path, "error", err)
			continue
		}
		name := strings.TrimSuffix(filepath.Base(o.Path), filepath.Ext(o.Path)) + "_" + o.SHA256[:8] + ".xlsx"
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			logger.Error("failed to write export", "path", name, "error", err)
		}
	}
}
