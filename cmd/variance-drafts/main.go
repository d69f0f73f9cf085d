package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/joseph-ayodele/variance-drafts/internal/app"
	"github.com/joseph-ayodele/variance-drafts/internal/common"
	"github.com/joseph-ayodele/variance-drafts/internal/entity"
	"github.com/joseph-ayodele/variance-drafts/internal/export"
	"github.com/joseph-ayodele/variance-drafts/internal/refdata"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		file       = flag.String("file", "", "document to extract (required)")
		mime       = flag.String("mime", "", "declared MIME type of the document (optional)")
		out        = flag.String("out", "", "also write the result as an XLSX workbook to this path")
		categories = flag.String("categories", "", "cost code to category table (CSV/XLSX)")
		vendors    = flag.String("vendors", "", "project cost code vendor table (CSV/XLSX)")
		orders     = flag.String("change-orders", "", "change order table (CSV/XLSX)")
		pct        = flag.Float64("materiality-pct", -1, "materiality percentage threshold (default MATERIALITY_PCT)")
		amount     = flag.Float64("materiality-amount", -1, "materiality amount threshold (default MATERIALITY_AMOUNT)")
		asProto    = flag.Bool("proto", false, "print the result as protobuf Struct JSON")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	if *file == "" {
		printError("Error: --file is required\n")
		os.Exit(1)
	}

	_ = godotenv.Load()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *pct >= 0 {
		cfg.Engine.MaterialityPct = *pct
	}
	if *amount >= 0 {
		cfg.Engine.MaterialityAmount = *amount
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

	raw, err := refdata.ReadFile(*file)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	raw.DeclaredMIME = *mime

	res, err := eng.Process(ctx, raw, opts)
	if err != nil {
		st := status.Convert(common.ToStatus(err))
		printError("Error: %s (%s)\n", st.Message(), st.Code())
		os.Exit(2)
	}

	if err := printResult(res, *asProto); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	if *out != "" {
		b, err := export.NewService(logger).ResultXLSX(res, *file)
		if err != nil {
			logger.Error("failed to export result", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, b, 0o644); err != nil {
			logger.Error("failed to write export", "path", *out, "error", err)
			os.Exit(1)
		}
		logger.Info("export written", "path", *out)
	}
}

func printResult(res entity.Result, asProto bool) error {
	if asProto {
		s, err := res.ToStruct()
		if err != nil {
			return err
		}
		b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
		if err != nil {
			return err
		}
		_, err = fmt.Println(string(b))
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}
