// Package app wires configuration into an engine and per-call options for
// the command-line tools.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/variance-drafts/internal/common"
	"github.com/joseph-ayodele/variance-drafts/internal/llm"
	"github.com/joseph-ayodele/variance-drafts/internal/llm/openai"
	"github.com/joseph-ayodele/variance-drafts/internal/loader"
	"github.com/joseph-ayodele/variance-drafts/internal/pipeline"
	"github.com/joseph-ayodele/variance-drafts/internal/refdata"
	"github.com/joseph-ayodele/variance-drafts/internal/rules"
)

// RefPaths names the optional reference tables passed on the command line.
type RefPaths struct {
	Categories   string
	Vendors      string
	ChangeOrders string
}

// Engine holds the wired engine and the reference loader sharing its rules.
type Engine struct {
	*pipeline.Engine
	Rules   *rules.Rules
	RefData *refdata.Loader
}

func NewEngine(cfg *common.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := rules.Default()
	if cfg.Engine.RulesPath != "" {
		loaded, err := rules.Load(cfg.Engine.RulesPath)
		if err != nil {
			return nil, common.WrapError(err, "load rules")
		}
		r = loaded
		logger.Info("rules loaded", "path", cfg.Engine.RulesPath)
	}

	var extractor llm.ItemExtractor
	if cfg.LLM.Enabled && cfg.LLM.APIKey != "" {
		extractor = openai.NewClient(openai.Config{
			APIKey:          cfg.LLM.APIKey,
			BaseURL:         cfg.LLM.BaseURL,
			Model:           cfg.LLM.Model,
			Temperature:     cfg.LLM.Temperature,
			Timeout:         cfg.LLM.Timeout,
			MaxChars:        cfg.LLM.MaxChars,
			DefaultCurrency: cfg.Engine.DefaultCurrency,
			LenientOptional: true,
		}, logger)
		logger.Info("OpenAI client initialized", "model", cfg.LLM.Model)
	} else if cfg.LLM.Enabled {
		logger.Warn("OpenAI API key not configured, model fallback will be skipped")
	}

	lcfg := loader.Config{
		FallbackEncoding: cfg.Loader.FallbackEncoding,
		PDFTimeout:       cfg.Loader.PDFTimeout,
		MaxPages:         cfg.Loader.PDFMaxPages,
		Pdftotext:        cfg.Loader.Pdftotext,
	}
	eng := pipeline.NewEngine(pipeline.Config{
		Loader:       lcfg,
		SnippetChars: cfg.Engine.SnippetChars,
		LLMMaxChars:  cfg.LLM.MaxChars,
	}, r, extractor, logger)

	return &Engine{
		Engine:  eng,
		Rules:   r,
		RefData: refdata.New(loader.New(lcfg, logger), r, logger),
	}, nil
}

// Options builds per-call options from config thresholds and any reference
// tables named in paths.
func (e *Engine) Options(ctx context.Context, cfg *common.Config, paths RefPaths) (pipeline.Options, error) {
	opts := pipeline.Options{
		MaterialityPct:    cfg.Engine.MaterialityPct,
		MaterialityAmount: cfg.Engine.MaterialityAmount,
	}
	if paths.Categories != "" {
		raw, err := refdata.ReadFile(paths.Categories)
		if err != nil {
			return opts, err
		}
		if opts.CategoryMap, err = e.RefData.CategoryMap(ctx, raw); err != nil {
			return opts, fmt.Errorf("categories: %w", err)
		}
	}
	if paths.Vendors != "" {
		raw, err := refdata.ReadFile(paths.Vendors)
		if err != nil {
			return opts, err
		}
		if opts.VendorMap, err = e.RefData.VendorMap(ctx, raw); err != nil {
			return opts, fmt.Errorf("vendors: %w", err)
		}
	}
	if paths.ChangeOrders != "" {
		raw, err := refdata.ReadFile(paths.ChangeOrders)
		if err != nil {
			return opts, err
		}
		if opts.ChangeOrders, err = e.RefData.ChangeOrders(ctx, raw); err != nil {
			return opts, fmt.Errorf("change orders: %w", err)
		}
	}
	return opts, nil
}
