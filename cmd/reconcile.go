package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/capitol"
	"github.com/etnz/capitol/renderer"
	"github.com/etnz/capitol/source"
	"github.com/google/subcommands"
	"github.com/ternarybob/arbor"
)

type reconcileCmd struct {
	flags       Config
	politicians string
	tickers     string
	kind        string
	json        bool
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "reconciles disclosed trades with market prices" }
func (*reconcileCmd) Usage() string {
	return `reconcile [-input <file|url>] [-horizons current,+1w,+1m] [-politician <names>] [-json]

  Loads politician trade disclosures, keeps the valid ones and evaluates each
  trade against the market prices of its ticker at every horizon.

  When the source is unavailable the last snapshot is used instead.

  Requires the EODHD_API_KEY environment variable to be set or the -eodhd-api-key flag.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	c.flags.setFlags(f, "input", "json-path", "snapshot", "cutoff", "horizons", "padding", "concurrency", "exchange", "disk-cache", "refresh")
	f.StringVar(&c.politicians, "politician", "", "comma separated politicians to show, all if empty")
	f.StringVar(&c.tickers, "ticker", "", "comma separated tickers to show, all if empty")
	f.StringVar(&c.kind, "kind", "", "show only 'buy' or 'sell' trades")
	f.BoolVar(&c.json, "json", false, "print the report as JSON")
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(&c.flags, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	horizons, err := cfg.ParsedHorizons()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	predicates, err := c.predicates()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	logger := newLogger()
	prices, err := newPriceClient(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	p := &capitol.Pipeline{
		Prices:      prices,
		Horizons:    horizons,
		Cutoff:      cfg.CutoffDate(),
		Padding:     cfg.Padding,
		Concurrency: cfg.Concurrency,
		Cache:       capitol.NewSeriesCache(cfg.SeriesTTL()),
		Logger:      logger,
	}
	loader := source.Open(cfg.Input, cfg.JSONPath, nil)

	interval := cfg.RefreshInterval()
	for {
		status := c.run(ctx, p, loader, cfg.Snapshot, predicates, logger)
		if interval <= 0 {
			return status
		}
		select {
		case <-ctx.Done():
			return subcommands.ExitSuccess
		case <-time.After(interval):
		}
	}
}

// run reconciles the trades once and prints the report.
func (c *reconcileCmd) run(ctx context.Context, p *capitol.Pipeline, loader source.Loader, snapshot string, predicates []capitol.Predicate, logger arbor.ILogger) subcommands.ExitStatus {
	records, origin, err := source.Load(ctx, loader, snapshot, logger)
	if errors.Is(err, capitol.ErrNoData) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", capitol.ErrNoData)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load disclosures: %v\n", err)
		return subcommands.ExitFailure
	}

	report, err := p.Run(ctx, records, origin)
	if errors.Is(err, capitol.ErrNoData) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", report.Note)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	report.Trades = capitol.Filter(report.Trades, predicates...)

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not encode report: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderReport(report))
	return subcommands.ExitSuccess
}

// predicates returns the filters selected by the flags.
func (c *reconcileCmd) predicates() ([]capitol.Predicate, error) {
	predicates := []capitol.Predicate{
		capitol.ByPolitician(splitList(c.politicians)...),
		capitol.ByTicker(splitList(c.tickers)...),
	}
	if c.kind != "" {
		kind := capitol.ParseKind(c.kind)
		if kind == capitol.Unknown {
			return nil, fmt.Errorf("invalid kind %q want 'buy' or 'sell'", c.kind)
		}
		predicates = append(predicates, capitol.ByKind(kind))
	}
	return predicates, nil
}
