package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/capitol"
	"github.com/etnz/capitol/date"
	"github.com/etnz/capitol/renderer"
	"github.com/google/subcommands"
)

type pricesCmd struct {
	flags  Config
	ticker string
	from   string
	to     string
	on     string
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "display the closing prices of a ticker" }
func (*pricesCmd) Usage() string {
	return `prices -t <ticker> [-from <date>] [-to <date>] [-on <date>]

  Displays the daily closes of a ticker, by default over the last 30 days.
  With -on, also shows the trading day nearest to that date, as used for
  purchase prices.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	c.flags.setFlags(f, "exchange", "disk-cache")
	f.StringVar(&c.ticker, "t", "", "ticker to display")
	f.StringVar(&c.from, "from", "", "first day (YYYY-MM-DD)")
	f.StringVar(&c.to, "to", "", "last day (YYYY-MM-DD), defaults to today")
	f.StringVar(&c.on, "on", "", "show the trading day nearest to this date")
}

// window returns the range of days to display.
func (c *pricesCmd) window(today date.Date) (r date.Range, on date.Date, err error) {
	r = date.Range{From: today.Add(-30), To: today}
	if c.on != "" {
		if on, err = date.Parse(c.on); err != nil {
			return r, on, err
		}
		r = date.Range{From: on, To: on}.Pad(capitol.DefaultPadding, capitol.DefaultPadding)
	}
	if c.from != "" {
		if r.From, err = date.Parse(c.from); err != nil {
			return r, on, err
		}
	}
	if c.to != "" {
		if r.To, err = date.Parse(c.to); err != nil {
			return r, on, err
		}
	}
	if r.To.Before(r.From) {
		return r, on, fmt.Errorf("empty range %v", r)
	}
	return r.Clamp(today), on, nil
}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if strings.TrimSpace(c.ticker) == "" {
		fmt.Fprintln(os.Stderr, "-t is required")
		return subcommands.ExitUsageError
	}
	window, on, err := c.window(date.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig(&c.flags, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	client, err := newPriceClient(cfg, newLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	series, err := capitol.BuildSeries(ctx, client, strings.ToUpper(c.ticker), window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderPrices(series, on))
	return subcommands.ExitSuccess
}
