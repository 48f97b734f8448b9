package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/capitol"
	"github.com/etnz/capitol/source"
	"github.com/google/subcommands"
)

type snapshotCmd struct {
	flags  Config
	output string
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "saves disclosures into a CSV snapshot" }
func (*snapshotCmd) Usage() string {
	return `snapshot [-input <file|url>] [-o <file>]

  Converts a disclosure source into the flat CSV snapshot used when the
  source is unavailable. Records are saved as is, without validation.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	c.flags.setFlags(f, "input", "json-path")
	f.StringVar(&c.output, "o", "sample_data.csv", "snapshot file to write")
}

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(&c.flags, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	loader := source.Open(cfg.Input, cfg.JSONPath, nil)
	records, err := loader.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load %s: %v\n", loader.Name(), err)
		return subcommands.ExitFailure
	}
	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", loader.Name(), capitol.ErrNoData)
		return subcommands.ExitFailure
	}
	if err := source.WriteSnapshotFile(c.output, records); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "✅ Successfully saved %d records from %s into %s.\n", len(records), loader.Name(), c.output)
	return subcommands.ExitSuccess
}
