// Package cmd implements the CLI application reconciling politician trade
// disclosures with market prices.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/capitol/eodhd"
	"github.com/google/subcommands"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reconcileCmd{}, "trades")
	c.Register(&snapshotCmd{}, "trades")
	c.Register(&pricesCmd{}, "prices")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to a TOML configuration file, flags take precedence over it")
var logLevel = flag.String("log-level", "warn", "Log level: debug, info, warn or error")
var eodhdAPIFlag = flag.String("eodhd-api-key", "", "EODHD API key to use for consuming EODHD.com API. This flag takes precedence over the "+eodhdAPIKeyEnv+" environment variable. You can get one at https://eodhd.com/")

const eodhdAPIKeyEnv = "EODHD_API_KEY"

// eodhdAPIKey retrieves the EODHD API key from the command-line flag or the environment variable.
// It prioritizes the flag over the environment variable.
func eodhdAPIKey() string {
	if *eodhdAPIFlag != "" {
		return *eodhdAPIFlag
	}
	return os.Getenv(eodhdAPIKeyEnv)
}

// newLogger returns the console logger of the application.
func newLogger() arbor.ILogger {
	return arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:       arbor_models.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
	}).WithLevelFromString(*logLevel)
}

// newPriceClient returns the EODHD client configured by cfg.
func newPriceClient(cfg *Config, logger arbor.ILogger) (*eodhd.Client, error) {
	key := eodhdAPIKey()
	if key == "" {
		return nil, fmt.Errorf("EODHD API key is not set. Use -eodhd-api-key flag or %s environment variable", eodhdAPIKeyEnv)
	}
	opts := []eodhd.ClientOption{
		eodhd.WithLogger(logger),
		eodhd.WithExchange(cfg.Exchange),
		eodhd.WithRateLimit(cfg.RateLimit),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, eodhd.WithBaseURL(cfg.BaseURL))
	}
	if cfg.DiskCache {
		opts = append(opts, eodhd.WithDiskCache(cfg.CacheDir, cfg.DiskCachePeriod()))
	}
	return eodhd.NewClient(key, opts...), nil
}

// printMarkdown prints md to the standard output, rendered for the terminal
// when possible.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(160))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// splitList splits a comma separated list, ignoring empty items.
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
