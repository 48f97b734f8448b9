// Command ptr reconciles the periodic transaction reports of US politicians
// with market prices.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"

	"github.com/etnz/capitol/cmd"
	"github.com/etnz/capitol/docs"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
var completion = &complete.Command{
	Flags: map[string]complete.Predictor{
		"config":        predict.Files("*.toml"),
		"log-level":     predict.Set{"debug", "info", "warn", "error"},
		"eodhd-api-key": predict.Something,
	},
	Sub: map[string]*complete.Command{
		"reconcile": {
			Flags: map[string]complete.Predictor{
				"input":       predict.Or(predict.Files("*.zip"), predict.Files("*.json"), predict.Files("*.csv")),
				"json-path":   predict.Something,
				"snapshot":    predict.Files("*.csv"),
				"cutoff":      predict.Something,
				"horizons":    predict.Set{"current", "+1d", "+1w", "+1m", "+1q", "+1y"},
				"padding":     predict.Something,
				"concurrency": predict.Something,
				"exchange":    predict.Set{"US", "LSE", "XETRA", "PA", "TO"},
				"disk-cache":  predict.Nothing,
				"refresh":     predict.Set{"5m", "15m", "1h"},
				"politician":  predict.Something,
				"ticker":      predict.Something,
				"kind":        predict.Set{"buy", "sell"},
				"json":        predict.Nothing,
			},
		},
		"snapshot": {
			Flags: map[string]complete.Predictor{
				"input":     predict.Or(predict.Files("*.zip"), predict.Files("*.json"), predict.Files("*.csv")),
				"json-path": predict.Something,
				"o":         predict.Files("*.csv"),
			},
		},
		"prices": {
			Flags: map[string]complete.Predictor{
				"t":          predict.Something,
				"from":       predict.Something,
				"to":         predict.Something,
				"on":         predict.Something,
				"exchange":   predict.Set{"US", "LSE", "XETRA", "PA", "TO"},
				"disk-cache": predict.Nothing,
			},
		},
		"topic": {
			Flags: map[string]complete.Predictor{"list": predict.Nothing},
			Args:  topics(),
		},
		"help":     {},
		"commands": {},
		"flags":    {},
	},
}

// topics predicts the documentation topics.
func topics() complete.Predictor {
	all, err := docs.All()
	if err != nil {
		return predict.Nothing
	}
	return predict.Set(append(all, "*"))
}

func main() {
	name := path.Base(os.Args[0])
	// Exits when invoked by the shell for completion.
	completion.Complete(name)

	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
