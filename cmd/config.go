package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/etnz/capitol"
	"github.com/etnz/capitol/date"
	"github.com/etnz/capitol/eodhd"
	"github.com/etnz/capitol/source"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the settings of the commands.
//
// It is read from an optional TOML file, then overridden by the flags
// explicitly set on the command line.
type Config struct {
	Input       string   `toml:"input" validate:"required"`
	JSONPath    string   `toml:"json_path"`
	Snapshot    string   `toml:"snapshot"`
	Cutoff      string   `toml:"cutoff" validate:"omitempty,datetime=2006-01-02"`
	Horizons    []string `toml:"horizons" validate:"dive,horizon"`
	Padding     int      `toml:"padding" validate:"gte=0,lte=366"`
	Concurrency int      `toml:"concurrency" validate:"gte=1,lte=64"`
	Exchange    string   `toml:"exchange" validate:"required,alphanum"`
	BaseURL     string   `toml:"base_url" validate:"omitempty,url"`
	RateLimit   int      `toml:"rate_limit" validate:"gte=1"`
	DiskCache   bool     `toml:"disk_cache"`
	CacheDir    string   `toml:"cache_dir"`
	CachePeriod string   `toml:"cache_period" validate:"period"`
	CacheTTL    string   `toml:"cache_ttl" validate:"ttl"`
	Refresh     string   `toml:"refresh" validate:"omitempty,duration"`
}

// DefaultConfig returns the configuration used when neither a file nor a
// flag says otherwise.
func DefaultConfig() *Config {
	today := date.Today()
	return &Config{
		Input:       source.HouseClerkURL(today.Year()),
		JSONPath:    source.DefaultJSONPath,
		Snapshot:    "sample_data.csv",
		Cutoff:      today.StartOf(date.Yearly).String(),
		Horizons:    []string{capitol.Current},
		Padding:     capitol.DefaultPadding,
		Concurrency: capitol.DefaultConcurrency,
		Exchange:    eodhd.DefaultExchange,
		RateLimit:   eodhd.DefaultRateLimit,
		DiskCache:   true,
		CachePeriod: date.Daily.String(),
		CacheTTL:    "15m",
	}
}

// LoadConfig returns the default configuration overridden by the TOML file,
// if any.
func LoadConfig(file string) (*Config, error) {
	cfg := DefaultConfig()
	if file == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", file, err)
	}
	return cfg, nil
}

var validate = newValidator()

// parseTTL accepts positive durations only.
func parseTTL(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("ttl %v is not positive", d)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	custom := map[string]func(string) error{
		"horizon":  func(s string) error { _, err := capitol.ParseHorizon(s); return err },
		"period":   func(s string) error { _, err := date.ParsePeriod(s); return err },
		"duration": func(s string) error { _, err := time.ParseDuration(s); return err },
		"ttl":      parseTTL,
	}
	for tag, parse := range custom {
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return parse(fl.Field().String()) == nil
		})
		if err != nil {
			panic(err)
		}
	}
	return v
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// CutoffDate returns the earliest transaction date, zero if none.
func (c *Config) CutoffDate() date.Date {
	d, _ := date.Parse(c.Cutoff)
	return d
}

// ParsedHorizons returns the evaluation horizons.
func (c *Config) ParsedHorizons() ([]capitol.Horizon, error) {
	return capitol.ParseHorizons(c.Horizons...)
}

// DiskCachePeriod returns how long EODHD responses are kept on disk.
func (c *Config) DiskCachePeriod() date.Period {
	p, _ := date.ParsePeriod(c.CachePeriod)
	return p
}

// SeriesTTL returns how long price series are memoized between refreshes.
func (c *Config) SeriesTTL() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

// RefreshInterval returns the interval between two reconciliations, 0 to run once.
func (c *Config) RefreshInterval() time.Duration {
	d, _ := time.ParseDuration(c.Refresh)
	return d
}

// setFlags registers the flags of the named settings, bound to c.
func (c *Config) setFlags(f *flag.FlagSet, names ...string) {
	def := DefaultConfig()
	for _, name := range names {
		switch name {
		case "input":
			f.StringVar(&c.Input, name, def.Input, "disclosure source: a .zip, .json or .csv file or http(s) address")
		case "json-path":
			f.StringVar(&c.JSONPath, name, def.JSONPath, "jsonpath expression selecting the records of a JSON source")
		case "snapshot":
			f.StringVar(&c.Snapshot, name, def.Snapshot, "CSV snapshot used when the source is unavailable, refreshed otherwise. Empty to disable")
		case "cutoff":
			f.StringVar(&c.Cutoff, name, def.Cutoff, "earliest transaction date (YYYY-MM-DD), empty for none")
		case "horizons":
			c.Horizons = def.Horizons
			f.Func(name, "comma separated evaluation horizons: current, +1d, +2w, +1m, +1q, +1y (default \"current\")", func(s string) error {
				c.Horizons = splitList(s)
				return nil
			})
		case "padding":
			f.IntVar(&c.Padding, name, def.Padding, "days of prices fetched around transaction dates")
		case "concurrency":
			f.IntVar(&c.Concurrency, name, def.Concurrency, "number of tickers fetched in parallel")
		case "exchange":
			f.StringVar(&c.Exchange, name, def.Exchange, "EODHD exchange code of the tickers")
		case "disk-cache":
			f.BoolVar(&c.DiskCache, name, def.DiskCache, "cache EODHD responses on disk")
		case "refresh":
			f.StringVar(&c.Refresh, name, def.Refresh, "run again at this interval (e.g. 10m) until interrupted")
		default:
			panic(fmt.Sprintf("unknown setting %q", name))
		}
	}
}

// override sets the settings whose flag was explicitly set in f from flags.
func (c *Config) override(flags *Config, f *flag.FlagSet) {
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "input":
			c.Input = flags.Input
		case "json-path":
			c.JSONPath = flags.JSONPath
		case "snapshot":
			c.Snapshot = flags.Snapshot
		case "cutoff":
			c.Cutoff = flags.Cutoff
		case "horizons":
			c.Horizons = flags.Horizons
		case "padding":
			c.Padding = flags.Padding
		case "concurrency":
			c.Concurrency = flags.Concurrency
		case "exchange":
			c.Exchange = flags.Exchange
		case "disk-cache":
			c.DiskCache = flags.DiskCache
		case "refresh":
			c.Refresh = flags.Refresh
		}
	})
}

// loadConfig returns the configuration of a command: the configuration file
// overridden by the flags set in f.
func loadConfig(flags *Config, f *flag.FlagSet) (*Config, error) {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	cfg.override(flags, f)
	cfg.Exchange = strings.ToUpper(cfg.Exchange)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
