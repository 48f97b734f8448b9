package capitol

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/etnz/capitol/date"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"
)

// ErrNoData is returned when no raw record survives normalization.
var ErrNoData = errors.New("no data available")

// DefaultPadding is the default number of days of slack around the
// transaction dates when fetching prices.
const DefaultPadding = 7

// DefaultConcurrency is the default number of tickers fetched in parallel.
const DefaultConcurrency = 4

// Pipeline reconciles a batch of raw disclosure records with prices.
//
// Prices is required. Each ticker's prices are fetched over the span of its
// transaction dates, widened by Padding days on both sides (and by the longest
// horizon on the right) so that the nearest trading day is always inside the
// fetched window.
type Pipeline struct {
	Prices      PriceFetcher
	Horizons    []Horizon    // DefaultHorizons if empty
	Cutoff      date.Date    // earliest transaction date, none if zero
	Padding     int          // days of slack around transaction dates
	Concurrency int          // DefaultConcurrency if <= 0
	AsOf        date.Date    // date of the run, today if zero
	Cache       *SeriesCache // optional
	Logger      arbor.ILogger
}

// Report is the result of a Pipeline run.
//
// Rejected counts the discarded raw records by reason, Unavailable lists the
// tickers without any price, and Note is a human readable status describing
// the data actually used.
type Report struct {
	RunID       string          `json:"runId"`
	AsOf        date.Date       `json:"asOf"`
	Origin      Origin          `json:"origin"`
	Horizons    []string        `json:"horizons"`
	Trades      []EnrichedTrade `json:"trades"`
	Rejected    map[Reason]int  `json:"rejected,omitempty"`
	Unavailable []string        `json:"unavailable,omitempty"`
	Note        string          `json:"note"`
}

// Run normalizes records, fetches each ticker's prices once, enriches every
// trade and returns them most recent first.
//
// Price failures only affect the trades of the ticker concerned. The only
// batch failure is ErrNoData, in which case the report is still returned
// with its rejection counts and note.
func (p *Pipeline) Run(ctx context.Context, records []RawRecord, origin Origin) (*Report, error) {
	asOf := p.AsOf
	if asOf.IsZero() {
		asOf = date.Today()
	}
	horizons := p.Horizons
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}
	report := &Report{
		RunID:    uuid.NewString(),
		AsOf:     asOf,
		Origin:   origin,
		Rejected: make(map[Reason]int),
	}
	for _, h := range horizons {
		report.Horizons = append(report.Horizons, h.Label)
	}

	trades := p.normalize(records, report.Rejected)
	if len(trades) == 0 {
		report.Note = report.note(len(records))
		p.warn(ErrNoData, "", "No trade survived normalization")
		return report, ErrNoData
	}

	byTicker := make(map[string][]Trade)
	for _, t := range trades {
		byTicker[t.Ticker] = append(byTicker[t.Ticker], t)
	}

	series, err := p.fetchAll(ctx, byTicker, horizons, asOf)
	if err != nil {
		return nil, err
	}

	report.Trades = make([]EnrichedTrade, 0, len(trades))
	for _, t := range trades {
		report.Trades = append(report.Trades, Enrich(t, series[t.Ticker], horizons, asOf))
	}
	for ticker, s := range series {
		if s.Len() == 0 {
			report.Unavailable = append(report.Unavailable, ticker)
		}
	}
	slices.Sort(report.Unavailable)
	SortTrades(report.Trades)

	report.Note = report.note(len(records))
	if p.Logger != nil {
		p.Logger.Info().
			Str("run_id", report.RunID).
			Int("records", len(records)).
			Int("trades", len(report.Trades)).
			Int("tickers", len(series)).
			Int("unavailable", len(report.Unavailable)).
			Msg("Reconciliation complete")
	}
	return report, nil
}

// normalize returns the surviving trades, counting the rejected ones.
func (p *Pipeline) normalize(records []RawRecord, rejected map[Reason]int) []Trade {
	n := Normalizer{Cutoff: p.Cutoff}
	trades := make([]Trade, 0, len(records))
	for _, raw := range records {
		t, err := n.Normalize(raw)
		var rej *Rejection
		if errors.As(err, &rej) {
			rejected[rej.Reason]++
			continue
		}
		trades = append(trades, t)
	}
	return trades
}

// fetchAll builds one series per ticker, concurrently.
//
// It only fails if ctx is cancelled: fetch failures give empty series.
func (p *Pipeline) fetchAll(ctx context.Context, byTicker map[string][]Trade, horizons []Horizon, asOf date.Date) (map[string]*Series, error) {
	span, current := 0, false
	for _, h := range horizons {
		span = max(span, h.Span())
		current = current || h.IsCurrent()
	}
	limit := p.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var mu sync.Mutex
	result := make(map[string]*Series, len(byTicker))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	// sorted for reproducible fetch order, and logs.
	for _, ticker := range slices.Sorted(maps.Keys(byTicker)) {
		window, ok := p.window(byTicker[ticker], span, current, asOf)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := NewSeries(ticker, nil)
			if ok {
				s = p.series(ctx, ticker, window)
			}
			mu.Lock()
			result[ticker] = s
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reconciliation cancelled: %w", err)
	}
	return result, nil
}

// window returns the dates to fetch for trades of a single ticker.
//
// It reaches asOf when the current price is needed. ok is false when the
// window is empty: all trades are too far after asOf to have any price.
func (p *Pipeline) window(trades []Trade, span int, current bool, asOf date.Date) (r date.Range, ok bool) {
	days := make([]date.Date, len(trades))
	for i, t := range trades {
		days[i] = t.Date
	}
	r, _ = date.Span(days...)
	r = r.Pad(p.Padding, span+p.Padding)
	if current {
		r.To = asOf
	}
	r = r.Clamp(asOf)
	return r, !r.To.Before(r.From)
}

// series returns the prices of ticker over window, from the cache if possible.
func (p *Pipeline) series(ctx context.Context, ticker string, window date.Range) *Series {
	if s, ok := p.Cache.Get(ticker, window); ok {
		return s
	}
	s, err := BuildSeries(ctx, p.Prices, ticker, window)
	if err != nil {
		// A failed fetch is not cached, next run may succeed.
		p.warn(err, ticker, "Price unavailable")
		return s
	}
	if s.Len() == 0 && p.Logger != nil {
		p.Logger.Debug().Str("ticker", ticker).Str("window", window.String()).Msg("No price returned")
	}
	p.Cache.Put(window, s)
	return s
}

func (p *Pipeline) warn(err error, ticker, msg string) {
	if p.Logger == nil {
		return
	}
	if ticker == "" {
		p.Logger.Warn().Err(err).Msg(msg)
		return
	}
	p.Logger.Warn().Err(err).Str("ticker", ticker).Msg(msg)
}

// note returns a human readable status of the run.
func (r *Report) note(records int) string {
	var b strings.Builder
	switch {
	case r.Origin.Fallback:
		fmt.Fprintf(&b, "Primary source unavailable, using snapshot %s: %d trades", r.Origin.Name, len(r.Trades))
	default:
		fmt.Fprintf(&b, "Loaded %d trades from %s", len(r.Trades), r.Origin.Name)
	}
	if skipped := records - len(r.Trades); skipped > 0 {
		fmt.Fprintf(&b, ", %d records skipped", skipped)
		reasons := slices.Sorted(maps.Keys(r.Rejected))
		parts := make([]string, 0, len(reasons))
		for _, reason := range reasons {
			parts = append(parts, fmt.Sprintf("%s: %d", reason, r.Rejected[reason]))
		}
		if len(parts) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
		}
	}
	if n := len(r.Unavailable); n > 0 {
		fmt.Fprintf(&b, ", no price for %d tickers", n)
	}
	if len(r.Trades) == 0 {
		b.WriteString(": ")
		b.WriteString(ErrNoData.Error())
	}
	return b.String()
}
