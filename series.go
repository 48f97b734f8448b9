package capitol

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/etnz/capitol/date"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// PricePoint is the closing price of a ticker on a trading day.
type PricePoint struct {
	Date  date.Date       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// PriceFetcher is the price history collaborator.
//
// FetchPrices returns the daily closes of ticker between from and to
// (included) in any order. A ticker without data is not an error: it returns
// an empty slice.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, ticker string, from, to date.Date) ([]PricePoint, error)
}

// PriceFetcherFunc adapts a function to the PriceFetcher interface.
type PriceFetcherFunc func(ctx context.Context, ticker string, from, to date.Date) ([]PricePoint, error)

func (f PriceFetcherFunc) FetchPrices(ctx context.Context, ticker string, from, to date.Date) ([]PricePoint, error) {
	return f(ctx, ticker, from, to)
}

// Series is the chronological closing prices of a single ticker.
//
// A Series is read-only once built and safe for concurrent use. Non trading
// days are simply absent.
type Series struct {
	ticker string
	closes date.History[decimal.Decimal]
}

// NewSeries returns the series of points for ticker.
//
// Points need not be sorted, when two points share a date the last one wins.
func NewSeries(ticker string, points []PricePoint) *Series {
	s := &Series{ticker: ticker}
	for _, p := range points {
		s.closes.Append(p.Date, p.Close)
	}
	return s
}

// BuildSeries fetches the prices of ticker over window.
//
// It always returns a usable Series: when the fetch fails the series is empty
// and the error is returned for the caller to record.
func BuildSeries(ctx context.Context, fetcher PriceFetcher, ticker string, window date.Range) (*Series, error) {
	points, err := fetcher.FetchPrices(ctx, ticker, window.From, window.To)
	if err != nil {
		return NewSeries(ticker, nil), fmt.Errorf("cannot fetch prices of %s over %v: %w", ticker, window, err)
	}
	return NewSeries(ticker, points), nil
}

// Ticker returns the ticker the series is about.
func (s *Series) Ticker() string { return s.ticker }

// Len returns the number of trading days in the series.
func (s *Series) Len() int { return s.closes.Len() }

// Range returns the first and last trading days, ok is false for an empty series.
func (s *Series) Range() (r date.Range, ok bool) {
	from, _, ok := s.closes.First()
	to, _, _ := s.closes.Latest()
	return date.Range{From: from, To: to}, ok
}

// Latest returns the last point of the series.
func (s *Series) Latest() (PricePoint, bool) { return point(s.closes.Latest()) }

// Nearest returns the point closest to day, ties going to the earlier day.
//
// It is absent only if the series is empty.
func (s *Series) Nearest(day date.Date) (PricePoint, bool) { return point(s.closes.Nearest(day)) }

// AtOrAfter returns the first point on or after day.
func (s *Series) AtOrAfter(day date.Date) (PricePoint, bool) {
	return point(s.closes.ValueOnOrAfter(day))
}

// AsOf returns the last point on or before day.
func (s *Series) AsOf(day date.Date) (PricePoint, bool) { return point(s.closes.ValueAsOf(day)) }

// Points returns an iterator over the points in chronological order.
func (s *Series) Points() iter.Seq[PricePoint] {
	return func(yield func(PricePoint) bool) {
		for on, price := range s.closes.Values() {
			if !yield(PricePoint{Date: on, Close: price}) {
				return
			}
		}
	}
}

func point(on date.Date, price decimal.Decimal, ok bool) (PricePoint, bool) {
	if !ok {
		return PricePoint{}, false
	}
	return PricePoint{Date: on, Close: price}, true
}

// SeriesCache memoizes series for a limited time.
//
// It is owned by the caller of the Pipeline, so that consecutive runs (a
// dashboard refresh for instance) do not fetch the same prices again.
type SeriesCache struct {
	c *cache.Cache
}

// NewSeriesCache returns a cache whose entries expire after ttl.
//
// It returns nil, a cache that never hits, if ttl is not positive.
func NewSeriesCache(ttl time.Duration) *SeriesCache {
	if ttl <= 0 {
		return nil
	}
	return &SeriesCache{c: cache.New(ttl, 2*ttl)}
}

func cacheKey(ticker string, window date.Range) string {
	return ticker + " " + window.String()
}

// Get returns the series of ticker fetched over exactly window, if still cached.
func (c *SeriesCache) Get(ticker string, window date.Range) (*Series, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.c.Get(cacheKey(ticker, window))
	if !ok {
		return nil, false
	}
	return v.(*Series), true
}

// Put stores a series fetched over window.
func (c *SeriesCache) Put(window date.Range, s *Series) {
	if c == nil {
		return
	}
	c.c.Set(cacheKey(s.Ticker(), window), s, cache.DefaultExpiration)
}
