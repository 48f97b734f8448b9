package capitol

import (
	"context"
	"errors"
	"sync"

	"github.com/etnz/capitol/date"
	"github.com/shopspring/decimal"
)

// pt is a helper for test to create a price point from const.
func pt(on string, close float64) PricePoint {
	return PricePoint{Date: date.MustParse(on), Close: decimal.NewFromFloat(close)}
}

// dec is a helper for test to create a valid NullDecimal from a string.
func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

var errUnreachable = errors.New("unreachable")

// fakePrices is an in memory PriceFetcher that records its calls.
type fakePrices struct {
	mu     sync.Mutex
	series map[string][]PricePoint
	fail   map[string]bool
	calls  map[string][]date.Range
}

func newFakePrices() *fakePrices {
	return &fakePrices{
		series: make(map[string][]PricePoint),
		fail:   make(map[string]bool),
		calls:  make(map[string][]date.Range),
	}
}

func (f *fakePrices) with(ticker string, points ...PricePoint) *fakePrices {
	f.series[ticker] = points
	return f
}

func (f *fakePrices) failing(ticker string) *fakePrices {
	f.fail[ticker] = true
	return f
}

func (f *fakePrices) FetchPrices(ctx context.Context, ticker string, from, to date.Date) ([]PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticker] = append(f.calls[ticker], date.Range{From: from, To: to})
	if f.fail[ticker] {
		return nil, errUnreachable
	}
	var points []PricePoint
	for _, p := range f.series[ticker] {
		if !p.Date.Before(from) && !p.Date.After(to) {
			points = append(points, p)
		}
	}
	return points, nil
}
