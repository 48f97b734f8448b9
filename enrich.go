package capitol

import (
	"github.com/etnz/capitol/date"
	"github.com/shopspring/decimal"
)

// PercentPlaces is the number of decimal places returns are rounded to.
const PercentPlaces = 2

var hundred = decimal.NewFromInt(100)

// HorizonReturn is the evaluation of a trade at a given horizon.
type HorizonReturn struct {
	Horizon       string              `json:"horizon"`
	Reference     decimal.NullDecimal `json:"reference"`
	ReferenceDate date.Date           `json:"referenceDate,omitzero"` // trading day Reference was read at
	Return        decimal.NullDecimal `json:"returnPct"`              // percent, rounded to PercentPlaces
}

// EnrichedTrade is a Trade with its prices and returns.
type EnrichedTrade struct {
	Trade
	Purchase     decimal.NullDecimal `json:"purchase"`
	PurchaseDate date.Date           `json:"purchaseDate,omitzero"`
	Returns      []HorizonReturn     `json:"returns"`
}

// Horizon returns the evaluation at the horizon labelled label.
func (e EnrichedTrade) Horizon(label string) (HorizonReturn, bool) {
	for _, r := range e.Returns {
		if r.Horizon == label {
			return r, true
		}
	}
	return HorizonReturn{}, false
}

// Enrich computes the purchase price of trade and its returns at each horizon.
//
// The purchase price is the close of the trading day nearest to the
// transaction, provided the series reaches the transaction date: a trade
// after the last available close has no purchase price yet. Reference prices
// are the first close on or after each horizon's target, and never after
// asOf. Whatever cannot be computed is left invalid.
func Enrich(trade Trade, series *Series, horizons []Horizon, asOf date.Date) EnrichedTrade {
	e := EnrichedTrade{Trade: trade, Returns: make([]HorizonReturn, 0, len(horizons))}

	if _, covered := series.AtOrAfter(trade.Date); covered {
		if p, ok := series.Nearest(trade.Date); ok {
			e.Purchase = decimal.NewNullDecimal(p.Close)
			e.PurchaseDate = p.Date
		}
	}

	for _, h := range horizons {
		r := HorizonReturn{Horizon: h.Label}
		if ref, ok := reference(series, h, trade.Date, asOf); ok {
			r.Reference = decimal.NewNullDecimal(ref.Close)
			r.ReferenceDate = ref.Date
		}
		r.Return = Return(e.Purchase, r.Reference)
		e.Returns = append(e.Returns, r)
	}
	return e
}

func reference(series *Series, h Horizon, tx, asOf date.Date) (PricePoint, bool) {
	if h.IsCurrent() {
		return series.AsOf(asOf)
	}
	p, ok := series.AtOrAfter(h.Target(tx, asOf))
	if !ok || p.Date.After(asOf) {
		return PricePoint{}, false
	}
	return p, true
}

// Return computes the percentage return from purchase to reference, rounded
// to PercentPlaces.
//
// It is invalid if either price is invalid or if purchase is zero.
func Return(purchase, reference decimal.NullDecimal) decimal.NullDecimal {
	if !purchase.Valid || !reference.Valid || purchase.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	pct := reference.Decimal.Sub(purchase.Decimal).Div(purchase.Decimal).Mul(hundred)
	return decimal.NewNullDecimal(pct.Round(PercentPlaces))
}
