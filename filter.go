package capitol

import (
	"slices"
	"strings"
)

// SortTrades sorts trades most recent first.
//
// Ties are broken by politician, then ticker, kind and amount, so that the
// order only depends on the trades themselves.
func SortTrades(trades []EnrichedTrade) {
	slices.SortStableFunc(trades, func(a, b EnrichedTrade) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		if c := strings.Compare(a.Politician, b.Politician); c != 0 {
			return c
		}
		if c := strings.Compare(a.Ticker, b.Ticker); c != 0 {
			return c
		}
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		return strings.Compare(a.Amount, b.Amount)
	})
}

// Predicate selects trades.
type Predicate func(EnrichedTrade) bool

// Filter returns the trades matching all predicates, preserving order.
func Filter(trades []EnrichedTrade, predicates ...Predicate) []EnrichedTrade {
	result := make([]EnrichedTrade, 0, len(trades))
next:
	for _, t := range trades {
		for _, p := range predicates {
			if !p(t) {
				continue next
			}
		}
		result = append(result, t)
	}
	return result
}

// ByPolitician selects trades of any of the politicians (case insensitive).
// No names selects everything.
func ByPolitician(names ...string) Predicate {
	return byAny(names, func(t EnrichedTrade) string { return t.Politician })
}

// ByTicker selects trades of any of the tickers (case insensitive).
// No tickers selects everything.
func ByTicker(tickers ...string) Predicate {
	return byAny(tickers, func(t EnrichedTrade) string { return t.Ticker })
}

// ByKind selects trades of any of the kinds.
func ByKind(kinds ...Kind) Predicate {
	return func(t EnrichedTrade) bool { return len(kinds) == 0 || slices.Contains(kinds, t.Kind) }
}

func byAny(values []string, field func(EnrichedTrade) string) Predicate {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = true
		}
	}
	return func(t EnrichedTrade) bool { return len(set) == 0 || set[strings.ToLower(field(t))] }
}

// Politicians returns the distinct politicians of trades, sorted.
func Politicians(trades []EnrichedTrade) []string {
	var names []string
	for _, t := range trades {
		names = append(names, t.Politician)
	}
	slices.Sort(names)
	return slices.Compact(names)
}
