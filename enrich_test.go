package capitol

import (
	"testing"

	"github.com/etnz/capitol/date"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var acmeTrade = Trade{Politician: "A", Ticker: "ACME", Date: date.New(2025, 3, 10), Kind: Buy, Amount: "$1,001-$15,000"}

func TestEnrichCurrent(t *testing.T) {
	s := NewSeries("ACME", []PricePoint{pt("2025-03-10", 100), pt("2025-06-01", 120)})
	got := Enrich(acmeTrade, s, DefaultHorizons, date.MustParse("2025-06-02"))

	want := EnrichedTrade{
		Trade:        acmeTrade,
		Purchase:     dec("100"),
		PurchaseDate: date.New(2025, 3, 10),
		Returns: []HorizonReturn{{
			Horizon:       Current,
			Reference:     dec("120"),
			ReferenceDate: date.New(2025, 6, 1),
			Return:        dec("20"),
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Enrich() mismatch (-want +got):\n%s", diff)
	}
	if r, _ := got.Horizon(Current); r.Return.Decimal.StringFixed(2) != "20.00" {
		t.Errorf("Enrich() current return = %s, want 20.00", r.Return.Decimal.StringFixed(2))
	}
}

func TestEnrichNoPointOnOrAfterTrade(t *testing.T) {
	for _, s := range []*Series{
		NewSeries("ACME", nil),
		NewSeries("ACME", []PricePoint{pt("2025-02-28", 90), pt("2025-03-07", 95)}),
	} {
		got := Enrich(acmeTrade, s, DefaultHorizons, date.MustParse("2025-06-02"))
		if got.Purchase.Valid {
			t.Errorf("Enrich() with %d points: purchase = %v, want absent", s.Len(), got.Purchase)
		}
		r, _ := got.Horizon(Current)
		if r.Return.Valid {
			t.Errorf("Enrich() with %d points: return = %v, want absent", s.Len(), r.Return)
		}
	}
}

func TestEnrichExactDay(t *testing.T) {
	// The point on the transaction date is used even when a closer-looking neighbour exists.
	s := NewSeries("ACME", []PricePoint{pt("2025-03-07", 1), pt("2025-03-10", 42.125), pt("2025-03-11", 2)})
	got := Enrich(acmeTrade, s, nil, date.MustParse("2025-06-02"))
	if !got.Purchase.Valid || !got.Purchase.Decimal.Equal(decimal.RequireFromString("42.125")) {
		t.Errorf("Enrich() purchase = %v, want 42.125", got.Purchase)
	}
	if len(got.Returns) != 0 {
		t.Errorf("Enrich() with no horizon returned %d returns", len(got.Returns))
	}
}

func TestEnrichHorizons(t *testing.T) {
	s := NewSeries("ACME", []PricePoint{
		pt("2025-03-07", 98),  // Friday before a weekend trade
		pt("2025-03-10", 100), // Monday
		pt("2025-03-17", 110),
		pt("2025-04-10", 90),
		pt("2025-04-14", 95),
	})
	trade := acmeTrade
	trade.Date = date.New(2025, 3, 8) // Saturday, nearest is Friday.
	horizons := []Horizon{MustParseHorizon("current"), MustParseHorizon("+1d"), MustParseHorizon("+1w"), MustParseHorizon("+1m"), MustParseHorizon("+1y")}

	got := Enrich(trade, s, horizons, date.MustParse("2025-04-12"))
	if !got.Purchase.Decimal.Equal(decimal.NewFromInt(98)) || got.PurchaseDate != date.New(2025, 3, 7) {
		t.Fatalf("Enrich() purchase = %v on %v, want 98 on 2025-03-07", got.Purchase, got.PurchaseDate)
	}

	tests := []struct {
		horizon string
		ref     string // "" for absent
		ret     string // "" for absent
	}{
		{"current", "90", "-8.16"}, // as of 04-12 is the 04-10 close
		{"+1d", "100", "2.04"},     // Sunday -> Monday
		{"+1w", "110", "12.24"},    // 03-15 -> 03-17
		{"+1m", "90", "-8.16"},     // 04-08 -> 04-10
		{"+1y", "", ""},            // beyond the series tail
	}
	for _, tt := range tests {
		t.Run(tt.horizon, func(t *testing.T) {
			r, ok := got.Horizon(tt.horizon)
			if !ok {
				t.Fatalf("Horizon(%s) not found", tt.horizon)
			}
			checkNull(t, "reference", r.Reference, tt.ref)
			checkNull(t, "return", r.Return, tt.ret)
		})
	}
}

func TestEnrichFutureHorizon(t *testing.T) {
	// A close after the run date cannot be a reference.
	s := NewSeries("ACME", []PricePoint{pt("2025-03-10", 100), pt("2025-04-10", 130)})
	got := Enrich(acmeTrade, s, []Horizon{MustParseHorizon("+1m")}, date.MustParse("2025-04-01"))
	if r, _ := got.Horizon("+1m"); r.Reference.Valid || r.Return.Valid {
		t.Errorf("Enrich() +1m = %v, want absent", r)
	}
}

func TestReturn(t *testing.T) {
	none := decimal.NullDecimal{}
	tests := []struct {
		name                string
		purchase, reference decimal.NullDecimal
		want                string
	}{
		{"gain", dec("100"), dec("120"), "20"},
		{"loss", dec("3"), dec("2"), "-33.33"},
		{"rounding", dec("3"), dec("4"), "33.33"},
		{"flat is a computed zero", dec("50"), dec("50"), "0"},
		{"zero purchase", dec("0"), dec("10"), ""},
		{"no purchase", none, dec("10"), ""},
		{"no reference", dec("10"), none, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkNull(t, "Return()", Return(tt.purchase, tt.reference), tt.want)
		})
	}
}

// checkNull checks that got is absent if want is "", or equals want.
func checkNull(t *testing.T, name string, got decimal.NullDecimal, want string) {
	t.Helper()
	if want == "" {
		if got.Valid {
			t.Errorf("%s = %v, want absent", name, got.Decimal)
		}
		return
	}
	if !got.Valid || !got.Decimal.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %v (valid %v), want %s", name, got.Decimal, got.Valid, want)
	}
}
