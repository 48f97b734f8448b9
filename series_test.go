package capitol

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/capitol/date"
	"github.com/shopspring/decimal"
)

func TestSeries(t *testing.T) {
	// Points are given out of order, with a duplicate.
	s := NewSeries("ACME", []PricePoint{
		pt("2025-03-12", 102),
		pt("2025-03-10", 100),
		pt("2025-03-14", 104),
		pt("2025-03-12", 103),
	})
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if p, _ := s.AtOrAfter(date.MustParse("2025-03-11")); !p.Close.Equal(decimal.NewFromInt(103)) {
		t.Errorf("AtOrAfter(2025-03-11) = %v, want the last value of the duplicate (103)", p.Close)
	}

	tests := []struct {
		name   string
		lookup func(date.Date) (PricePoint, bool)
		on     string
		want   string // date of the point, "" for absent
	}{
		{"nearest exact", s.Nearest, "2025-03-12", "2025-03-12"},
		{"nearest tie", s.Nearest, "2025-03-11", "2025-03-10"},
		{"nearest before", s.Nearest, "2025-01-01", "2025-03-10"},
		{"nearest after", s.Nearest, "2025-12-01", "2025-03-14"},
		{"at or after exact", s.AtOrAfter, "2025-03-10", "2025-03-10"},
		{"at or after gap", s.AtOrAfter, "2025-03-13", "2025-03-14"},
		{"at or after tail", s.AtOrAfter, "2025-03-15", ""},
		{"as of gap", s.AsOf, "2025-03-13", "2025-03-12"},
		{"as of head", s.AsOf, "2025-03-09", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := tt.lookup(date.MustParse(tt.on))
			if tt.want == "" {
				if ok {
					t.Errorf("lookup(%s) = %v, want absent", tt.on, p)
				}
				return
			}
			if !ok || p.Date != date.MustParse(tt.want) {
				t.Errorf("lookup(%s) = %v, %v want %s", tt.on, p.Date, ok, tt.want)
			}
		})
	}

	r, ok := s.Range()
	if !ok || r != (date.Range{From: date.New(2025, 3, 10), To: date.New(2025, 3, 14)}) {
		t.Errorf("Range() = %v, %v", r, ok)
	}
	var n int
	for range s.Points() {
		n++
	}
	if n != 3 {
		t.Errorf("Points() yielded %d points, want 3", n)
	}
}

func TestEmptySeries(t *testing.T) {
	s := NewSeries("NONE", nil)
	on := date.MustParse("2025-03-10")
	if _, ok := s.Nearest(on); ok {
		t.Error("Nearest() on empty series is present")
	}
	if _, ok := s.AtOrAfter(on); ok {
		t.Error("AtOrAfter() on empty series is present")
	}
	if _, ok := s.AsOf(on); ok {
		t.Error("AsOf() on empty series is present")
	}
	if _, ok := s.Latest(); ok {
		t.Error("Latest() on empty series is present")
	}
	if _, ok := s.Range(); ok {
		t.Error("Range() on empty series is present")
	}
}

func TestBuildSeries(t *testing.T) {
	prices := newFakePrices().with("ACME", pt("2025-03-10", 100), pt("2025-06-01", 120)).failing("DOWN")
	window := date.Range{From: date.New(2025, 3, 1), To: date.New(2025, 3, 31)}

	s, err := BuildSeries(context.Background(), prices, "ACME", window)
	if err != nil {
		t.Fatalf("BuildSeries(ACME) unexpected error: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("BuildSeries(ACME).Len() = %d, want 1 (window filtered)", s.Len())
	}

	s, err = BuildSeries(context.Background(), prices, "DOWN", window)
	if !errors.Is(err, errUnreachable) {
		t.Errorf("BuildSeries(DOWN) error = %v, want %v", err, errUnreachable)
	}
	if s == nil || s.Len() != 0 || s.Ticker() != "DOWN" {
		t.Errorf("BuildSeries(DOWN) = %v, want an empty DOWN series", s)
	}
}

func TestSeriesCache(t *testing.T) {
	c := NewSeriesCache(time.Minute)
	window := date.Range{From: date.New(2025, 3, 1), To: date.New(2025, 3, 31)}
	s := NewSeries("ACME", []PricePoint{pt("2025-03-10", 100)})
	c.Put(window, s)

	if got, ok := c.Get("ACME", window); !ok || got != s {
		t.Errorf("Get(ACME) = %v, %v want the cached series", got, ok)
	}
	if _, ok := c.Get("ACME", window.Pad(1, 0)); ok {
		t.Error("Get(ACME) on another window is a hit")
	}

	for _, ttl := range []time.Duration{0, -time.Minute} {
		none := NewSeriesCache(ttl)
		none.Put(window, s)
		if _, ok := none.Get("ACME", window); ok {
			t.Errorf("cache with ttl %v returned a hit", ttl)
		}
	}
}
