package date

import (
	"testing"
	"time"
)

func TestPeriodRange(t *testing.T) {
	testCases := []struct {
		name   string
		in     Date
		period Period
		want   Range
	}{
		{"day", New(2025, time.September, 8), Daily, Range{New(2025, time.September, 8), New(2025, time.September, 8)}},
		{"a wednesday", New(2025, time.September, 10), Weekly, Range{New(2025, time.September, 8), New(2025, time.September, 14)}},
		{"a sunday", New(2025, time.September, 14), Weekly, Range{New(2025, time.September, 8), New(2025, time.September, 14)}},
		{"february", New(2024, time.February, 10), Monthly, Range{New(2024, time.February, 1), New(2024, time.February, 29)}},
		{"third quarter", New(2025, time.August, 15), Quarterly, Range{New(2025, time.July, 1), New(2025, time.September, 30)}},
		{"year", New(2025, time.August, 15), Yearly, Range{New(2025, time.January, 1), New(2025, time.December, 31)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.period.Range(tc.in); got != tc.want {
				t.Errorf("%v.Range(%v) = %v, want %v", tc.period, tc.in, got, tc.want)
			}
		})
	}
}

func TestRange_Identifier(t *testing.T) {
	testCases := []struct {
		name string
		in   Range
		want string
	}{
		{"Daily Identifier", Daily.Range(New(2025, time.September, 8)), "2025-09-08"},
		{"Weekly Identifier", Weekly.Range(New(2025, time.September, 8)), "2025-W37"},
		{"Monthly Identifier", Monthly.Range(New(2025, time.September, 1)), "2025-09"},
		{"Quarterly Identifier", Quarterly.Range(New(2025, time.July, 1)), "2025-Q3"},
		{"Yearly Identifier", Yearly.Range(New(2025, time.January, 1)), "2025"},
		{"Custom Range Identifier", Range{From: New(2025, time.September, 2), To: New(2025, time.September, 10)}, "2025-09-02_2025-09-10"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Identifier(); got != tc.want {
				t.Errorf("Identifier() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	testCases := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"daily", Daily, false},
		{"Week", Weekly, false},
		{" month ", Monthly, false},
		{"quarter", Quarterly, false},
		{"yearly", Yearly, false},
		{"fortnight", Daily, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParsePeriod(tc.in)
			if (err != nil) != tc.wantErr {
				t.Errorf("ParsePeriod() error = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParsePeriod() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSpanPadClamp(t *testing.T) {
	r, ok := Span(New(2025, 3, 10), New(2025, 1, 2), New(2025, 2, 1))
	if !ok {
		t.Fatal("Span() ok = false, want true")
	}
	want := Range{New(2025, 1, 2), New(2025, 3, 10)}
	if r != want {
		t.Errorf("Span() = %v, want %v", r, want)
	}
	if got := r.Pad(2, 30).Clamp(New(2025, 3, 31)); got != (Range{New(2024, 12, 31), New(2025, 3, 31)}) {
		t.Errorf("Pad(2, 30).Clamp() = %v", got)
	}
	if _, ok := Span(); ok {
		t.Errorf("Span() of nothing ok = true")
	}
}
