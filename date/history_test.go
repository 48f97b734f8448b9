package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Test is about appending two values in reverse order and checking that everything is
	// as expected at every step of the way.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[1] != d1 {
		t.Errorf("history[1].day = %v want %v", h.days[1], d1)
	}
	if h.days[0] != d2 {
		t.Errorf("history[0].day = %v want %v", h.days[0], d2)
	}

	h.Append(d1, "overwritten")
	if v, _ := h.Get(d1); h.Len() != 2 || v != "overwritten" {
		t.Errorf("Append(d1, overwritten) = %v (len %d), want overwritten (len 2)", v, h.Len())
	}
}

// week builds a history with closes on Monday, Wednesday and Friday.
func week() *History[int] {
	h := new(History[int])
	h.Append(New(2025, 3, 10), 10) // Monday
	h.Append(New(2025, 3, 12), 12) // Wednesday
	h.Append(New(2025, 3, 14), 14) // Friday
	return h
}

func TestNearest(t *testing.T) {
	h := week()
	tests := []struct {
		name string
		on   Date
		want int
	}{
		{"exact", New(2025, 3, 12), 12},
		{"tie goes to the earlier day", New(2025, 3, 11), 10},
		{"before the first day", New(2025, 3, 1), 10},
		{"after the last day", New(2025, 4, 1), 14},
		{"tie between wednesday and friday", New(2025, 3, 13), 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got, ok := h.Nearest(tt.on)
			if !ok || got != tt.want {
				t.Errorf("Nearest(%v) = %v, %v want %v, true", tt.on, got, ok, tt.want)
			}
		})
	}

	if _, _, ok := new(History[int]).Nearest(New(2025, 3, 12)); ok {
		t.Errorf("Nearest() on empty history returned ok")
	}
}

func TestNearestTieAfterGap(t *testing.T) {
	h := new(History[int])
	h.Append(New(2025, 3, 7), 7)   // Friday
	h.Append(New(2025, 3, 11), 11) // Tuesday
	// Sunday 9 is two days away from both.
	if day, _, _ := h.Nearest(New(2025, 3, 9)); day != New(2025, 3, 7) {
		t.Errorf("Nearest(2025-03-09) = %v, want 2025-03-07", day)
	}
}

func TestValueOnOrAfter(t *testing.T) {
	h := week()
	tests := []struct {
		on     Date
		want   int
		wantOk bool
	}{
		{New(2025, 3, 10), 10, true},
		{New(2025, 3, 11), 12, true},
		{New(2025, 3, 1), 10, true},
		{New(2025, 3, 15), 0, false},
	}
	for _, tt := range tests {
		_, got, ok := h.ValueOnOrAfter(tt.on)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("ValueOnOrAfter(%v) = %v, %v want %v, %v", tt.on, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestValueAsOf(t *testing.T) {
	h := week()
	tests := []struct {
		on     Date
		want   int
		wantOk bool
	}{
		{New(2025, 3, 10), 10, true},
		{New(2025, 3, 13), 12, true},
		{New(2025, 3, 30), 14, true},
		{New(2025, 3, 9), 0, false},
	}
	for _, tt := range tests {
		_, got, ok := h.ValueAsOf(tt.on)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("ValueAsOf(%v) = %v, %v want %v, %v", tt.on, got, ok, tt.want, tt.wantOk)
		}
	}
}
