package date

import (
	"iter"
	"slices"
)

// History stores a chronological series of values, each associated with a specific date.
// It ensures that dates are unique and the series is always sorted.
type History[T any] struct {
	days   []Date
	values []T
}

// Latest returns the latest date and value in the history.
// If the history is empty, it returns zero values and false.
func (h *History[T]) Latest() (day Date, value T, ok bool) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, value, false
	}
	return h.days[last], h.values[last], true
}

// First returns the earliest date and value in the history.
func (h *History[T]) First() (day Date, value T, ok bool) {
	if len(h.days) == 0 {
		return Date{}, value, false
	}
	return h.days[0], h.values[0], true
}

// Len returns the number of items in the history.
func (h *History[T]) Len() int { return len(h.days) }

// Append adds a point to the history.
//
// Existing value at that date are overwritten.
func (h *History[T]) Append(on Date, q T) *History[T] {
	i, found := h.search(on)
	if found {
		// Found a point at that exact same day.
		// We choose to replace, because it will give higher priority to the last data
		h.values[i] = q
		return h
	}
	h.days = slices.Insert(h.days, i, on)
	h.values = slices.Insert(h.values, i, q)
	return h
}

// Values returns an iterator over all date/value pairs in the history, in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Get returns the value at 'day' and true or zero value and false.
func (h *History[T]) Get(day Date) (T, bool) {
	var value T
	if i, found := h.search(day); found {
		return h.values[i], true
	}
	return value, false
}

// search returns the index of day, or where it would be inserted.
func (h *History[T]) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, Date.Compare)
}

// ValueAsOf returns the value on a given day, or the most recent value before it.
func (h *History[T]) ValueAsOf(day Date) (Date, T, bool) {
	i, found := h.search(day)
	if found {
		return h.days[i], h.values[i], true
	}
	// Not found. `i` is the index where `day` would be inserted.
	// The value we want is at `i-1`, which is the last entry before the target date.
	if i == 0 {
		var zero T
		return Date{}, zero, false
	}
	return h.days[i-1], h.values[i-1], true
}

// ValueOnOrAfter returns the value on a given day, or the first value after it.
func (h *History[T]) ValueOnOrAfter(day Date) (Date, T, bool) {
	i, _ := h.search(day)
	if i == len(h.days) {
		var zero T
		return Date{}, zero, false
	}
	return h.days[i], h.values[i], true
}

// Nearest returns the value whose day is the closest to day.
//
// When two days are equally distant, the earlier one wins.
func (h *History[T]) Nearest(day Date) (Date, T, bool) {
	i, found := h.search(day)
	switch {
	case found:
		return h.days[i], h.values[i], true
	case len(h.days) == 0:
		var zero T
		return Date{}, zero, false
	case i == 0:
		return h.days[0], h.values[0], true
	case i == len(h.days):
		return h.days[i-1], h.values[i-1], true
	}
	before, after := h.days[i-1], h.days[i]
	if day.Sub(before) <= after.Sub(day) {
		return before, h.values[i-1], true
	}
	return after, h.values[i], true
}
