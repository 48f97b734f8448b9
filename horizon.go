package capitol

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/etnz/capitol/date"
)

// Current is the label of the horizon measuring a trade against the latest price.
const Current = "current"

// DefaultHorizons only measures trades against the latest price.
var DefaultHorizons = []Horizon{{Label: Current}}

// Horizon is a named point in time at which a trade is evaluated.
//
// It is either Current (as of the run) or a fixed offset after the
// transaction date, like "+1d", "+2w", "+1m", "+1q" or "+1y".
type Horizon struct {
	Label string
	n     int
	unit  byte // one of dwmqy, 0 for Current
}

var offsetRE = regexp.MustCompile(`^\+(\d+)([dwmqy])$`)

// ParseHorizon parses a horizon label.
func ParseHorizon(s string) (Horizon, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == Current {
		return Horizon{Label: Current}, nil
	}
	match := offsetRE.FindStringSubmatch(s)
	if match == nil {
		return Horizon{}, fmt.Errorf("invalid horizon %q want %q or an offset like \"+1d\", \"+2w\", \"+1m\", \"+1q\", \"+1y\"", s, Current)
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		// This should not happen given the regex
		return Horizon{}, fmt.Errorf("invalid number in horizon %q: %w", s, err)
	}
	return Horizon{Label: s, n: n, unit: match[2][0]}, nil
}

// MustParseHorizon is like ParseHorizon but panics on error.
func MustParseHorizon(s string) Horizon {
	h, err := ParseHorizon(s)
	if err != nil {
		panic(err.Error())
	}
	return h
}

// ParseHorizons parses a list of horizon labels, duplicates are removed.
//
// An empty list returns DefaultHorizons.
func ParseHorizons(labels ...string) ([]Horizon, error) {
	var horizons []Horizon
	seen := make(map[string]bool)
	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			continue
		}
		h, err := ParseHorizon(label)
		if err != nil {
			return nil, err
		}
		if seen[h.Label] {
			continue
		}
		seen[h.Label] = true
		horizons = append(horizons, h)
	}
	if len(horizons) == 0 {
		return DefaultHorizons, nil
	}
	return horizons, nil
}

// IsCurrent reports whether h is the Current horizon.
func (h Horizon) IsCurrent() bool { return h.unit == 0 }

// Target returns the day the reference price should be read at for a
// transaction on tx, when the batch runs on asOf.
func (h Horizon) Target(tx, asOf date.Date) date.Date {
	switch h.unit {
	case 'd':
		return tx.Add(h.n)
	case 'w':
		return tx.Add(7 * h.n)
	case 'm':
		return tx.AddMonth(h.n)
	case 'q':
		return tx.AddMonth(3 * h.n)
	case 'y':
		return tx.AddMonth(12 * h.n)
	default:
		return asOf
	}
}

// Span returns an upper bound of the number of days between a transaction
// and its target. It is 0 for Current.
func (h Horizon) Span() int {
	switch h.unit {
	case 'd':
		return h.n
	case 'w':
		return 7 * h.n
	case 'm':
		return 31 * h.n
	case 'q':
		return 92 * h.n
	case 'y':
		return 366 * h.n
	default:
		return 0
	}
}

func (h Horizon) String() string { return h.Label }
