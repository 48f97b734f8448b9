package capitol

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/capitol/date"
)

// RawRecord is a disclosure record as delivered by a source.
//
// Field names vary from one source to the other, see Normalizer for the
// recognized aliases.
type RawRecord map[string]any

// Kind is the direction of a trade.
type Kind int

const (
	Unknown Kind = iota
	Buy
	Sell
)

func (k Kind) String() string {
	switch k {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// kinds maps the lowercase vocabulary found in disclosures to a Kind.
var kinds = map[string]Kind{
	"purchase":       Buy,
	"buy":            Buy,
	"p":              Buy,
	"sale":           Sell,
	"sale_full":      Sell,
	"sale_partial":   Sell,
	"sale (full)":    Sell,
	"sale (partial)": Sell,
	"sell":           Sell,
	"sell_full":      Sell,
	"sell_partial":   Sell,
	"s":              Sell,
	"s (partial)":    Sell,
}

// ParseKind maps a transaction type as written in a disclosure to a Kind.
//
// The lookup is case insensitive, unrecognized types are Unknown.
func ParseKind(s string) Kind {
	return kinds[strings.ToLower(strings.TrimSpace(s))]
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "BUY":
		*k = Buy
	case "SELL":
		*k = Sell
	case "UNKNOWN":
		*k = Unknown
	default:
		return fmt.Errorf("invalid trade kind %q", text)
	}
	return nil
}

// Trade is a canonical disclosure record.
//
// Ticker and Date are always valid on a Trade returned by a Normalizer.
type Trade struct {
	Politician string    `json:"politician"`
	Ticker     string    `json:"ticker"`
	Date       date.Date `json:"transactionDate"`
	Kind       Kind      `json:"kind"`
	Amount     string    `json:"amount"` // as reported, e.g. "$1,001 - $15,000"
}

func (t Trade) String() string {
	return fmt.Sprintf("%s %s %s %s %s", t.Date, t.Politician, t.Kind, t.Ticker, t.Amount)
}

// Origin describes where a batch of raw records came from.
type Origin struct {
	Name      string    `json:"name"`
	Fallback  bool      `json:"fallback"` // true when the primary source failed and a snapshot was used.
	FetchedAt time.Time `json:"fetchedAt,omitzero"`
}
