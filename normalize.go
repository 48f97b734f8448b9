package capitol

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/etnz/capitol/date"
)

// MaxTickerLen is the longest ticker accepted. Longer "tickers" are asset
// descriptions (bonds, funds, private companies) that cannot be priced.
const MaxTickerLen = 6

// UnknownPolitician is the display name of trades whose filer is missing.
const UnknownPolitician = "Unknown"

// Reason tells why a raw record was rejected.
type Reason int

const (
	InvalidTicker Reason = iota + 1
	InvalidDate
	OutOfRange
)

func (r Reason) String() string {
	switch r {
	case InvalidTicker:
		return "INVALID_TICKER"
	case InvalidDate:
		return "INVALID_DATE"
	case OutOfRange:
		return "OUT_OF_RANGE"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Rejection is the error returned when a raw record cannot become a Trade.
//
// Rejections are part of a best effort ingestion: they are counted, not
// reported as failures.
type Rejection struct {
	Reason Reason
	Value  string // offending value
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("record rejected %s: %q", r.Reason, r.Value)
}

// Canonical field names of a RawRecord, as written in snapshots.
const (
	FieldPolitician = "representative"
	FieldTicker     = "asset_description"
	FieldDate       = "transaction_date"
	FieldKind       = "type"
	FieldAmount     = "amount"
)

// Fields lists the canonical fields in snapshot column order.
var Fields = []string{FieldPolitician, FieldTicker, FieldDate, FieldKind, FieldAmount}

// aliases lists, for each canonical field, the source field names it may be
// found under. The first non empty one wins.
var aliases = map[string][]string{
	FieldPolitician: {FieldPolitician, "politician"},
	FieldTicker:     {FieldTicker, "assetDescription", "ticker"},
	FieldDate:       {FieldDate, "transactionDate", "date"},
	FieldKind:       {FieldKind, "transactionType"},
	FieldAmount:     {FieldAmount},
}

// Get returns the trimmed value of a canonical field, whatever alias it is
// stored under, or "" if absent.
func (r RawRecord) Get(field string) string {
	names, ok := aliases[field]
	if !ok {
		names = []string{field}
	}
	for _, name := range names {
		if s := stringOf(r[name]); s != "" {
			return s
		}
	}
	return ""
}

// Normalizer converts raw records into canonical trades.
//
// The zero value accepts any date.
type Normalizer struct {
	// Cutoff is the earliest transaction date accepted, ignored if zero.
	Cutoff date.Date
}

// Normalize returns the Trade described by raw, or a *Rejection.
func (n Normalizer) Normalize(raw RawRecord) (Trade, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw.Get(FieldTicker)))
	if !ValidTicker(ticker) {
		return Trade{}, &Rejection{Reason: InvalidTicker, Value: ticker}
	}

	rawDate := raw.Get(FieldDate)
	on, err := date.Parse(rawDate)
	if err != nil {
		return Trade{}, &Rejection{Reason: InvalidDate, Value: rawDate}
	}
	if !n.Cutoff.IsZero() && on.Before(n.Cutoff) {
		return Trade{}, &Rejection{Reason: OutOfRange, Value: on.String()}
	}

	politician := strings.Join(strings.Fields(raw.Get(FieldPolitician)), " ")
	if politician == "" {
		politician = UnknownPolitician
	}

	return Trade{
		Politician: politician,
		Ticker:     ticker,
		Date:       on,
		Kind:       ParseKind(raw.Get(FieldKind)),
		Amount:     strings.TrimSpace(raw.Get(FieldAmount)),
	}, nil
}

// ValidTicker reports whether s can be a ticker: 1 to MaxTickerLen
// characters and no whitespace.
func ValidTicker(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > MaxTickerLen {
		return false
	}
	return strings.IndexFunc(s, unicode.IsSpace) < 0
}

// stringOf returns the textual value of a decoded field.
func stringOf(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
