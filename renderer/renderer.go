// Package renderer renders reconciliation reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/etnz/capitol"
	"github.com/etnz/capitol/date"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templates embed.FS

// absent is the rendering of a value that could not be computed.
const absent = "-"

// Currency is the currency prices are quoted in.
const Currency = money.USD

var funcs = template.FuncMap{
	"cell":    cell,
	"usd":     usd,
	"price":   price,
	"percent": percent,
	"at":      at,
}

// RenderReport renders the provenance note and the table of enriched trades,
// with a price and a return column per horizon.
func RenderReport(r *capitol.Report) string {
	partials := map[string]string{
		"report_title":  "report_title.md",
		"report_trades": "report_trades.md",
	}
	return renderTemplate("report", "report.md", partials, r)
}

// pricesView is the data of the prices template.
type pricesView struct {
	Ticker  string
	Points  []capitol.PricePoint
	On      date.Date
	Nearest *capitol.PricePoint
}

// RenderPrices renders the closes of a series. If on is not zero, the trading
// day nearest to it is also shown.
func RenderPrices(s *capitol.Series, on date.Date) string {
	v := pricesView{Ticker: s.Ticker(), On: on}
	for p := range s.Points() {
		v.Points = append(v.Points, p)
	}
	if !on.IsZero() {
		if p, ok := s.Nearest(on); ok {
			v.Nearest = &p
		}
	}
	return renderTemplate("prices", "prices.md", nil, v)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

// cell escapes s for a table cell.
func cell(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return absent
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

// usd formats d in Currency, rounded to the cent.
func usd(d decimal.Decimal) string {
	// to get a never nil currency I need to call the Money constructor
	cur := money.New(0, Currency).Currency()
	return cur.Formatter().Format(d.Shift(int32(cur.Fraction)).Round(0).IntPart())
}

// price formats a price, or absent.
func price(d decimal.NullDecimal) string {
	if !d.Valid {
		return absent
	}
	return usd(d.Decimal)
}

// percent formats a signed percentage, or absent.
func percent(d decimal.NullDecimal) string {
	if !d.Valid {
		return absent
	}
	s := d.Decimal.StringFixed(capitol.PercentPlaces) + "%"
	if d.Decimal.IsPositive() {
		return "+" + s
	}
	return s
}

// at returns the evaluation of t at horizon, empty if missing.
func at(t capitol.EnrichedTrade, horizon string) capitol.HorizonReturn {
	r, _ := t.Horizon(horizon)
	return r
}
