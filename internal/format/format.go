// Package format renders money, ownership and share counts for display.
package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sheikh-saqib/captable-simulator/internal/fixedpoint"
)

const (
	DefaultLocale   = "en-US"
	DefaultCurrency = "USD"
)

// Formatter renders values for one locale and currency. It is safe for
// concurrent use.
type Formatter struct {
	tag     language.Tag
	unit    currency.Unit
	printer *message.Printer
	symbol  string
	decimal string
	group   string
	scale   int32
}

// New returns a Formatter for a BCP 47 locale and an ISO 4217 code. Empty
// arguments fall back to DefaultLocale and DefaultCurrency.
func New(locale, currencyCode string) (*Formatter, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}

	p := message.NewPrinter(tag)
	f := &Formatter{
		tag:     tag,
		unit:    unit,
		printer: p,
		symbol:  strings.TrimSpace(p.Sprint(currency.Symbol(unit))),
		decimal: ".",
	}
	if f.symbol == "" || strings.Contains(f.symbol, "%!") {
		f.symbol = unit.String() + " "
	}
	// the locale's decimal separator sits between the two digits
	if sample := []rune(p.Sprintf("%.1f", 1.5)); len(sample) == 3 {
		f.decimal = string(sample[1])
	}
	if sample := []rune(p.Sprintf("%d", 1000000)); len(sample) == 9 {
		f.group = string(sample[1])
	}
	scale, _ := currency.Standard.Rounding(unit)
	f.scale = int32(scale)
	return f, nil
}

// Locale returns the formatter's language tag.
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// CurrencyCode returns the ISO 4217 code.
func (f *Formatter) CurrencyCode() string {
	return f.unit.String()
}

// Currency renders m with the currency symbol, grouped digits and the
// currency's standard number of decimals (2 for USD, 0 for JPY), rounding
// half away from zero. The symbol always leads.
func (f *Formatter) Currency(m decimal.Decimal) string {
	return f.symbol + f.fixed(m, f.scale)
}

// Price renders a per-share price with the currency's decimals, or more (up
// to six) when the price needs them.
func (f *Formatter) Price(m decimal.Decimal) string {
	exact := m.Round(6)
	places := min(f.scale, 6)
	for places < 6 && !exact.Equal(m.Round(places)) {
		places++
	}
	return f.symbol + f.fixed(m, places)
}

// Percentage renders bps as a percentage with two decimals, e.g. "20.00%".
func (f *Formatter) Percentage(b fixedpoint.Bps) string {
	sign := ""
	if b < 0 {
		sign = "-"
		b = -b
	}
	return fmt.Sprintf("%s%s%s%02d%%", sign, f.printer.Sprintf("%d", int64(b)/100), f.decimal, int64(b)%100)
}

// Shares renders a share count with grouping.
func (f *Formatter) Shares(n int64) string {
	return f.printer.Sprintf("%d", n)
}

func (f *Formatter) fixed(m decimal.Decimal, places int32) string {
	rounded := m.Round(places)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	whole := rounded.Truncate(0)
	out := sign + f.integer(whole)
	if places > 0 {
		frac := rounded.Sub(whole).Shift(places).IntPart()
		out += fmt.Sprintf("%s%0*d", f.decimal, int(places), frac)
	}
	return out
}

// integer groups a non-negative whole number. Values beyond int64 are grouped
// by thousands with the locale's separator.
func (f *Formatter) integer(whole decimal.Decimal) string {
	n := whole.BigInt()
	if n.IsInt64() {
		return f.printer.Sprintf("%d", n.Int64())
	}
	digits := n.String()
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString(f.group)
		}
		b.WriteRune(r)
	}
	return b.String()
}
