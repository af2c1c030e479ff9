package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders minor-unit amounts with locale-aware thousands
// separators. Display only; the canonical numbers stay integers.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter builds a formatter for the given BCP 47 locale tag. An
// unparseable tag falls back to English grouping.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Format renders an amount with grouping separators, e.g. 500000 -> "500.000"
// under an Indonesian locale.
func (f *Formatter) Format(amount int64) string {
	return f.printer.Sprintf("%d", amount)
}
