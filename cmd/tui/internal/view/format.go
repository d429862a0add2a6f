package view

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/akhilmv/statementiq/internal/transaction"
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// FormatAmount renders paise as rupees with Indian digit grouping.
func FormatAmount(paise int64) string {
	return printer.Sprintf("%.2f", transaction.PaiseToFloat(paise))
}

// FormatOptAmount renders an optional amount, "-" when absent.
func FormatOptAmount(paise *int64) string {
	if paise == nil {
		return "-"
	}

	return FormatAmount(*paise)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
