package telebotConverter

import (
	"fmt"
	"strings"

	"github.com/investbi/portfolio_tracker_bot/internal/model"
	"github.com/shopspring/decimal"
)

const dateLayout = "02/01/2006"

var hundred = decimal.NewFromInt(100)

func asPercent(v decimal.Decimal) string {
	return v.Mul(hundred).StringFixed(2) + "%"
}

// FormatSummary renders the valuation headline for a chat message.
func FormatSummary(v model.Valuation) string {
	if len(v.Patrimony) == 0 {
		return "portfolio is empty"
	}

	last := len(v.Patrimony) - 1
	cumulative := v.CumulativeReturns[last].Value.Sub(decimal.NewFromInt(1))

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Portfolio as of %s\n", v.AsOf.Format(dateLayout)))
	sb.WriteString(fmt.Sprintf("Patrimony: %s\n", v.Patrimony[last].Value.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Last daily return: %s\n", asPercent(v.Returns[last].Value)))
	sb.WriteString(fmt.Sprintf("Return since %s: %s", v.Inception.Format(dateLayout), asPercent(cumulative)))
	return sb.String()
}

// FormatReturns renders the tail of the daily returns series, newest
// last.
func FormatReturns(v model.Valuation, lastN int) string {
	if len(v.Returns) == 0 {
		return "no returns yet"
	}

	start := len(v.Returns) - lastN
	if start < 0 {
		start = 0
	}

	sb := strings.Builder{}
	sb.WriteString("Daily returns:\n")
	for _, p := range v.Returns[start:] {
		sb.WriteString(fmt.Sprintf("%s  %s\n", p.Date.Format(dateLayout), asPercent(p.Value)))
	}
	return strings.TrimRight(sb.String(), "\n")
}
