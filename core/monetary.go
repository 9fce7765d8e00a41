package core

import (
	"github.com/shopspring/decimal"
)

const monetaryPrecision int32 = 4 // 4 decimal places for bid amounts (0.0001 precision)

// AmountsEqual reports whether two amounts agree at monetaryPrecision.
// Uses decimal arithmetic to avoid floating-point errors.
func AmountsEqual(a, b float64) bool {
	aDecimal := decimal.NewFromFloat(a).Round(monetaryPrecision)
	bDecimal := decimal.NewFromFloat(b).Round(monetaryPrecision)

	return aDecimal.Equal(bDecimal)
}

// TeamTotals sums the normalized amounts of every team in the ledger.
func TeamTotals(ledger Ledger) map[string]float64 {
	sums := make(map[string]decimal.Decimal)
	for _, entry := range ledger {
		sums[entry.Team] = sums[entry.Team].Add(decimal.NewFromFloat(entry.Amount))
	}

	totals := make(map[string]float64, len(sums))
	for team, sum := range sums {
		totals[team], _ = sum.Float64()
	}
	return totals
}
