package aggregation

import (
	"bizdesk/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// Accumulator sums currency amounts, quantizing every addend to cents so
// totals never drift from what a ledger would show.
type Accumulator struct {
	total decimal.Decimal
	count int
}

func (a *Accumulator) Add(v decimal.Decimal) {
	a.total = a.total.Add(entities.RoundCurrency(v))
	a.count++
}

func (a *Accumulator) Total() decimal.Decimal {
	return entities.RoundCurrency(a.total)
}

// Count is the number of rows added, zero-valued ones included.
func (a *Accumulator) Count() int {
	return a.count
}
