package models

import "github.com/shopspring/decimal"

// MaxAmount is the first magnitude a NUMERIC(14,2) column cannot hold.
var MaxAmount = decimal.New(1, 12)

// ValidAmount reports whether d is stored exactly as NUMERIC(14,2): no more
// than two decimal places and below MaxAmount in magnitude.
func ValidAmount(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2)) && d.Abs().LessThan(MaxAmount)
}
