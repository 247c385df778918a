package output

import (
	"strconv"

	money "github.com/mtax/declaration-engine/pkg/decimal"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats an amount with thousands separators and the currency suffix.
func FormatCurrency(amount decimal.Decimal) string {
	return money.NewMoneyFromDecimal(amount).Format()
}

// FormatPercentage renders a rate such as 0.15 as "15.00%".
func FormatPercentage(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

func intToString(i int) string { return strconv.Itoa(i) }

func int64ToString(i int64) string { return strconv.FormatInt(i, 10) }

func boolToString(b bool) string { return strconv.FormatBool(b) }
