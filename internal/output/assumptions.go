package output

import (
	"fmt"

	"github.com/mtax/declaration-engine/internal/domain"
)

// DefaultAssumptions lists the calculation rules rendered in detailed outputs.
var DefaultAssumptions = []string{
	"Exemption is capped at total taxable income",
	"Lump sum expenses replace actual expenses; the two are never combined",
	"Brackets tax the slice of the base between the previous and the current upper bound",
	"Withholding is charged on total taxable income before any deduction",
	"Amounts are rounded to cents, half away from zero",
}

// GenerateAssumptions describes the parameters of the setting a declaration was computed with.
func GenerateAssumptions(setting *domain.TaxSetting) []string {
	out := []string{
		fmt.Sprintf("Tax year %d settings", setting.Year),
		fmt.Sprintf("Exemption amount: %s", FormatCurrency(setting.ExemptionAmount)),
		fmt.Sprintf("Lump sum expense rate: %s of income", FormatPercentage(setting.LumpSumRate)),
		fmt.Sprintf("Withholding rate: %s of income", FormatPercentage(setting.WithholdingRate)),
	}
	if setting.DeclarationLimit.IsPositive() {
		out = append(out, fmt.Sprintf("Declaration required above %s", FormatCurrency(setting.DeclarationLimit)))
	}
	out = append(out, fmt.Sprintf("%d progressive brackets", len(setting.Brackets)))
	return append(out, DefaultAssumptions...)
}
