package output

import (
	"fmt"
	"strings"

	"github.com/mtax/declaration-engine/internal/domain"
)

// Report is what formatters render: a declaration plus the context needed to
// explain it.
type Report struct {
	Declaration  *domain.Declaration       `json:"declaration" yaml:"declaration"`
	TaxpayerName string                    `json:"taxpayer_name,omitempty" yaml:"taxpayer_name,omitempty"`
	Analysis     Analysis                  `json:"analysis" yaml:"analysis"`
	Suggestions  []domain.SpecialDeduction `json:"suggested_deductions,omitempty" yaml:"suggested_deductions,omitempty"`
	Assumptions  []string                  `json:"assumptions" yaml:"assumptions"`
}

// NewReport analyzes d. Assumptions come from setting when given, otherwise
// DefaultAssumptions are used.
func NewReport(d *domain.Declaration, setting *domain.TaxSetting) *Report {
	assumptions := DefaultAssumptions
	if setting != nil {
		assumptions = GenerateAssumptions(setting)
	}
	return &Report{
		Declaration: d,
		Analysis:    AnalyzeDeclaration(d),
		Assumptions: assumptions,
	}
}

// Render formats the report with the named formatter. Unknown names yield
// ErrUnsupportedFormat with the list of valid choices.
func Render(report *Report, format string) ([]byte, error) {
	f := GetFormatterByName(format)
	if f == nil {
		return nil, fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format,
			strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}
	return f.Format(report)
}

// GenerateReport writes the report in the named format to a timestamped file in dir.
func GenerateReport(report *Report, format, dir string) (string, error) {
	f := GetFormatterByName(format)
	if f == nil {
		_, err := Render(report, format)
		return "", err
	}
	return WriteFormatted(f, report, dir)
}
