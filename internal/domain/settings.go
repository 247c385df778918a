package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// TaxBracket is one step of a progressive schedule. A nil UpperBound means the
// bracket is unbounded.
type TaxBracket struct {
	Rate       decimal.Decimal  `yaml:"rate" json:"rate"`
	UpperBound *decimal.Decimal `yaml:"upper_bound,omitempty" json:"upper_bound,omitempty"`
}

// bracketFields accepts both the current and the legacy ("limit") bound key.
type bracketFields struct {
	Rate       decimal.Decimal  `yaml:"rate" json:"rate"`
	UpperBound *decimal.Decimal `yaml:"upper_bound" json:"upper_bound"`
	Limit      *decimal.Decimal `yaml:"limit" json:"limit"`
}

func (f bracketFields) bracket() TaxBracket {
	b := TaxBracket{Rate: f.Rate, UpperBound: f.UpperBound}
	if b.UpperBound == nil {
		b.UpperBound = f.Limit
	}
	return b
}

// UnmarshalJSON implements custom JSON unmarshaling for TaxBracket
func (b *TaxBracket) UnmarshalJSON(data []byte) error {
	var aux bracketFields
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = aux.bracket()
	return nil
}

// UnmarshalYAML implements custom YAML unmarshaling for TaxBracket
func (b *TaxBracket) UnmarshalYAML(value *yaml.Node) error {
	var aux bracketFields
	if err := value.Decode(&aux); err != nil {
		return err
	}
	*b = aux.bracket()
	return nil
}

// TaxSetting holds the tax parameters of one fiscal year.
type TaxSetting struct {
	Year             int             `yaml:"year" json:"year"`
	ExemptionAmount  decimal.Decimal `yaml:"exemption_amount" json:"exemption_amount"`
	DeclarationLimit decimal.Decimal `yaml:"declaration_limit" json:"declaration_limit"`
	LumpSumRate      decimal.Decimal `yaml:"lump_sum_rate" json:"lump_sum_rate"`
	WithholdingRate  decimal.Decimal `yaml:"withholding_rate" json:"withholding_rate"`
	Brackets         []TaxBracket    `yaml:"tax_brackets" json:"tax_brackets"`
}

// Validate checks that the setting can drive a calculation.
func (s TaxSetting) Validate() error {
	one := decimal.NewFromInt(1)

	if s.Year <= 0 {
		return fmt.Errorf("%w: year must be positive, got %d", ErrInvalidSettings, s.Year)
	}
	if s.ExemptionAmount.IsNegative() {
		return fmt.Errorf("%w: exemption_amount cannot be negative", ErrInvalidSettings)
	}
	if s.DeclarationLimit.IsNegative() {
		return fmt.Errorf("%w: declaration_limit cannot be negative", ErrInvalidSettings)
	}
	if s.LumpSumRate.IsNegative() || s.LumpSumRate.GreaterThan(one) {
		return fmt.Errorf("%w: lump_sum_rate must be within [0, 1]", ErrInvalidSettings)
	}
	if s.WithholdingRate.IsNegative() || s.WithholdingRate.GreaterThan(one) {
		return fmt.Errorf("%w: withholding_rate must be within [0, 1]", ErrInvalidSettings)
	}
	if len(s.Brackets) == 0 {
		return fmt.Errorf("%w: at least one tax bracket is required", ErrInvalidSettings)
	}

	last := len(s.Brackets) - 1
	var prevRate decimal.Decimal
	var prevBound decimal.Decimal
	for i, b := range s.Brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(one) {
			return fmt.Errorf("%w: bracket %d rate must be within [0, 1]", ErrInvalidSettings, i+1)
		}
		if i > 0 && b.Rate.LessThan(prevRate) {
			return fmt.Errorf("%w: bracket %d rate is lower than the previous bracket", ErrInvalidSettings, i+1)
		}
		prevRate = b.Rate

		if b.UpperBound == nil {
			if i != last {
				return fmt.Errorf("%w: only the final bracket may be unbounded", ErrInvalidSettings)
			}
			continue
		}
		if !b.UpperBound.GreaterThan(prevBound) {
			return fmt.Errorf("%w: bracket %d upper bound %s must exceed %s", ErrInvalidSettings, i+1, b.UpperBound, prevBound)
		}
		prevBound = *b.UpperBound
	}
	return nil
}

// WithYear returns a copy of the setting bound to year.
func (s TaxSetting) WithYear(year int) TaxSetting {
	out := s
	out.Year = year
	out.Brackets = append([]TaxBracket(nil), s.Brackets...)
	return out
}
