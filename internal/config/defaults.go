package config

import (
	_ "embed"
	"fmt"

	"github.com/mtax/declaration-engine/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultSettingsYAML []byte

// DefaultTaxSetting returns the bundled tax parameters bound to year.
func DefaultTaxSetting(year int) (*domain.TaxSetting, error) {
	var setting domain.TaxSetting
	if err := yaml.Unmarshal(defaultSettingsYAML, &setting); err != nil {
		return nil, fmt.Errorf("failed to parse bundled tax settings: %w", err)
	}
	setting = setting.WithYear(year)
	if err := setting.Validate(); err != nil {
		return nil, err
	}
	return &setting, nil
}
