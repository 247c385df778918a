package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mtax/declaration-engine/internal/domain"
	"go.uber.org/zap"
)

// TaxSetting returns the setting of year or domain.ErrSettingsNotFound.
func (s *Store) TaxSetting(ctx context.Context, year int) (*domain.TaxSetting, error) {
	var (
		setting  domain.TaxSetting
		brackets string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT year, exemption_amount, declaration_limit, lump_sum_rate, withholding_rate, tax_brackets
		FROM tax_settings WHERE year = ?`, year).
		Scan(&setting.Year, &setting.ExemptionAmount, &setting.DeclarationLimit,
			&setting.LumpSumRate, &setting.WithholdingRate, &brackets)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: year %d", domain.ErrSettingsNotFound, year)
	}
	if err != nil {
		return nil, fmt.Errorf("query tax setting %d: %w", year, err)
	}
	if err := json.Unmarshal([]byte(brackets), &setting.Brackets); err != nil {
		return nil, fmt.Errorf("decode brackets of year %d: %w", year, err)
	}
	return &setting, nil
}

// SaveTaxSetting validates and upserts the setting of its year.
func (s *Store) SaveTaxSetting(ctx context.Context, setting domain.TaxSetting) error {
	if err := setting.Validate(); err != nil {
		return err
	}
	if err := upsertTaxSetting(ctx, s.db, setting); err != nil {
		return err
	}
	s.log.Info("tax setting saved", zap.Int("year", setting.Year), zap.Int("brackets", len(setting.Brackets)))
	return nil
}

func upsertTaxSetting(ctx context.Context, db execer, setting domain.TaxSetting) error {
	brackets, err := json.Marshal(setting.Brackets)
	if err != nil {
		return fmt.Errorf("encode brackets of year %d: %w", setting.Year, err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO tax_settings (year, exemption_amount, declaration_limit, lump_sum_rate, withholding_rate, tax_brackets)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(year) DO UPDATE SET
			exemption_amount = excluded.exemption_amount,
			declaration_limit = excluded.declaration_limit,
			lump_sum_rate = excluded.lump_sum_rate,
			withholding_rate = excluded.withholding_rate,
			tax_brackets = excluded.tax_brackets`,
		setting.Year, setting.ExemptionAmount.String(), setting.DeclarationLimit.String(),
		setting.LumpSumRate.String(), setting.WithholdingRate.String(), string(brackets))
	if err != nil {
		return fmt.Errorf("save tax setting %d: %w", setting.Year, err)
	}
	return nil
}
