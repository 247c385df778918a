package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mtax/declaration-engine/internal/domain"
	"go.uber.org/zap"
)

// SaveDeclaration appends a declaration to the history and returns it with its
// new id and creation time. Saved declarations are never updated.
func (s *Store) SaveDeclaration(ctx context.Context, d domain.Declaration) (*domain.Declaration, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	breakdown, err := json.Marshal(d.TaxBreakdown)
	if err != nil {
		return nil, fmt.Errorf("encode tax breakdown: %w", err)
	}
	createdAt := time.Now().UTC().Truncate(time.Second)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO declarations (taxpayer_id, year, name, expense_method, total_income, exemption_applied,
			expense_amount, deductions_amount, tax_base, calculated_tax, withholding_tax, net_tax_to_pay,
			status, tax_breakdown, declaration_required, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.TaxpayerID, d.Year, d.Name, string(d.ExpenseMethod), d.TotalIncome.String(), d.ExemptionApplied.String(),
		d.ExpenseAmount.String(), d.DeductionsAmount.String(), d.TaxBase.String(), d.CalculatedTax.String(),
		d.WithholdingTax.String(), d.NetTaxToPay.String(), string(d.Status), string(breakdown),
		boolToInt(d.DeclarationRequired), createdAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert declaration: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("declaration id: %w", err)
	}

	d.ID = id
	d.CreatedAt = &createdAt
	s.log.Info("declaration saved",
		zap.Int64("id", id),
		zap.Int64("taxpayer_id", d.TaxpayerID),
		zap.Int("year", d.Year),
		zap.String("status", string(d.Status)))
	return &d, nil
}

const declarationColumns = `id, taxpayer_id, year, name, expense_method, total_income, exemption_applied,
	expense_amount, deductions_amount, tax_base, calculated_tax, withholding_tax, net_tax_to_pay,
	status, tax_breakdown, declaration_required, created_at`

// ListDeclarations returns the saved declarations of a taxpayer and year, newest first.
func (s *Store) ListDeclarations(ctx context.Context, taxpayerID int64, year int) ([]domain.Declaration, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+declarationColumns+` FROM declarations
		WHERE taxpayer_id = ? AND year = ? ORDER BY created_at DESC, id DESC`, taxpayerID, year)
	if err != nil {
		return nil, fmt.Errorf("query declarations: %w", err)
	}
	defer rows.Close()

	out := []domain.Declaration{}
	for rows.Next() {
		d, err := scanDeclaration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate declarations: %w", err)
	}
	return out, nil
}

// Declaration returns one saved declaration or domain.ErrNotFound.
func (s *Store) Declaration(ctx context.Context, id int64) (*domain.Declaration, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+declarationColumns+` FROM declarations WHERE id = ?`, id)
	d, err := scanDeclaration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: declaration %d", domain.ErrNotFound, id)
	}
	return d, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeclaration(row rowScanner) (*domain.Declaration, error) {
	var (
		d                   domain.Declaration
		method, status      string
		breakdown, created  string
		declarationRequired int
	)
	err := row.Scan(&d.ID, &d.TaxpayerID, &d.Year, &d.Name, &method, &d.TotalIncome, &d.ExemptionApplied,
		&d.ExpenseAmount, &d.DeductionsAmount, &d.TaxBase, &d.CalculatedTax, &d.WithholdingTax, &d.NetTaxToPay,
		&status, &breakdown, &declarationRequired, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan declaration: %w", err)
	}

	d.ExpenseMethod = domain.ExpenseMethod(method)
	d.Status = domain.DeclarationStatus(status)
	d.DeclarationRequired = declarationRequired != 0
	if err := json.Unmarshal([]byte(breakdown), &d.TaxBreakdown); err != nil {
		return nil, fmt.Errorf("decode tax breakdown of declaration %d: %w", d.ID, err)
	}
	createdAt, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, fmt.Errorf("declaration %d has malformed created_at %q: %w", d.ID, created, err)
	}
	d.CreatedAt = &createdAt
	return &d, nil
}
