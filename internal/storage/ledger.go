package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ImportLedger upserts every record of the ledger in one transaction. Existing
// rows with the same id are replaced; nothing is deleted.
func (s *Store) ImportLedger(ctx context.Context, ledger *domain.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, tp := range ledger.Taxpayers {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO taxpayers (id, full_name) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET full_name = excluded.full_name`,
			tp.ID, tp.FullName)
		if err != nil {
			return fmt.Errorf("import taxpayer %d: %w", tp.ID, err)
		}
	}

	for _, src := range ledger.Sources {
		var defaultAmount decimal.NullDecimal
		if src.DefaultAmount != nil {
			defaultAmount = decimal.NewNullDecimal(*src.DefaultAmount)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sources (id, name, taxpayer_id, type, is_net, share_percentage, deduction_type, default_amount, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				taxpayer_id = excluded.taxpayer_id,
				type = excluded.type,
				is_net = excluded.is_net,
				share_percentage = excluded.share_percentage,
				deduction_type = excluded.deduction_type,
				default_amount = excluded.default_amount,
				detail = excluded.detail`,
			src.ID, src.Name, src.TaxpayerID, int(src.Type), boolToInt(src.IsNet),
			src.SharePercentage.String(), int(src.DeductionType), defaultAmount, src.Detail)
		if err != nil {
			return fmt.Errorf("import source %d: %w", src.ID, err)
		}
	}

	for _, pm := range ledger.PaymentMethods {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payment_methods (id, method_name) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET method_name = excluded.method_name`,
			pm.ID, pm.MethodName)
		if err != nil {
			return fmt.Errorf("import payment method %d: %w", pm.ID, err)
		}
	}

	for _, t := range ledger.Transactions {
		if err := insertTransaction(ctx, tx, t); err != nil {
			return err
		}
	}

	for _, setting := range ledger.TaxSettings {
		if err := upsertTaxSetting(ctx, tx, setting); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}

	s.log.Info("ledger imported",
		zap.Int("taxpayers", len(ledger.Taxpayers)),
		zap.Int("sources", len(ledger.Sources)),
		zap.Int("transactions", len(ledger.Transactions)),
		zap.Int("tax_settings", len(ledger.TaxSettings)))
	return nil
}

func insertTransaction(ctx context.Context, db execer, t domain.Transaction) error {
	var month, day sql.NullInt64
	if t.Month != nil {
		month = sql.NullInt64{Int64: int64(*t.Month), Valid: true}
	}
	if t.Day != nil {
		day = sql.NullInt64{Int64: int64(*t.Day), Valid: true}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO transactions (id, taxpayer_id, transaction_date, year, month, day, type, source_id,
			payment_method_id, amount, description, is_taxable, tax_item_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			taxpayer_id = excluded.taxpayer_id,
			transaction_date = excluded.transaction_date,
			year = excluded.year,
			month = excluded.month,
			day = excluded.day,
			type = excluded.type,
			source_id = excluded.source_id,
			payment_method_id = excluded.payment_method_id,
			amount = excluded.amount,
			description = excluded.description,
			is_taxable = excluded.is_taxable,
			tax_item_code = excluded.tax_item_code`,
		t.ID, t.TaxpayerID, t.TransactionDate.Format(dateLayout), t.Year, month, day, int(t.Type), t.SourceID,
		t.PaymentMethodID, t.Amount.String(), t.Description, boolToInt(t.IsTaxable), t.TaxItemCode)
	if err != nil {
		return fmt.Errorf("import transaction %d: %w", t.ID, err)
	}
	return nil
}

const transactionColumns = `id, taxpayer_id, transaction_date, year, month, day, type, source_id,
	payment_method_id, amount, description, is_taxable, tax_item_code`

// TaxableTransactions returns the taxable transactions of a taxpayer in a year.
func (s *Store) TaxableTransactions(ctx context.Context, taxpayerID int64, year int) ([]domain.Transaction, error) {
	return s.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE taxpayer_id = ? AND year = ? AND is_taxable = 1 ORDER BY transaction_date, id`, taxpayerID, year)
}

// Transactions returns every transaction of a taxpayer in a year, taxable or not.
func (s *Store) Transactions(ctx context.Context, taxpayerID int64, year int) ([]domain.Transaction, error) {
	return s.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE taxpayer_id = ? AND year = ? ORDER BY transaction_date, id`, taxpayerID, year)
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var (
			t          domain.Transaction
			date       string
			month, day sql.NullInt64
			typ        int
			taxable    int
		)
		if err := rows.Scan(&t.ID, &t.TaxpayerID, &date, &t.Year, &month, &day, &typ, &t.SourceID,
			&t.PaymentMethodID, &t.Amount, &t.Description, &taxable, &t.TaxItemCode); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.TransactionDate, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d has malformed date %q: %w", t.ID, date, err)
		}
		if month.Valid {
			m := int(month.Int64)
			t.Month = &m
		}
		if day.Valid {
			d := int(day.Int64)
			t.Day = &d
		}
		t.Type = domain.TransactionType(typ)
		t.IsTaxable = taxable != 0
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Sources returns all sources owned by a taxpayer.
func (s *Store) Sources(ctx context.Context, taxpayerID int64) ([]domain.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, taxpayer_id, type, is_net, share_percentage, deduction_type, default_amount, detail
		FROM sources WHERE taxpayer_id = ? ORDER BY id`, taxpayerID)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var out []domain.Source
	for rows.Next() {
		var (
			src           domain.Source
			typ, dedType  int
			isNet         int
			defaultAmount decimal.NullDecimal
		)
		if err := rows.Scan(&src.ID, &src.Name, &src.TaxpayerID, &typ, &isNet, &src.SharePercentage,
			&dedType, &defaultAmount, &src.Detail); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		src.Type = domain.TransactionType(typ)
		src.DeductionType = domain.DeductionType(dedType)
		src.IsNet = isNet != 0
		if defaultAmount.Valid {
			amount := defaultAmount.Decimal
			src.DefaultAmount = &amount
		}
		out = append(out, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return out, nil
}
