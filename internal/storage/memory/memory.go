// Package memory serves a ledger file from memory. The CLI calculates from it
// without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mtax/declaration-engine/internal/domain"
)

type Store struct {
	mu           sync.Mutex
	ledger       domain.Ledger
	declarations []domain.Declaration
}

// New copies the ledger's slices into a new store.
func New(ledger *domain.Ledger) *Store {
	s := &Store{}
	if ledger != nil {
		s.ledger = domain.Ledger{
			Taxpayers:      append([]domain.Taxpayer(nil), ledger.Taxpayers...),
			Sources:        append([]domain.Source(nil), ledger.Sources...),
			PaymentMethods: append([]domain.PaymentMethod(nil), ledger.PaymentMethods...),
			Transactions:   append([]domain.Transaction(nil), ledger.Transactions...),
			TaxSettings:    append([]domain.TaxSetting(nil), ledger.TaxSettings...),
		}
	}
	return s
}

func (s *Store) TaxableTransactions(_ context.Context, taxpayerID int64, year int) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range s.ledger.Transactions {
		if t.TaxpayerID == taxpayerID && t.Year == year && t.IsTaxable {
			out = append(out, t)
		}
	}
	return out, nil
}

// Transactions returns every transaction of a taxpayer in a year.
func (s *Store) Transactions(_ context.Context, taxpayerID int64, year int) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range s.ledger.Transactions {
		if t.TaxpayerID == taxpayerID && t.Year == year {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) Sources(_ context.Context, taxpayerID int64) ([]domain.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Source
	for _, src := range s.ledger.Sources {
		if src.TaxpayerID == taxpayerID {
			out = append(out, src)
		}
	}
	return out, nil
}

func (s *Store) TaxSetting(_ context.Context, year int) (*domain.TaxSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, setting := range s.ledger.TaxSettings {
		if setting.Year == year {
			copied := setting.WithYear(year)
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: year %d", domain.ErrSettingsNotFound, year)
}

// SaveTaxSetting validates the setting and replaces the one of its year.
func (s *Store) SaveTaxSetting(_ context.Context, setting domain.TaxSetting) error {
	if err := setting.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ledger.TaxSettings {
		if s.ledger.TaxSettings[i].Year == setting.Year {
			s.ledger.TaxSettings[i] = setting
			return nil
		}
	}
	s.ledger.TaxSettings = append(s.ledger.TaxSettings, setting)
	return nil
}

// SaveDeclaration appends the declaration with a synthetic id.
func (s *Store) SaveDeclaration(_ context.Context, d domain.Declaration) (*domain.Declaration, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	d.ID = int64(len(s.declarations) + 1)
	d.CreatedAt = &now
	s.declarations = append(s.declarations, cloneDeclaration(d))
	out := cloneDeclaration(d)
	return &out, nil
}

// ListDeclarations returns saved declarations newest first.
func (s *Store) ListDeclarations(_ context.Context, taxpayerID int64, year int) ([]domain.Declaration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Declaration{}
	for _, d := range s.declarations {
		if d.TaxpayerID == taxpayerID && d.Year == year {
			out = append(out, cloneDeclaration(d))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) Declaration(_ context.Context, id int64) (*domain.Declaration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.declarations {
		if d.ID == id {
			copied := cloneDeclaration(d)
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("%w: declaration %d", domain.ErrNotFound, id)
}

// cloneDeclaration detaches the breakdown and timestamp so saved history cannot
// be changed through a returned value.
func cloneDeclaration(d domain.Declaration) domain.Declaration {
	if d.TaxBreakdown != nil {
		d.TaxBreakdown = append([]domain.BracketTax(nil), d.TaxBreakdown...)
	}
	if d.CreatedAt != nil {
		created := *d.CreatedAt
		d.CreatedAt = &created
	}
	return d
}
