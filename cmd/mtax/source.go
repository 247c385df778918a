package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mtax/declaration-engine/internal/calculation"
	"github.com/mtax/declaration-engine/internal/config"
	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/mtax/declaration-engine/internal/storage"
	"github.com/mtax/declaration-engine/internal/storage/memory"
	"go.uber.org/zap"
)

type ledgerSource interface {
	calculation.TransactionQuery
	calculation.SettingsLookup
}

// sourceFlags selects where transactions and settings are read from.
type sourceFlags struct {
	ledger string
	db     string
}

// open returns the data source named by the flags, the parsed ledger when a
// file was given, and a closer.
func (f sourceFlags) open(log *zap.Logger) (ledgerSource, *domain.Ledger, io.Closer, error) {
	switch {
	case f.ledger != "" && f.db != "":
		return nil, nil, nil, errors.New("--ledger and --db are mutually exclusive")
	case f.ledger != "":
		ledger, err := config.NewInputParser().LoadFromFile(f.ledger)
		if err != nil {
			return nil, nil, nil, err
		}
		return memory.New(ledger), ledger, nopCloser{}, nil
	case f.db != "":
		store, err := storage.Open(f.db, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, store, nil
	default:
		return nil, nil, nil, errors.New("one of --ledger or --db is required")
	}
}

// taxSetting resolves the setting a declaration was computed with, for the
// report assumptions. A missing setting is not an error here.
func taxSetting(ctx context.Context, src ledgerSource, year int, useDefaults bool) (*domain.TaxSetting, error) {
	setting, err := src.TaxSetting(ctx, year)
	if err == nil {
		return setting, nil
	}
	if !errors.Is(err, domain.ErrSettingsNotFound) {
		return nil, err
	}
	if useDefaults {
		return config.DefaultTaxSetting(year)
	}
	return nil, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func taxpayerName(ledger *domain.Ledger, id int64) string {
	if ledger == nil {
		return ""
	}
	for _, tp := range ledger.Taxpayers {
		if tp.ID == id {
			return tp.FullName
		}
	}
	return ""
}

func requirePositive(name string, v int64) error {
	if v <= 0 {
		return fmt.Errorf("--%s must be positive", name)
	}
	return nil
}
