package main

import (
	"errors"
	"fmt"

	"github.com/mtax/declaration-engine/internal/config"
	"github.com/mtax/declaration-engine/internal/storage"
	"github.com/spf13/cobra"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var ledgerPath, dbPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a ledger file into the sqlite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ledgerPath == "" {
				return errors.New("--ledger is required")
			}
			if dbPath == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				dbPath = cfg.DBPath
			}

			log, err := root.logger()
			if err != nil {
				return err
			}
			defer log.Sync()

			ledger, err := config.NewInputParser().LoadFromFile(ledgerPath)
			if err != nil {
				return err
			}
			store, err := storage.Open(dbPath, log)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ImportLedger(cmd.Context(), ledger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d taxpayers, %d sources, %d transactions and %d tax settings into %s\n",
				len(ledger.Taxpayers), len(ledger.Sources), len(ledger.Transactions), len(ledger.TaxSettings), dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "ledger YAML file")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database (default from MTAX_DB_PATH)")
	return cmd
}
