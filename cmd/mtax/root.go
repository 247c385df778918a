package main

import (
	"github.com/mtax/declaration-engine/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "mtax",
		Short: "Annual income tax declaration calculator",
		Long: `mtax computes annual income tax declarations from a ledger of income and
expense transactions: exemption, lump sum or actual expenses, special deductions,
progressive brackets and withholding.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newCalculateCmd(opts),
		newSuggestCmd(opts),
		newImportCmd(opts),
		newServeCmd(),
		newFormatsCmd(),
		newExampleCmd(),
	)
	return root
}

func (o *rootOptions) logger() (*zap.Logger, error) {
	return logger.New(o.logLevel)
}
