package main

import (
	"fmt"

	"github.com/mtax/declaration-engine/internal/calculation"
	"github.com/mtax/declaration-engine/internal/output"
	"github.com/spf13/cobra"
)

func newSuggestCmd(root *rootOptions) *cobra.Command {
	var (
		source     sourceFlags
		taxpayerID int64
		year       int
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "List special deductions suggested by the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requirePositive("taxpayer", taxpayerID); err != nil {
				return err
			}
			if err := requirePositive("year", int64(year)); err != nil {
				return err
			}
			log, err := root.logger()
			if err != nil {
				return err
			}
			defer log.Sync()

			src, _, closer, err := source.open(log)
			if err != nil {
				return err
			}
			defer closer.Close()

			calc := calculation.NewCalculator(src, src)
			calc.SetLogger(log.Sugar())
			suggestions, err := calc.SuggestDeductions(cmd.Context(), taxpayerID, year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(suggestions) == 0 {
				fmt.Fprintln(out, "No special deductions found.")
				return nil
			}
			for _, s := range suggestions {
				fmt.Fprintf(out, "%-30s %20s\n", s.Name, output.FormatCurrency(s.Amount))
				fmt.Fprintf(out, "  --deduction %q\n", fmt.Sprintf("%s=%s", s.Name, s.Amount.StringFixed(2)))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&source.ledger, "ledger", "", "ledger YAML file")
	f.StringVar(&source.db, "db", "", "sqlite database")
	f.Int64Var(&taxpayerID, "taxpayer", 0, "taxpayer id")
	f.IntVar(&year, "year", 0, "tax year")
	return cmd
}
