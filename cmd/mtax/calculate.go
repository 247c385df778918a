package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mtax/declaration-engine/internal/calculation"
	"github.com/mtax/declaration-engine/internal/config"
	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/mtax/declaration-engine/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type calculateOptions struct {
	source         sourceFlags
	taxpayerID     int64
	year           int
	method         string
	deductions     []string
	autoDeductions bool
	useDefaults    bool
	format         string
	outputDir      string
}

func newCalculateCmd(root *rootOptions) *cobra.Command {
	opts := &calculateOptions{}

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate the declaration of a taxpayer for one year",
		Example: `  mtax calculate --ledger ledger.yaml --taxpayer 1 --year 2025 --method actual \
    --deduction "Health=1200" --auto-deductions --format console`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalculate(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.source.ledger, "ledger", "", "ledger YAML file")
	f.StringVar(&opts.source.db, "db", "", "sqlite database created by 'mtax import' or 'mtax serve'")
	f.Int64Var(&opts.taxpayerID, "taxpayer", 0, "taxpayer id")
	f.IntVar(&opts.year, "year", 0, "tax year")
	f.StringVar(&opts.method, "method", string(domain.LumpSum), "expense method (lump_sum or actual)")
	f.StringArrayVar(&opts.deductions, "deduction", nil, `special deduction as "Name=amount" (repeatable)`)
	f.BoolVar(&opts.autoDeductions, "auto-deductions", false, "add the suggested special deductions from the ledger")
	f.BoolVar(&opts.useDefaults, "use-defaults", false, "fall back to the bundled tax settings when the year has none")
	f.StringVar(&opts.format, "format", "console", "output format (see 'mtax formats')")
	f.StringVar(&opts.outputDir, "output", "", "write the report to a file in this directory instead of stdout")
	return cmd
}

func runCalculate(cmd *cobra.Command, root *rootOptions, opts *calculateOptions) error {
	if err := requirePositive("taxpayer", opts.taxpayerID); err != nil {
		return err
	}
	if err := requirePositive("year", int64(opts.year)); err != nil {
		return err
	}
	if output.GetFormatterByName(opts.format) == nil {
		_, err := output.Render(&output.Report{}, opts.format)
		return err
	}
	if output.NormalizeFormatName(opts.format) == "pdf" && opts.outputDir == "" {
		return fmt.Errorf("pdf reports need --output")
	}
	deductions, err := parseDeductions(opts.deductions)
	if err != nil {
		return err
	}

	log, err := root.logger()
	if err != nil {
		return err
	}
	defer log.Sync()

	src, ledger, closer, err := opts.source.open(log)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := cmd.Context()
	calc := calculation.NewCalculator(src, src)
	calc.SetLogger(log.Sugar())

	suggestions, err := calc.SuggestDeductions(ctx, opts.taxpayerID, opts.year)
	if err != nil {
		return err
	}
	if opts.autoDeductions {
		deductions = append(deductions, suggestions...)
	}

	req := domain.CalculateRequest{
		TaxpayerID:      opts.taxpayerID,
		Year:            opts.year,
		Method:          domain.ExpenseMethod(strings.ToLower(opts.method)),
		OtherDeductions: deductions,
	}

	var fallback *domain.TaxSetting
	if opts.useDefaults {
		if fallback, err = config.DefaultTaxSetting(opts.year); err != nil {
			return err
		}
	}

	decl, err := calc.CalculateWithFallback(ctx, req, fallback)
	if err != nil {
		return err
	}

	setting, err := taxSetting(ctx, src, opts.year, opts.useDefaults)
	if err != nil {
		return err
	}
	report := output.NewReport(decl, setting)
	report.TaxpayerName = taxpayerName(ledger, opts.taxpayerID)
	if !opts.autoDeductions {
		report.Suggestions = suggestions
	}

	if opts.outputDir != "" {
		if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		path, err := output.GenerateReport(report, opts.format, opts.outputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
		return nil
	}

	data, err := output.Render(report, opts.format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// parseDeductions turns "Name=amount" flags into special deductions.
func parseDeductions(values []string) ([]domain.SpecialDeduction, error) {
	out := make([]domain.SpecialDeduction, 0, len(values))
	for _, v := range values {
		i := strings.LastIndex(v, "=")
		if i <= 0 {
			return nil, fmt.Errorf("%w: %q is not in Name=amount form", domain.ErrInvalidDeduction, v)
		}
		name := strings.TrimSpace(v[:i])
		amount, err := decimal.NewFromString(strings.TrimSpace(v[i+1:]))
		if err != nil {
			return nil, fmt.Errorf("%w: %q has an invalid amount: %v", domain.ErrInvalidDeduction, v, err)
		}
		out = append(out, domain.SpecialDeduction{Name: name, Amount: amount})
	}
	return out, nil
}
