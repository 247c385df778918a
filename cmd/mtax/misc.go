package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mtax/declaration-engine/internal/config"
	"github.com/mtax/declaration-engine/internal/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the available report formats",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Formats: %s\n", strings.Join(output.AvailableFormatterNames(), ", "))
			fmt.Fprintf(out, "Aliases: %s\n", strings.Join(output.AvailableFormatAliases(), ", "))
		},
	}
}

func newExampleCmd() *cobra.Command {
	var (
		year int
		path string
	)

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Print an example ledger file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger := config.NewInputParser().CreateExampleLedger(year)
			data, err := yaml.Marshal(ledger)
			if err != nil {
				return fmt.Errorf("failed to marshal example ledger: %w", err)
			}
			if path == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example ledger written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "tax year of the example")
	cmd.Flags().StringVar(&path, "output", "", "write to this file instead of stdout")
	return cmd
}
