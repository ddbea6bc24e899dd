package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/liamcoop/taxregimes/amount"
	"github.com/liamcoop/taxregimes/internal/config"
	"github.com/liamcoop/taxregimes/tax"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

type calcOptions struct {
	cfgFile          string
	output           string
	grossSalary      string
	pension          string
	homeLoanInterest string
	section80C       string
	nps              string
}

func newRootCmd() *cobra.Command {
	opts := &calcOptions{}

	cmd := &cobra.Command{
		Use:   "taxcalc",
		Short: "Compare income tax under the Old, New and Proposed regimes",
		Example: `  taxcalc --gross-salary 12,80,000
  taxcalc --gross-salary 1500000 --pension 200000 --section-80c 150000 --output json`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalc(cmd.OutOrStdout(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file with custom regime tables")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "output format (table, json)")

	cmd.Flags().StringVar(&opts.grossSalary, "gross-salary", "", "gross salary (required)")
	cmd.Flags().StringVar(&opts.pension, "pension", "", "pension")
	cmd.Flags().StringVar(&opts.homeLoanInterest, "home-loan-interest", "", "home loan interest")
	cmd.Flags().StringVar(&opts.section80C, "section-80c", "", "section 80C investments")
	cmd.Flags().StringVar(&opts.nps, "nps", "", "NPS contribution")
	_ = cmd.MarkFlagRequired("gross-salary")

	cmd.AddCommand(newRegimesCmd(opts))

	return cmd
}

func newRegimesCmd(opts *calcOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "regimes",
		Short: "Print the configured regime tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRegimes(cmd.OutOrStdout(), opts)
		},
	}
}

func loadEngine(cfgFile string) (*tax.Engine, error) {
	cfg, err := config.Load(config.New(), cfgFile)
	if err != nil {
		return nil, err
	}
	return cfg.Engine()
}

func runCalc(out io.Writer, opts *calcOptions) error {
	if err := checkOutput(opts.output); err != nil {
		return err
	}

	in, err := parseInput(opts)
	if err != nil {
		return err
	}

	engine, err := loadEngine(opts.cfgFile)
	if err != nil {
		return err
	}

	cmp, err := engine.Compare(in)
	if err != nil {
		return fmt.Errorf("calculation failed: %w", err)
	}

	if opts.output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cmp)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Regime", "Taxable income", "Slab tax", "Tax payable")
	for _, r := range cmp.Results {
		name := r.RegimeName
		if r.MarginalReliefApplied {
			name += " (marginal relief)"
		}
		t.Row(name,
			amount.FormatIndian(r.TaxableIncome),
			amount.FormatIndian(r.SlabTax),
			amount.FormatIndian(r.Tax))
	}

	_, err = fmt.Fprintln(out, t.String())
	return err
}

func runRegimes(out io.Writer, opts *calcOptions) error {
	if err := checkOutput(opts.output); err != nil {
		return err
	}

	engine, err := loadEngine(opts.cfgFile)
	if err != nil {
		return err
	}

	regimes, err := engine.Regimes()
	if err != nil {
		return err
	}

	if opts.output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(regimes)
	}

	for _, r := range regimes {
		fmt.Fprintf(out, "%s (%s)\n", r.Name, r.ID)
		fmt.Fprintf(out, "  standard deduction: %s\n", amount.FormatIndian(r.StandardDeduction))
		fmt.Fprintf(out, "  taxed from:         %s\n", amount.FormatIndian(r.Threshold))
		if r.Deductions != "" {
			fmt.Fprintf(out, "  deductions:         %s\n", r.Deductions)
		}
		if r.MarginalRelief != nil {
			fmt.Fprintf(out, "  marginal relief:    above %s\n", amount.FormatIndian(r.MarginalRelief.Threshold))
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("Slab", "Rate")
		for _, slab := range r.Slabs {
			size := "remaining"
			if slab.Size != nil {
				size = amount.FormatIndian(*slab.Size)
			}
			t.Row(size, formatRate(slab.Rate))
		}
		fmt.Fprintln(out, t.String())
	}

	return nil
}

func parseInput(opts *calcOptions) (tax.Input, error) {
	var in tax.Input
	var err error

	if in.GrossSalary, err = amount.ParseRequired(opts.grossSalary); err != nil {
		return in, fmt.Errorf("--gross-salary: %w", err)
	}
	if in.Pension, err = amount.Parse(opts.pension); err != nil {
		return in, fmt.Errorf("--pension: %w", err)
	}
	if in.HomeLoanInterest, err = amount.Parse(opts.homeLoanInterest); err != nil {
		return in, fmt.Errorf("--home-loan-interest: %w", err)
	}
	if in.Section80C, err = amount.Parse(opts.section80C); err != nil {
		return in, fmt.Errorf("--section-80c: %w", err)
	}
	if in.NPS, err = amount.Parse(opts.nps); err != nil {
		return in, fmt.Errorf("--nps: %w", err)
	}

	return in, nil
}

func checkOutput(output string) error {
	switch output {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use %s or %s)", output, outputTable, outputJSON)
	}
}

func formatRate(rate float64) string {
	s := strconv.FormatFloat(rate*100, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + "%"
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
