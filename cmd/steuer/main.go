package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tax-agent/config"
	"tax-agent/domain"
	"tax-agent/service"
)

var (
	configPath string
	logLevel   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "steuer",
		Short:         "German income tax calculator",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file with additional tax years")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	root.AddCommand(newCalcCmd(), newYearsCmd())
	return root
}

func loadRegistry() (*service.TaxYearRegistry, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return service.NewTaxYearRegistry(cfg.TaxYears, cfg.DefaultTaxYear)
}

func newCalcCmd() *cobra.Command {
	var (
		input     domain.TaxCalculationInput
		splitting bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate income tax, Soli and church tax for a taxable income",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry()
			if err != nil {
				return err
			}
			input.AssessmentType = domain.AssessmentEinzel
			if splitting {
				input.AssessmentType = domain.AssessmentSplitting
			}
			if err := service.ValidateTaxInput(input); err != nil {
				return err
			}
			cfg, err := registry.Lookup(input.TaxYear)
			if err != nil {
				return err
			}

			result := service.CalculateTax(cfg, input)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printResult(cmd.OutOrStdout(), cfg.Year, result)
		},
	}

	cmd.Flags().Float64Var(&input.TaxableIncome, "income", 0, "taxable income (zvE) in EUR")
	cmd.Flags().BoolVar(&splitting, "splitting", false, "joint assessment (Splittingtarif)")
	cmd.Flags().BoolVar(&input.ChurchTax, "church", false, "church tax applies")
	cmd.Flags().IntVar(&input.ChildrenCount, "children", 0, "number of children")
	cmd.Flags().StringVar(&input.Bundesland, "state", "", "two-letter state code for the church tax rate")
	cmd.Flags().IntVar(&input.TaxYear, "year", 0, "tax year (default: configured default)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("income")
	return cmd
}

func printResult(out io.Writer, year int, r domain.TaxCalculationResult) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	rows := []struct {
		label string
		value string
	}{
		{"Steuerjahr", fmt.Sprintf("%d", year)},
		{"zu versteuerndes Einkommen", fmt.Sprintf("%.0f EUR", r.TaxableIncome)},
		{"Einkommensteuer", fmt.Sprintf("%.0f EUR", r.IncomeTax)},
		{"Solidaritätszuschlag", fmt.Sprintf("%.0f EUR", r.SolidaritySurcharge)},
		{"Kirchensteuer", fmt.Sprintf("%.0f EUR", r.ChurchTax)},
		{"Steuer gesamt", fmt.Sprintf("%.0f EUR", r.TotalTax)},
		{"Netto", fmt.Sprintf("%.0f EUR", r.NetIncome)},
		{"Grenzsteuersatz", fmt.Sprintf("%.1f %%", r.MarginalTaxRate)},
		{"Durchschnittssteuersatz", fmt.Sprintf("%.1f %%", r.EffectiveTaxRate)},
		{"Kinderfreibetrag", fmt.Sprintf("%t", r.ChildAllowanceUsed)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t\n", row.label, row.value)
	}
	return tw.Flush()
}

func newYearsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List the known tax years",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "YEAR\tGRUNDFREIBETRAG\tSOLI SINGLE\tSOLI SPLITTING\tDEFAULT")
			for _, y := range registry.Years() {
				fmt.Fprintf(tw, "%d\t%.0f\t%.0f\t%.0f\t%t\n",
					y.Year, y.Grundfreibetrag, y.SoliThresholdSingle, y.SoliThresholdSplitting,
					y.Year == registry.DefaultYear())
			}
			return tw.Flush()
		},
	}
}
