package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/captable-simulator/internal/captable"
	"github.com/sheikh-saqib/captable-simulator/internal/format"
	"github.com/sheikh-saqib/captable-simulator/internal/scenario"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	scenarioPath string
	locale       string
	currencyCode string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:           "captable",
	Short:         "Simulate equity dilution across funding rounds",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scenario file and print the cap table after each round",
	Long: `Run the funding rounds of a YAML scenario file over its initial
ownership and print every round's figures and the resulting cap table.

Example usage:
  captable simulate -f scenario.yaml
  captable simulate -f scenario.yaml --locale de-DE --currency EUR
  captable simulate -f scenario.yaml --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulate(cmd.OutOrStdout())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "captable", version)
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd)

	simulateCmd.Flags().StringVarP(&scenarioPath, "file", "f", "", "Path to the scenario YAML file")
	simulateCmd.Flags().StringVar(&locale, "locale", "", "BCP 47 locale for output, overrides the file (default en-US)")
	simulateCmd.Flags().StringVar(&currencyCode, "currency", "", "ISO 4217 currency for output, overrides the file (default USD)")
	simulateCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format: table or json")
	_ = simulateCmd.MarkFlagRequired("file")
}

func runSimulate(out io.Writer) error {
	if outputFormat != "table" && outputFormat != "json" {
		return fmt.Errorf("unknown format %q, want table or json", outputFormat)
	}
	req, err := scenario.LoadFile(scenarioPath)
	if err != nil {
		return err
	}
	if locale != "" {
		req.Locale = locale
	}
	if currencyCode != "" {
		req.Currency = currencyCode
	}
	f, err := format.New(req.Locale, req.Currency)
	if err != nil {
		return err
	}

	history, simErr := captable.Simulate(req.Initial, req.Rounds)
	rep := f.Report(history)
	if outputFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			History any           `json:"history"`
			Report  format.Report `json:"report"`
		}{history, rep}); err != nil {
			return err
		}
	} else if err := renderTable(out, rep); err != nil {
		return err
	}
	// rounds before a failure are still printed
	return simErr
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
