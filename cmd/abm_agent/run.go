package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	runCompany string
	runDomain  string
	runNotify  bool
	runConfig  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate one insight report from the terminal",
	Long:  `Run the full insight pipeline for a single company/domain pair and print the resulting report as JSON.`,
	RunE:  runReport,
}

func init() {
	runCmd.Flags().StringVar(&runCompany, "company", "", "Company name (required)")
	runCmd.Flags().StringVar(&runDomain, "domain", "", "Company domain, e.g. acme.com (required)")
	runCmd.Flags().BoolVar(&runNotify, "notify", false, "Deliver the report to the configured webhook")
	runCmd.Flags().StringVar(&runConfig, "config", "", "Path to JSON config file")
	_ = runCmd.MarkFlagRequired("company")
	_ = runCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(runCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(runConfig)
	if err != nil {
		return err
	}

	ctx := context.Background()
	runner, _, cleanup, err := buildRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := runner.CreateReport(ctx, runCompany, runDomain, runNotify)
	if err != nil {
		return fmt.Errorf("report generation failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
