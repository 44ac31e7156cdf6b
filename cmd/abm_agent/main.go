// Package main provides the entry point for the ABM insight engine.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "abm_agent",
	Short: "ABM insight report generator",
	Long:  "abm_agent generates account-based marketing insight reports for a company by scraping its website, retrieving cited research, and synthesizing a personalized outreach email.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
