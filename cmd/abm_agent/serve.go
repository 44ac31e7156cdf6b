package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/abm-insights/internal/server"
)

var (
	servePort   int
	serveConfig string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for generating and fetching ABM insight reports.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to JSON config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveConfig)
	if err != nil {
		return err
	}

	runner, records, cleanup, err := buildRunner(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.New(server.Config{Port: servePort}, runner, records)
	return srv.Start()
}
