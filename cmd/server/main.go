package main

import (
	"fmt"
	"os"

	"water-admin/internal/logger"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "water-admin",
	Short: "Admin backend for water container deliveries and billing",
	Long: `water-admin serves the admin dashboard API: delivery reports, invoices,
price history, monthly billing and the audit log. All data is read from and
written to the remote delivery backend on behalf of the signed-in user.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path to the YAML config file (optional)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
