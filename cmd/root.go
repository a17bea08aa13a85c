// Package cmd contains the CLI entrypoints for the savetube service.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "savetube",
	Short: "Web-facing media download service",
	Long: `savetube accepts media URLs from supported platforms, runs them through
the extraction engine, and serves the resulting files back to clients.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (YAML)")
}
