package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "strutd",
	Short: "REST micro-framework demo server",
	Long: `strutd runs a small REST API built on the strut framework:
a path-mask router with closure handlers and an active-record layer
over SQLite.

Quick start:
  strutd serve     # Start the demo server

Routes are matched first-registered-wins, so literal paths must be
registered before overlapping placeholder paths.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "strut.yaml", "config file path")
}
