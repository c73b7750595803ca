// Package cli wires the cobra command tree for the xenovate binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FahadBinHussain/Xenovate/internal/bootstrap"
	"github.com/FahadBinHussain/Xenovate/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "xenovate",
	Short: "Code analysis, optimization, conversion and explanation over LLMs",
	Long: `xenovate serves four code operations (analyze, optimize, convert, explain)
backed by a prioritized list of language models with quota-aware fallback.

Running xenovate without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(c *cobra.Command, args []string) error {
		return runServe(c, servePort)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XENOVATE_CONFIG or ./config.yaml)")
	rootCmd.Flags().IntVarP(&servePort, "port", "p", 0, "server port (overrides config)")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig sets up logging and returns the bootstrapped configuration.
func loadConfig() (*bootstrap.Result, error) {
	logging.SetupBaseLogger()
	result, err := bootstrap.Bootstrap(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap: %w", err)
	}
	logging.SetDebug(result.Config.Debug)
	return result, nil
}
