package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/FahadBinHussain/Xenovate/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(c *cobra.Command, args []string) {
		fmt.Fprintf(c.OutOrStdout(), "xenovate %s (commit %s, built %s, %s)\n",
			buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
