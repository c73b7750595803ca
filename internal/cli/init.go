package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FahadBinHussain/Xenovate/internal/bootstrap"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a config file populated with the built-in defaults to the path given
by --config, $XENOVATE_CONFIG or ./config.yaml.

An existing file is left untouched unless --force is set.`,
	RunE: func(c *cobra.Command, args []string) error {
		path := bootstrap.ResolveConfigPath(cfgFile, "")
		if err := bootstrap.WriteDefaultConfig(path, initForce); err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
