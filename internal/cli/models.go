package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/FahadBinHussain/Xenovate/internal/json"
	log "github.com/FahadBinHussain/Xenovate/internal/logging"
	"github.com/FahadBinHussain/Xenovate/internal/provider"
	"github.com/FahadBinHussain/Xenovate/internal/service"
)

const probeTimeout = 60 * time.Second

var (
	modelsProbe bool
	modelsJSON  bool
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List configured model candidates",
	Long: `List the configured model candidates in priority order.

With --probe each model is called once with a minimal prompt and reported as
available, quota_exceeded or error.`,
	RunE: func(c *cobra.Command, args []string) error {
		log.SetOutput(os.Stderr)
		result, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := result.Config
		if !cfg.CredentialConfigured() {
			return fmt.Errorf("API key not configured")
		}

		ctx, cancel := context.WithTimeout(c.Context(), probeTimeout)
		defer cancel()

		gen, err := service.NewGenerator(ctx, cfg)
		if err != nil {
			return err
		}
		rt := service.NewRuntimeWith(cfg, gen, nil)
		defer rt.Close()

		statuses := rt.Invoker.Status()
		if modelsProbe {
			if statuses, err = rt.Invoker.Probe(ctx); err != nil {
				return err
			}
		}

		if modelsJSON {
			data, err := json.MarshalIndent(statuses, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), string(data))
			return nil
		}
		return printModelTable(c, statuses)
	},
}

func init() {
	modelsCmd.Flags().BoolVar(&modelsProbe, "probe", false, "call each model once to check availability")
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(modelsCmd)
}

func printModelTable(c *cobra.Command, statuses []provider.ModelStatus) error {
	tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRIORITY\tMODEL\tSTATUS\tDEFAULT\tERROR")
	for _, st := range statuses {
		def := ""
		if st.IsDefault {
			def = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", st.Priority, st.Name, st.Status, def, st.Error)
	}
	return tw.Flush()
}
