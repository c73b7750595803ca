package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/FahadBinHussain/Xenovate/internal/json"
	log "github.com/FahadBinHussain/Xenovate/internal/logging"
	"github.com/FahadBinHussain/Xenovate/internal/operation"
	"github.com/FahadBinHussain/Xenovate/internal/service"
)

var (
	runLanguage string
	runTarget   string
	runFile     string
)

var runCmd = &cobra.Command{
	Use:   "run <analyze|optimize|convert|explain>",
	Short: "Run a single code operation from the command line",
	Long: `Run one code operation without starting the server.

Code is read from --file, or from stdin when --file is omitted. The result is
printed as JSON.`,
	Example: `  xenovate run analyze --language go --file main.go
  cat app.py | xenovate run convert --language python --target go`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		op, err := operation.ParseOperation(args[0])
		if err != nil {
			return err
		}
		code, err := readCode(c.InOrStdin(), runFile)
		if err != nil {
			return err
		}

		log.SetOutput(os.Stderr)
		result, err := loadConfig()
		if err != nil {
			return err
		}
		rt, err := service.NewRuntime(c.Context(), result.Config)
		if err != nil {
			return err
		}
		defer func() {
			if err := rt.Close(); err != nil {
				log.WithError(err).Warn("failed to flush usage ledger")
			}
		}()

		req := operation.CodeRequest{Code: code, Language: runLanguage, TargetLanguage: runTarget}
		res, err := rt.Service.Run(c.Context(), op, req)
		if res == nil {
			return err
		}
		if err != nil {
			log.WithError(err).Warn("operation degraded")
		}
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runLanguage, "language", "l", "", "source language of the code")
	runCmd.Flags().StringVarP(&runTarget, "target", "t", "", "target language (convert only)")
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "read code from file instead of stdin")
	rootCmd.AddCommand(runCmd)
}

func readCode(stdin io.Reader, path string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
