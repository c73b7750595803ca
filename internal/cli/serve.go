package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/FahadBinHussain/Xenovate/internal/api"
	"github.com/FahadBinHussain/Xenovate/internal/bootstrap"
	"github.com/FahadBinHussain/Xenovate/internal/config"
	log "github.com/FahadBinHussain/Xenovate/internal/logging"
	"github.com/FahadBinHussain/Xenovate/internal/service"
	"github.com/FahadBinHussain/Xenovate/internal/watcher"
)

const shutdownTimeout = 30 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the xenovate HTTP server",
	Long: `Start the xenovate HTTP server.

Loads the configuration, opens the usage ledger and serves the /api routes
until SIGINT or SIGTERM. Changes to debug and api-keys in the config file
apply without a restart.`,
	RunE: func(c *cobra.Command, args []string) error {
		return runServe(c, servePort)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "server port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(c *cobra.Command, port int) error {
	result, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := result.Config
	if port != 0 {
		cfg.Port = port
	}

	if cfg.LogDir != "" {
		log.SetLogDir(cfg.LogDir)
	}
	if err := log.ConfigureLogOutput(cfg.LoggingToFile); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := service.NewRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.WithError(err).Warn("failed to flush usage ledger")
		}
	}()

	srv := api.NewServer(rt)

	if w := startConfigWatcher(ctx, result.ConfigFilePath, srv); w != nil {
		defer w.Stop()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-errCh
}

// startConfigWatcher hot-reloads debug and api-keys. A missing config file
// directory only disables reloading.
func startConfigWatcher(ctx context.Context, path string, srv *api.Server) *watcher.Watcher {
	if path == "" {
		return nil
	}
	w, err := watcher.New(path, reloadConfig, func(cfg *config.Config) {
		log.SetDebug(cfg.Debug)
		srv.UpdateAccessKeys(cfg.APIKeys)
	})
	if err != nil {
		log.WithError(err).Warn("config hot reload disabled")
		return nil
	}
	if err := w.Start(ctx); err != nil {
		log.WithError(err).Warn("config hot reload disabled")
		_ = w.Stop()
		return nil
	}
	return w
}

func reloadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfigOptional(path, true)
	if err != nil {
		return nil, err
	}
	bootstrap.ApplyEnvOverrides(cfg)
	cfg.Normalize()
	return cfg, cfg.Validate()
}
