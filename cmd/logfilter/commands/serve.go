package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coffersTech/logfilter/internal/library"
	"github.com/coffersTech/logfilter/internal/metrics"
	"github.com/coffersTech/logfilter/internal/server"
)

func newServeCmd(e *env) *cobra.Command {
	var addr, dataPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := e.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("data") {
				cfg.Library.Path = dataPath
			}
			logger := e.logger

			m := metrics.PrometheusMetrics("")
			parser := e.parserOptions()

			// 1. Filter library
			store, err := library.NewStore(
				library.WithParser(parser),
				library.WithLogger(logger.With("module", "library")),
				library.WithMetrics(m),
			)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			var autosaveDone <-chan struct{}
			if cfg.Library.Path != "" {
				if err := store.Load(cfg.Library.Path); err != nil {
					return err
				}
				if cfg.Library.AutosaveInterval.Duration > 0 {
					autosaveDone = store.StartAutosave(ctx, cfg.Library.Path, cfg.Library.AutosaveInterval.Duration)
				}
			}

			// 2. HTTP server
			srv, err := server.NewFilterServer(cfg.Server, store,
				server.WithParser(parser),
				server.WithLogger(logger.With("module", "server")),
				server.WithMetrics(m),
			)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.Server.Addr, "auth", cfg.Server.APIKeyHash != "")
				errCh <- srv.Start()
			}()

			// 3. Graceful shutdown
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case sig := <-quit:
				logger.Info("shutting down", "signal", sig.String())
			case err := <-errCh:
				if err != nil {
					logger.Error("server stopped", "err", err)
					return err
				}
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server shutdown error", "err", err)
			}

			if cfg.Library.Path != "" {
				if autosaveDone != nil {
					cancel()
					<-autosaveDone
				} else if store.Dirty() {
					if err := store.Save(cfg.Library.Path); err != nil {
						return err
					}
				}
			}

			logger.Info("logfilter exited gracefully")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	cmd.Flags().StringVar(&dataPath, "data", "", "Filter snapshot path, overrides library.path; empty disables persistence")
	return cmd
}
