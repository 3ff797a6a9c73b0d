package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vytor/uptriv/internal/logger"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			log.Info("===========================================")
			log.Info("UpTriv Server Starting")
			log.Info("===========================================")
			log.Debug("addr=%s", cfg.Addr)
			log.Debug("db_path=%s", cfg.DBPath)
			log.Debug("log_level=%s", cfg.LogLevel)
			log.Debug("timezone=%s", cfg.Timezone)
			log.Debug("content_path=%s", cfg.ContentPath)
			log.Debug("redis_addr=%s", cfg.RedisAddr)

			ctx := logger.NewContext(cmd.Context(), log)
			a, err := newApp(ctx, cfg)
			if err != nil {
				log.Error("failed to start: %v", err)
				return err
			}
			defer a.Close()

			httpServer := &http.Server{
				Addr:         cfg.Addr,
				Handler:      a.server().Routes(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("HTTP server listening on %s", cfg.Addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(stop)

			select {
			case sig := <-stop:
				log.Info("received signal %v, initiating graceful shutdown", sig)
			case err := <-errCh:
				if err != nil {
					log.Error("HTTP server error: %v", err)
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			log.Debug("shutting down HTTP server")
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				log.Error("HTTP server shutdown error: %v", err)
				return err
			}

			log.Info("===========================================")
			log.Info("UpTriv Server Stopped")
			log.Info("===========================================")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ADDR)")
	return cmd
}
