package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skypies/solari1090/backend"
)

var listenAddr string

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (overrides http.addr)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over HTTP",
	Long: `Serve the board over HTTP. Each request to /api runs one cycle.

Examples:
  solari serve --config /etc/solari.yaml
  curl 'localhost:8080/api?mode=arrivals&rows=5'`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := backend.NewServer(a.engine, a.metrics, a.logger)
	if err != nil {
		return err
	}

	addr := a.cfg.HTTP.Addr
	if listenAddr != "" {
		addr = listenAddr
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start(addr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("shutdown", zap.Error(err))
	}
	return nil
}
