// Package cmd - HTTP estimate service
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpadapter "azure-bom-cost/adapters/http"
	"azure-bom-cost/core/output"
	"azure-bom-cost/internal/config"
	"azure-bom-cost/internal/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve estimates over HTTP",
	Long: `Run an HTTP service that prices posted BOM documents with the
configured price sources.

Endpoints:
  POST /api/v1/estimate   body is a BOM (JSON, YAML or HCL), ?format=json|csv|markdown|cli
  GET  /api/v1/formats
  GET  /health
  GET  /metrics

Example:
  curl -s --data-binary @bom.json localhost:8080/api/v1/estimate?format=markdown`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	eng, at, err := newEngine(cfg)
	if err != nil {
		return err
	}
	sources, closeSources, err := newSources(cfg, at)
	if err != nil {
		return err
	}
	defer closeSources()

	hcfg := httpadapter.DefaultConfig()
	if cfg.Server.Address != "" {
		hcfg.Address = cfg.Server.Address
	}
	if serveAddr != "" {
		hcfg.Address = serveAddr
	}
	if cfg.Server.MaxBodyKB > 0 {
		hcfg.MaxBodySize = int64(cfg.Server.MaxBodyKB) << 10
	}
	if cfg.Server.WriteTimeoutSeconds > 0 {
		hcfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second
	}

	// the server renders without terminal colour
	formatters := output.NewRegistry(output.Options{Details: cfg.Output.Details})
	srv := httpadapter.New(eng, formatters, sources, hcfg, logging.Named("http"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	fmt.Fprintf(cmd.OutOrStdout(), "Serving estimates on %s\n", hcfg.Address)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down", zap.String("address", hcfg.Address))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
