package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rgehrsitz/paycalc/internal/api"
	"github.com/rgehrsitz/paycalc/internal/metrics"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP calculation service",
		Long: `Serve the calculation API:

  POST /v1/calculate
  GET  /v1/countries
  GET  /v1/health
  POST /v1/admin/rulepacks/invalidate
  GET  /metrics
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, nil)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// serve runs the HTTP service until ctx is cancelled. ready, if set, is
// called with the bound address once the listener is open.
func (a *app) serve(ctx context.Context, ready func(net.Addr)) error {
	cfg := a.cfg.Server

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	store, orch := a.services(m)
	if err := store.Warm(ctx, a.cfg.Rules.Preload...); err != nil {
		return fmt.Errorf("failed to preload rule packs: %w", err)
	}

	routerCfg := api.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout: seconds(cfg.RequestTimeoutSeconds),
		Admin:          cfg.AdminEnabled,
	}
	if cfg.MetricsEnabled {
		routerCfg.Gatherer = reg
	}
	handler := api.NewHandler(orch, orch.Calculators(), store, a.logger)
	srv := api.NewServer(cfg.Addr, api.NewRouter(handler, routerCfg),
		seconds(cfg.ReadTimeoutSeconds), seconds(cfg.WriteTimeoutSeconds))

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	if ready != nil {
		ready(ln.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("paycalc listening",
			"addr", ln.Addr().String(),
			"rule_packs", store.Cached(),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), seconds(cfg.ShutdownTimeoutSeconds))
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
