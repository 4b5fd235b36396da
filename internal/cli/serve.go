package cli

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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/0x6d61/scandash/internal/api"
	"github.com/0x6d61/scandash/internal/dashboard"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard HTTP API",
	Long: `Serve exposes the scan registry, statistics, the delete flow and
simulated scans over HTTP. Dashboard data is refreshed in the background.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Duration("refresh", dashboard.DefaultRefreshInterval, "Auto-refresh interval")
	serveCmd.Flags().Duration("shutdown-grace", 5*time.Second, "Time allowed for in-flight requests on shutdown")
	serveCmd.Flags().Bool("no-metrics", false, "Disable the /metrics endpoint")
	serveCmd.Flags().Bool("runtime-stats", false, "Export Go runtime and process metrics")
}

// runServe wires the dashboard into the HTTP API and runs the server and
// the auto-refresher until SIGINT or SIGTERM.
func runServe(cmd *cobra.Command, args []string) error {
	// ------------------------------------------------------------------ //
	// 1. Wire the application
	// ------------------------------------------------------------------ //
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	grace, _ := cmd.Flags().GetDuration("shutdown-grace")

	// ------------------------------------------------------------------ //
	// 2. Context (SIGINT/SIGTERM stop the server gracefully)
	// ------------------------------------------------------------------ //
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// ------------------------------------------------------------------ //
	// 3. Refresher and HTTP server
	// ------------------------------------------------------------------ //
	refresher := a.dash.NewRefresher(dashboard.RefreshConfig{
		Interval: a.cfg.Refresh.Interval,
		Latency:  a.cfg.Refresh.Latency,
	})

	srv := api.New(a.dash, refresher, api.Config{
		ScanRate:  a.cfg.API.ScanRate,
		ScanBurst: a.cfg.API.ScanBurst,
		Metrics:   a.metrics,
		Logger:    a.logger.Logger,
	})

	ln, err := net.Listen("tcp", a.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.HTTP.Addr, err)
	}
	httpSrv := &http.Server{
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// ------------------------------------------------------------------ //
	// 4. Run until cancelled
	// ------------------------------------------------------------------ //
	a.logger.Info("serving dashboard", "addr", ln.Addr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return refresher.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		a.logger.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
