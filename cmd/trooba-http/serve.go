package main

import (
	"context"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trooba-http-transport/application/callctx"
	"trooba-http-transport/application/http"
	"trooba-http-transport/application/http/actor/server"
	"trooba-http-transport/application/http/bridge"
	"trooba-http-transport/application/util/domain"
	"trooba-http-transport/metrics"
	"trooba-http-transport/transport"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an echo pipeline",
		Long: `Serve a pipeline that answers every call with its path, method,
query and the context it received.

Examples:
  trooba-http serve --port 8080
  curl -H 'x-trooba-context: {"foo":"bar"}' 'localhost:8080/search?q=nike'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

			reg := prometheus.NewRegistry()
			m := metrics.New(reg)

			tr, err := bridge.New(cfg.Bridge(m), nil, domain.NetLookuper{}, transport.Listen, logger, clock.New())
			if err != nil {
				return err
			}

			srv := tr.ServerFactory()(echo())
			if err := srv.Start(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", srv.Addr())

			var metricsSrv *nethttp.Server
			if cfg.Metrics.Port > 0 {
				metricsSrv = serveMetrics(reg, cfg.Metrics.Port, logger)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if metricsSrv != nil {
				metricsSrv.Shutdown(shutdownCtx)
			}
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on, overrides server.port")

	return cmd
}

func echo() server.Pipeline {
	return server.PipelineFunc(func(ctx context.Context, call *callctx.Context, request *server.Request) (*http.Response, error) {
		return http.JSON(nethttp.StatusOK, map[string]any{
			"path":    call.Meta.Path,
			"method":  call.Meta.Operation,
			"query":   request.Body,
			"context": call.Snapshot(),
		})
	})
}

func serveMetrics(reg *prometheus.Registry, port int, logger *slog.Logger) *nethttp.Server {
	mux := nethttp.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &nethttp.Server{
		Addr:              transport.PortAddr(port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
			logger.Error("metrics server failed", "error", err.Error())
		}
	}()

	return srv
}
