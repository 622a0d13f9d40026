package main

import (
	"io"
	"log/slog"

	"trooba-http-transport/config"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "trooba-http",
		Short: "HTTP transport for trooba pipelines",
		Long: `trooba-http bridges request/response pipelines to HTTP.

It carries pipeline context between hops in the x-trooba-context header
and tells connect timeouts (504) apart from read timeouts (408).`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ./trooba-http.yaml)")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newRequestCmd(opts))
	root.AddCommand(newConfigCmd(opts))

	return root
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.Load(config.NewViper(o.configFile))
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
