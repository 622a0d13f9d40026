// Package bridge wires the client and server bridges to one codec
// resolved from configuration.
package bridge

import (
	"log/slog"

	"trooba-http-transport/application/http/actor/client"
	"trooba-http-transport/application/http/actor/server"
	"trooba-http-transport/application/propagation"
	"trooba-http-transport/application/util/domain"
	"trooba-http-transport/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

type Config struct {
	// Codec is used as is when set.
	Codec propagation.Codec
	// CodecName is resolved through the registry when Codec is nil.
	// Leaving both empty disables propagation.
	CodecName string

	Client client.Options
	Server server.Options
}

type Transport struct {
	codec propagation.Codec
	cfg   Config

	lookuper domain.Lookuper
	listen   transport.ListenFunc

	logger *slog.Logger
	clock  clock.Clock
}

func New(
	cfg Config,
	registry *propagation.Registry,
	lookuper domain.Lookuper,
	listen transport.ListenFunc,
	logger *slog.Logger,
	clock clock.Clock,
) (*Transport, error) {
	codec, err := resolveCodec(cfg, registry)
	if err != nil {
		return nil, err
	}

	return &Transport{
		codec:    codec,
		cfg:      cfg,
		lookuper: lookuper,
		listen:   listen,
		logger:   logger,
		clock:    clock,
	}, nil
}

func resolveCodec(cfg Config, registry *propagation.Registry) (propagation.Codec, error) {
	if cfg.Codec != nil {
		return cfg.Codec, nil
	}
	if cfg.CodecName == "" {
		return nil, nil
	}
	if registry == nil {
		registry = propagation.NewRegistry()
	}

	codec, err := registry.Resolve(cfg.CodecName)
	if err != nil {
		return nil, errors.Wrap(err, "resolving context codec")
	}
	return codec, nil
}

// Codec returns the resolved codec, nil when propagation is disabled.
func (t *Transport) Codec() propagation.Codec { return t.codec }

// Client creates a client bound to the configured endpoint.
func (t *Transport) Client() *client.Client {
	return client.New(t.codec, t.lookuper, t.logger.With("side", "client"), t.clock, t.cfg.Client)
}

// ServerFactory returns a factory building servers that share this
// transport's codec and options.
func (t *Transport) ServerFactory() server.Factory {
	return func(pipeline server.Pipeline) *server.Server {
		return server.New(pipeline, t.codec, t.listen, t.logger.With("side", "server"), t.clock, t.cfg.Server)
	}
}
