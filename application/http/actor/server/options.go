package server

import (
	"time"

	"trooba-http-transport/metrics"
)

type Options struct {
	// Port to bind on all interfaces. Zero picks an ephemeral port.
	Port int

	Timeout TimeoutOptions

	Metrics *metrics.Metrics
}

type TimeoutOptions struct {
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
}
