package client

import (
	"time"

	"trooba-http-transport/application/http"
	"trooba-http-transport/metrics"
)

type Options struct {
	// Endpoint is the static configuration every call is merged over.
	Endpoint http.Request

	// MaxBodyBytes bounds buffered response bodies. Zero means unbounded.
	MaxBodyBytes uint

	Timeout TimeoutOptions

	Metrics *metrics.Metrics
}

type TimeoutOptions struct {
	// IdleTimeout is how long an idle connection is kept by the underlying stack.
	IdleTimeout time.Duration
}
