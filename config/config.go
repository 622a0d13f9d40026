// Package config loads the bridge configuration from a YAML file and
// TROOBA_HTTP_* environment variables.
package config

import (
	"time"

	"trooba-http-transport/application/http"
	"trooba-http-transport/application/http/actor/client"
	"trooba-http-transport/application/http/actor/server"
	"trooba-http-transport/application/http/bridge"
	"trooba-http-transport/application/http/timeout"
	"trooba-http-transport/application/propagation"
	"trooba-http-transport/metrics"
)

type Config struct {
	Client ClientConfig `mapstructure:"client" yaml:"client"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Context names the propagation codec. Empty disables propagation.
	Context string `mapstructure:"context" yaml:"context"`
	// ContextHeader renames the header used by the "header" codec.
	ContextHeader string `mapstructure:"context_header" yaml:"context_header,omitempty" validate:"omitempty,token"`

	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
}

type ClientConfig struct {
	Protocol string            `mapstructure:"protocol" yaml:"protocol" validate:"omitempty,protocol"`
	Hostname string            `mapstructure:"hostname" yaml:"hostname"`
	Port     int               `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`
	Path     string            `mapstructure:"path" yaml:"path"`
	Method   string            `mapstructure:"method" yaml:"method" validate:"omitempty,alpha"`
	Headers  map[string]string `mapstructure:"headers" yaml:"headers,omitempty"`

	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=0"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout" validate:"min=0"`
	SocketTimeout  time.Duration `mapstructure:"socket_timeout" yaml:"socket_timeout" validate:"min=0"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"min=0"`

	JSON         bool `mapstructure:"json" yaml:"json"`
	MaxBodyBytes uint `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout" validate:"min=0"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout" validate:"min=0"`
}

type MetricsConfig struct {
	// Port serving /metrics. Zero disables the endpoint.
	Port int `mapstructure:"port" yaml:"port" validate:"min=0,max=65535"`
}

// SetDefaults fills optional fields left empty.
func (c *Config) SetDefaults() {
	if c.Client.Protocol == "" {
		c.Client.Protocol = "http"
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Endpoint converts the client section to the static request every call is
// merged over.
func (c *Config) Endpoint() http.Request {
	json := c.Client.JSON

	headers := make(map[string]string, len(c.Client.Headers))
	for k, v := range c.Client.Headers {
		headers[k] = v
	}

	return http.Request{
		Protocol: c.Client.Protocol,
		Hostname: c.Client.Hostname,
		Port:     c.Client.Port,
		Method:   c.Client.Method,
		Pathname: c.Client.Path,
		Headers:  headers,
		Timeout: timeout.Spec{
			Generic: c.Client.Timeout,
			Connect: c.Client.ConnectTimeout,
			Socket:  c.Client.SocketTimeout,
		},
		JSON: &json,
	}
}

// Bridge converts the configuration to bridge options.
func (c *Config) Bridge(m *metrics.Metrics) bridge.Config {
	var codec propagation.Codec
	if c.Context == "header" && c.ContextHeader != "" {
		codec = propagation.NewHeaderCodec(c.ContextHeader)
	}

	return bridge.Config{
		Codec:     codec,
		CodecName: c.Context,
		Client: client.Options{
			Endpoint:     c.Endpoint(),
			MaxBodyBytes: c.Client.MaxBodyBytes,
			Timeout:      client.TimeoutOptions{IdleTimeout: c.Client.IdleTimeout},
			Metrics:      m,
		},
		Server: server.Options{
			Port: c.Server.Port,
			Timeout: server.TimeoutOptions{
				ReadHeaderTimeout: c.Server.ReadHeaderTimeout,
				IdleTimeout:       c.Server.IdleTimeout,
			},
			Metrics: m,
		},
	}
}
