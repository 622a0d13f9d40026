package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "TROOBA_HTTP"

// keys lists every scalar key so that it can be set from the environment
// without appearing in the file. Example: TROOBA_HTTP_CLIENT_CONNECT_TIMEOUT.
var keys = []string{
	"client.protocol",
	"client.hostname",
	"client.port",
	"client.path",
	"client.method",
	"client.timeout",
	"client.connect_timeout",
	"client.socket_timeout",
	"client.idle_timeout",
	"client.json",
	"client.max_body_bytes",
	"server.port",
	"server.read_header_timeout",
	"server.idle_timeout",
	"context",
	"context_header",
	"metrics.port",
	"log_level",
}

// NewViper returns a viper instance reading file, if set, and the environment.
func NewViper(file string) *viper.Viper {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("trooba-http")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	return v
}

// Load reads, defaults and validates the configuration.
// A missing file is not an error when none was named explicitly.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}

	return &cfg, nil
}
