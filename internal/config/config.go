package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	GatewayConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	Gateway
	Storage
}

// New reads the configuration from the environment.
func New() (Config, error) {
	vars, err := env.ParseAs[EnvVars]()
	if err != nil {
		return nil, fmt.Errorf("[config.New] parse environment: %w", err)
	}
	return mainConfig{
		EnvVars: vars,
		Gateway: Gateway{vars: &vars},
		Storage: Storage{vars: &vars},
	}, nil
}
