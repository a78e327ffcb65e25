package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EnvVars is the raw environment, parsed once by New.
type EnvVars struct {
	AppName  string `env:"APP_NAME"  envDefault:"Order Portal"`
	Env      string `env:"ENV"       envDefault:"DEV"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	APIGatewayURL  string        `env:"API_GATEWAY_URL" envDefault:"http://localhost:8083"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	SessionBackend  string `env:"SESSION_BACKEND"   envDefault:"file"`
	SessionFile     string `env:"SESSION_FILE"`
	RedisURL        string `env:"REDIS_URL"         envDefault:"redis://localhost:6379/0"`
	SessionRedisKey string `env:"SESSION_REDIS_KEY" envDefault:"order-portal:session"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

// DefaultSessionFile is where the file backend keeps the session when SESSION_FILE is unset.
func DefaultSessionFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".order-portal", "session.yaml")
}
