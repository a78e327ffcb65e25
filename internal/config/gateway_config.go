package config

import (
	"strings"
	"time"
)

type GatewayConfig interface {
	GetAPIGatewayURL() string
	GetRequestTimeout() time.Duration
}

type Gateway struct {
	vars *EnvVars
}

var _ GatewayConfig = Gateway{}

// GetAPIGatewayURL returns the gateway base URL without a trailing slash.
func (g Gateway) GetAPIGatewayURL() string {
	url := strings.TrimRight(g.vars.APIGatewayURL, "/")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return url
}

func (g Gateway) GetRequestTimeout() time.Duration {
	if g.vars.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return g.vars.RequestTimeout
}
