package ratelimit

import (
	"strings"
)

// unlimited is returned for routes that are never rate limited.
var unlimited = &EndpointConfig{Group: "unlimited"}

// MatchEndpoint returns the configuration governing a request, or nil when
// the default limit applies. An exact path wins over prefixes, and a longer
// prefix wins over a shorter one.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" {
		return unlimited
	}

	var best *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if config.Method != "" && config.Method != method {
			continue
		}
		if config.Path == path {
			return config
		}
		if strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			if best == nil || len(config.Path) > len(best.Path) {
				best = config
			}
		}
	}
	return best
}
