package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the rate limit for one route or family of routes.
type EndpointConfig struct {
	Path   string        // Exact path, or a prefix when it ends with "/"
	Method string        // HTTP method; empty matches any method
	Group  string        // Endpoints with the same group share one bucket per client
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// key identifies the bucket an endpoint draws from.
func (c *EndpointConfig) key() string {
	if c.Group != "" {
		return c.Group
	}
	return c.Method + " " + c.Path
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration // Buckets unused this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         getEnvDuration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       parseIPList(getEnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Access-code lookups share one bucket so codes cannot be enumerated
		// by spreading guesses across routes.
		{Path: "/access/", Method: "GET", Group: "code-lookup", Limit: 30, Window: time.Minute, Burst: 10},
		{Path: "/public/", Method: "GET", Group: "code-lookup", Limit: 30, Window: time.Minute, Burst: 10},

		// Candidate portal writes; several of these call the AI service.
		{Path: "/access/", Method: "POST", Group: "portal", Limit: 120, Window: time.Hour, Burst: 20},
		{Path: "/access/", Method: "PUT", Group: "portal", Limit: 120, Window: time.Hour, Burst: 20},
		{Path: "/public/", Method: "POST", Group: "public-start", Limit: 10, Window: time.Hour, Burst: 3},

		// AI utilities and generation
		{Path: "/ai/", Method: "POST", Group: "ai", Limit: 120, Window: time.Hour, Burst: 20},
		{Path: "/jobs/generate", Method: "POST", Group: "ai", Limit: 120, Window: time.Hour, Burst: 20},
		{Path: "/interviews/generate-questions", Method: "POST", Group: "ai", Limit: 120, Window: time.Hour, Burst: 20},
		{Path: "/candidates/resume", Method: "POST", Group: "resume", Limit: 60, Window: time.Hour, Burst: 10},

		// Authentication
		{Path: "/auth/login", Method: "POST", Group: "login", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/auth/register", Method: "POST", Group: "register", Limit: 5, Window: time.Hour, Burst: 3},
		{Path: "/auth/password", Method: "PUT", Group: "login", Limit: 10, Window: time.Minute, Burst: 5},

		// Company writes (moderate limits)
		{Path: "/jobs", Method: "POST", Group: "writes", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "", Group: "writes", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/candidates", Method: "POST", Group: "writes", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/candidates/", Method: "", Group: "writes", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/interviews", Method: "POST", Group: "writes", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/interviews/", Method: "", Group: "writes", Limit: 100, Window: time.Minute, Burst: 10},

		// Reads use the default limit; /health is unlimited.
	}
}

func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
