// Package config handles application configuration from environment variables
// and an optional config file.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultUserAgent is sent on every upstream request unless overridden.
// The origin rejects clients that do not look like a desktop browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port         int
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Authentication
	APIPassword string

	// Upstream proxy settings
	GlobalProxies   []string
	TransportRoutes []TransportRoute
	UTLSDomains     []string

	// Logging
	LogLevel string
	LogJSON  bool
	LogFile  string

	// Stremio addon
	StremioEnabled bool

	// VixSrc resolver
	VixSrc VixSrcConfig
}

// VixSrcConfig configures the VixSrc stream resolver.
type VixSrcConfig struct {
	// BaseURL is the origin site root, without trailing slash.
	BaseURL string
	// ProxyURL is an optional forwarding endpoint; the percent-encoded
	// target URL is appended to it.
	ProxyURL      string
	UserAgent     string
	StageTimeout  time.Duration
	ScriptTimeout time.Duration
	ProbeAudio    bool
	MaxBodyBytes  int64
}

// TransportRoute defines URL-specific proxy routing.
type TransportRoute struct {
	URLPattern string
	Proxy      string
	DisableSSL bool
	Direct     bool // If true, bypass global proxy and connect directly
}

// Load reads configuration from the environment and, when CONFIG_FILE is set,
// from that file. Environment values win over file values.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 7860)
	v.SetDefault("READ_TIMEOUT", "30s")
	v.SetDefault("WRITE_TIMEOUT", "60s")
	v.SetDefault("IDLE_TIMEOUT", "60s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("STREMIO_ENABLED", true)
	v.SetDefault("VIXSRC_BASE_URL", "https://vixsrc.to")
	v.SetDefault("VIXSRC_USER_AGENT", DefaultUserAgent)
	v.SetDefault("STAGE_TIMEOUT", "12s")
	v.SetDefault("SCRIPT_TIMEOUT", "2s")
	v.SetDefault("PROBE_AUDIO", true)
	v.SetDefault("MAX_BODY_BYTES", 10*1024*1024)
}

func fromViper(v *viper.Viper) *Config {
	port := v.GetInt("PORT")
	baseURL := v.GetString("BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", port)
	}

	cfg := &Config{
		Port:            port,
		BaseURL:         strings.TrimRight(baseURL, "/"),
		ReadTimeout:     parseDuration(v.GetString("READ_TIMEOUT"), 30*time.Second),
		WriteTimeout:    parseDuration(v.GetString("WRITE_TIMEOUT"), 60*time.Second),
		IdleTimeout:     parseDuration(v.GetString("IDLE_TIMEOUT"), 60*time.Second),
		APIPassword:     v.GetString("API_PASSWORD"),
		GlobalProxies:   splitList(v.GetString("GLOBAL_PROXIES")),
		TransportRoutes: parseTransportRoutes(v.GetString("TRANSPORT_ROUTES")),
		UTLSDomains:     splitList(v.GetString("UTLS_DOMAINS")),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogJSON:         v.GetBool("LOG_JSON"),
		LogFile:         v.GetString("LOG_FILE"),
		StremioEnabled:  v.GetBool("STREMIO_ENABLED"),
		VixSrc: VixSrcConfig{
			BaseURL:       strings.TrimRight(v.GetString("VIXSRC_BASE_URL"), "/"),
			ProxyURL:      v.GetString("VIXSRC_PROXY_URL"),
			UserAgent:     v.GetString("VIXSRC_USER_AGENT"),
			StageTimeout:  parseDuration(v.GetString("STAGE_TIMEOUT"), 12*time.Second),
			ScriptTimeout: parseDuration(v.GetString("SCRIPT_TIMEOUT"), 2*time.Second),
			ProbeAudio:    v.GetBool("PROBE_AUDIO"),
			MaxBodyBytes:  v.GetInt64("MAX_BODY_BYTES"),
		},
	}

	// Legacy single proxy support
	if globalProxy := v.GetString("GLOBAL_PROXY"); globalProxy != "" && len(cfg.GlobalProxies) == 0 {
		cfg.GlobalProxies = []string{globalProxy}
	}

	return cfg
}

// Default returns the configuration produced by an empty environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

// parseTransportRoutes parses the TRANSPORT_ROUTES value.
// Format: {URL=pattern, PROXY=url, DISABLE_SSL=true}, {URL=pattern2, DIRECT=true}
func parseTransportRoutes(s string) []TransportRoute {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var routes []TransportRoute
	for _, part := range strings.Split(s, "}, {") {
		part = strings.Trim(part, "{} ")
		if part == "" {
			continue
		}

		route := TransportRoute{}
		for _, field := range strings.Split(part, ", ") {
			key, value, ok := strings.Cut(field, "=")
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)

			switch strings.ToUpper(strings.TrimSpace(key)) {
			case "URL":
				route.URLPattern = value
			case "PROXY":
				route.Proxy = value
			case "DISABLE_SSL":
				route.DisableSSL = strings.EqualFold(value, "true")
			case "DIRECT":
				route.Direct = strings.EqualFold(value, "true")
			}
		}
		if route.URLPattern != "" {
			routes = append(routes, route)
		}
	}

	return routes
}

// parseDuration accepts a plain number of seconds or a Go duration string.
func parseDuration(val string, defaultVal time.Duration) time.Duration {
	if val == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	return defaultVal
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
