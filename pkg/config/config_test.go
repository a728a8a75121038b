package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7860, cfg.Port)
	assert.Equal(t, "http://localhost:7860", cfg.BaseURL)
	assert.Equal(t, "https://vixsrc.to", cfg.VixSrc.BaseURL)
	assert.Equal(t, "", cfg.VixSrc.ProxyURL)
	assert.Equal(t, DefaultUserAgent, cfg.VixSrc.UserAgent)
	assert.Equal(t, 12*time.Second, cfg.VixSrc.StageTimeout)
	assert.Equal(t, 2*time.Second, cfg.VixSrc.ScriptTimeout)
	assert.True(t, cfg.VixSrc.ProbeAudio)
	assert.Equal(t, int64(10*1024*1024), cfg.VixSrc.MaxBodyBytes)
	assert.True(t, cfg.StremioEnabled)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("VIXSRC_PROXY_URL", "https://proxy.example.com/?url=")
	t.Setenv("VIXSRC_BASE_URL", "https://mirror.example.com/")
	t.Setenv("STAGE_TIMEOUT", "5")
	t.Setenv("SCRIPT_TIMEOUT", "750ms")
	t.Setenv("PROBE_AUDIO", "false")
	t.Setenv("GLOBAL_PROXY", "socks5://127.0.0.1:1080")
	t.Setenv("UTLS_DOMAINS", "vixsrc.to, example.org")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, "https://proxy.example.com/?url=", cfg.VixSrc.ProxyURL)
	assert.Equal(t, "https://mirror.example.com", cfg.VixSrc.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.VixSrc.StageTimeout)
	assert.Equal(t, 750*time.Millisecond, cfg.VixSrc.ScriptTimeout)
	assert.False(t, cfg.VixSrc.ProbeAudio)
	assert.Equal(t, []string{"socks5://127.0.0.1:1080"}, cfg.GlobalProxies)
	assert.Equal(t, []string{"vixsrc.to", "example.org"}, cfg.UTLSDomains)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vixsrc.yaml")
	content := "port: 8080\nvixsrc_proxy_url: https://fwd.example.com/\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://fwd.example.com/", cfg.VixSrc.ProxyURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestParseTransportRoutes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TransportRoute
	}{
		{name: "empty", input: "", want: nil},
		{
			name:  "single route with proxy",
			input: "{URL=vixsrc.to, PROXY=socks5://127.0.0.1:1080}",
			want:  []TransportRoute{{URLPattern: "vixsrc.to", Proxy: "socks5://127.0.0.1:1080"}},
		},
		{
			name:  "multiple routes",
			input: "{URL=vixsrc.to, DIRECT=true}, {URL=cdn.example.com, DISABLE_SSL=true}",
			want: []TransportRoute{
				{URLPattern: "vixsrc.to", Direct: true},
				{URLPattern: "cdn.example.com", DisableSSL: true},
			},
		},
		{
			name:  "route without url is dropped",
			input: "{PROXY=http://127.0.0.1:8080}",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTransportRoutes(tt.input))
		})
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseDuration("3", time.Minute))
	assert.Equal(t, 1500*time.Millisecond, parseDuration("1.5s", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
}
