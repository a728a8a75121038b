package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vixsrc-go/pkg/config"
)

// Global flags
var (
	flagPort     int
	flagLogLevel string
	flagProxy    string
	flagNoProbe  bool
)

// cfg holds the loaded configuration (defaults < env < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "vixsrc",
	Short: "Resolve TMDB titles to VixSrc HLS streams",
	Long: `vixsrc resolves movies and episodes by TMDB id to signed VixSrc master
playlists, either as a Stremio addon server or from the command line.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              serveRun,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 0, "HTTP port (overrides PORT)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug | info | warn | error")
	rootCmd.PersistentFlags().StringVar(&flagProxy, "proxy", "", "Forwarding proxy prefix (overrides VIXSRC_PROXY_URL)")
	rootCmd.PersistentFlags().BoolVar(&flagNoProbe, "no-probe", false, "Skip the audio track probe")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagPort != 0 {
		cfg.Port = flagPort
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagProxy != "" {
		cfg.VixSrc.ProxyURL = flagProxy
	}
	if flagNoProbe {
		cfg.VixSrc.ProbeAudio = false
	}
	return nil
}
