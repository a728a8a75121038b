// Package vixsrc resolves TMDB titles to VixSrc master playlists.
//
// The pipeline fetches the landing page, evaluates the player configuration
// script in a sandbox, signs the playlist URL with the embedded parameters and
// probes the playlist for audio languages. Anything failing before the
// playlist URL exists yields no stream; the audio probe only ever degrades the
// title.
package vixsrc

import (
	"time"

	"vixsrc-go/pkg/config"
	"vixsrc-go/pkg/logging"
	"vixsrc-go/pkg/sandbox"
	"vixsrc-go/pkg/transport"
)

const (
	// ProviderName is shown as the stream name.
	ProviderName = "VixSrc"

	// DataScriptMarker identifies the inline script carrying the player config.
	DataScriptMarker = "window.masterPlaylist"

	// DefaultAudioLabel is used whenever the languages cannot be determined.
	DefaultAudioLabel = "🎧 Multi-Audio & Subtitles"

	autoSelectLabel = "▶️ Auto-Select"
	audioLabelLead  = "🎧 Multi-Audio: "
)

// Pipeline stages, used in logs and StageError.
const (
	StageRequest  = "request"
	StageLanding  = "landing"
	StageExtract  = "extract"
	StagePlaylist = "playlist"
	StageAudio    = "audio"
)

// Options configures a Resolver.
type Options struct {
	BaseURL       string
	UserAgent     string
	StageTimeout  time.Duration
	ScriptTimeout time.Duration
	ProbeAudio    bool
}

// OptionsFromConfig maps the resolver section of the app config.
func OptionsFromConfig(cfg config.VixSrcConfig) Options {
	return Options{
		BaseURL:       cfg.BaseURL,
		UserAgent:     cfg.UserAgent,
		StageTimeout:  cfg.StageTimeout,
		ScriptTimeout: cfg.ScriptTimeout,
		ProbeAudio:    cfg.ProbeAudio,
	}
}

// Resolver runs the resolution pipeline. It holds no per-request state and is
// safe for concurrent use.
type Resolver struct {
	fetcher transport.Fetcher
	opts    Options
	log     *logging.Logger
}

// New creates a Resolver that issues its requests through fetcher.
func New(fetcher transport.Fetcher, opts Options, log *logging.Logger) *Resolver {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://vixsrc.to"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	if opts.StageTimeout <= 0 {
		opts.StageTimeout = 12 * time.Second
	}
	return &Resolver{
		fetcher: fetcher,
		opts:    opts,
		log:     log.WithComponent("vixsrc"),
	}
}

// BaseURL returns the origin the resolver targets.
func (r *Resolver) BaseURL() string {
	return r.opts.BaseURL
}

func (r *Resolver) sandboxOptions() sandbox.Options {
	return sandbox.Options{Timeout: r.opts.ScriptTimeout}
}
