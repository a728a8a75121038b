package vixsrc

import (
	"context"
	"fmt"
	"strings"

	"vixsrc-go/pkg/hls"
)

// AudioProbe is the outcome of inspecting the master playlist.
type AudioProbe struct {
	Label     string
	Languages []string
	// Skipped is set when probing is disabled.
	Skipped bool
	// Degraded is set when the playlist could not be read and Label fell back
	// to DefaultAudioLabel.
	Degraded bool
	Err      error
}

// AudioLabel renders the audio line for the stream title.
func AudioLabel(languages []string) string {
	if len(languages) == 0 {
		return DefaultAudioLabel
	}
	return audioLabelLead + strings.Join(languages, " | ")
}

// probeAudioTracks fetches the master playlist and lists its audio languages.
// It never fails the resolution.
func (r *Resolver) probeAudioTracks(ctx context.Context, playlistURL, referer string) AudioProbe {
	if !r.opts.ProbeAudio {
		return AudioProbe{Label: DefaultAudioLabel, Skipped: true}
	}

	log := r.log.WithStage(StageAudio).WithURL(playlistURL)

	ctx, cancel := context.WithTimeout(ctx, r.opts.StageTimeout)
	defer cancel()

	resp, err := r.fetcher.Fetch(ctx, playlistURL, map[string]string{
		"Referer":    referer,
		"User-Agent": r.opts.UserAgent,
	})
	if err == nil && !resp.OK() {
		err = fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	if err != nil {
		err = &StageError{Stage: StageAudio, URL: playlistURL, Err: err}
		log.WithError(err).Warn("audio probe failed, using default label")
		return AudioProbe{Label: DefaultAudioLabel, Degraded: true, Err: err}
	}

	languages := hls.AudioLanguages(resp.Text())
	log.Debug("audio tracks found", "languages", languages)

	return AudioProbe{Label: AudioLabel(languages), Languages: languages}
}
