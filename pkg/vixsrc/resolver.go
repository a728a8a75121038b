package vixsrc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vixsrc-go/pkg/types"
)

// Resolution carries the intermediate results of a successful run.
type Resolution struct {
	Request     types.StreamRequest
	LandingURL  string
	PlaylistURL string
	Audio       AudioProbe
	Stream      types.StreamDescriptor
}

// Resolve returns at most one stream for req. Every failure is logged and
// reported as an empty, non-nil slice.
func (r *Resolver) Resolve(ctx context.Context, req types.StreamRequest) []types.StreamDescriptor {
	res, err := r.ResolveDetailed(ctx, req)
	if err != nil {
		return []types.StreamDescriptor{}
	}
	return []types.StreamDescriptor{res.Stream}
}

// ResolveDetailed runs the pipeline and returns its intermediate results, or
// the first fatal error wrapped in a StageError.
func (r *Resolver) ResolveDetailed(ctx context.Context, req types.StreamRequest) (res *Resolution, err error) {
	start := time.Now()
	log := r.log.With("media", req.String())

	defer func() {
		if rec := recover(); rec != nil {
			res, err = nil, fmt.Errorf("resolver panic: %v", rec)
		}
		if err != nil {
			failed := log.WithStage(StageRequest)
			var se *StageError
			if errors.As(err, &se) {
				failed = log.WithStage(se.Stage)
				if se.URL != "" {
					failed = failed.WithURL(se.URL)
				}
			}
			failed.WithError(err).WithDuration(time.Since(start)).Error("no stream resolved")
		}
	}()

	if err := req.Validate(); err != nil {
		return nil, &StageError{Stage: StageRequest, Err: err}
	}

	landingURL := LandingURL(r.opts.BaseURL, req)
	html, err := r.fetchLanding(ctx, landingURL)
	if err != nil {
		return nil, err
	}

	cfg, err := ExtractConfig(ctx, html, r.sandboxOptions())
	if err != nil {
		var se *StageError
		if errors.As(err, &se) && se.URL == "" {
			se.URL = landingURL
		}
		return nil, err
	}

	playlistURL := BuildPlaylistURL(r.opts.BaseURL, cfg)
	log.WithStage(StagePlaylist).WithURL(playlistURL).Debug("playlist url built")

	probe := r.probeAudioTracks(ctx, playlistURL, landingURL)

	log.WithDuration(time.Since(start)).Info("stream resolved", "audio", probe.Languages, "degraded", probe.Degraded)

	return &Resolution{
		Request:     req,
		LandingURL:  landingURL,
		PlaylistURL: playlistURL,
		Audio:       probe,
		Stream:      Assemble(playlistURL, landingURL, probe.Label),
	}, nil
}
