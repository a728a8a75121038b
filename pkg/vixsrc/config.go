package vixsrc

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"vixsrc-go/pkg/sandbox"
	"vixsrc-go/pkg/types"
)

// FindDataScript returns the text of the first script element that contains
// DataScriptMarker, in document order.
func FindDataScript(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	var script string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, DataScriptMarker) {
			script = text
			return false
		}
		return true
	})

	if script == "" {
		return "", ErrNoDataScript
	}
	return script, nil
}

// ExtractConfig locates the player config script in html, evaluates it in a
// sandbox and reads window.masterPlaylist.params and window.video.id.
func ExtractConfig(ctx context.Context, html string, opts sandbox.Options) (types.EmbeddedConfig, error) {
	script, err := FindDataScript(html)
	if err != nil {
		return types.EmbeddedConfig{}, &StageError{Stage: StageExtract, Err: err}
	}

	var cfg types.EmbeddedConfig
	err = sandbox.Eval(ctx, script, opts, func(window *sandbox.Object) error {
		playlist, ok := window.Object("masterPlaylist")
		if !ok {
			return ErrMissingFields
		}
		params, ok := playlist.Object("params")
		if !ok {
			return ErrMissingFields
		}
		video, ok := window.Object("video")
		if !ok {
			return ErrMissingFields
		}
		id, ok := video.String("id")
		if !ok {
			return ErrMissingFields
		}

		for _, e := range params.Entries() {
			cfg.PlaylistParams = cfg.PlaylistParams.Add(e.Key, e.Value)
		}
		cfg.PlaylistID = id
		return nil
	})
	if err != nil {
		return types.EmbeddedConfig{}, &StageError{Stage: StageExtract, Err: err}
	}

	return cfg, nil
}
