package vixsrc

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"vixsrc-go/pkg/types"
)

// LandingURL builds the page that embeds the player for req.
func LandingURL(base string, req types.StreamRequest) string {
	id := url.PathEscape(req.MediaID)
	if req.Type == types.MediaTypeMovie {
		return fmt.Sprintf("%s/movie/%s", base, id)
	}
	return fmt.Sprintf("%s/tv/%s/%d/%d", base, id, req.Season, req.Episode)
}

var landingPath = regexp.MustCompile(`^/(?:movie/([^/]+)|tv/([^/]+)/(\d+)/(\d+))/?$`)

// ParseLandingURL is the inverse of LandingURL for any host.
func ParseLandingURL(raw string) (types.StreamRequest, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return types.StreamRequest{}, err
	}

	m := landingPath.FindStringSubmatch(u.Path)
	if m == nil {
		return types.StreamRequest{}, fmt.Errorf("not a landing page path: %q", u.Path)
	}

	var req types.StreamRequest
	if m[1] != "" {
		req = types.StreamRequest{MediaID: m[1], Type: types.MediaTypeMovie}
	} else {
		season, _ := strconv.Atoi(m[3])
		episode, _ := strconv.Atoi(m[4])
		req = types.StreamRequest{MediaID: m[2], Type: types.MediaTypeEpisode, Season: season, Episode: episode}
	}
	return req, req.Validate()
}

// landingHeaders are sent with the landing page request. The origin rejects
// clients without a browser user agent.
func (r *Resolver) landingHeaders() map[string]string {
	return map[string]string{
		"Referer":    strings.TrimRight(r.opts.BaseURL, "/") + "/",
		"User-Agent": r.opts.UserAgent,
	}
}

// fetchLanding returns the landing page HTML.
func (r *Resolver) fetchLanding(ctx context.Context, landingURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.StageTimeout)
	defer cancel()

	r.log.WithStage(StageLanding).WithURL(landingURL).Debug("fetching landing page")

	resp, err := r.fetcher.Fetch(ctx, landingURL, r.landingHeaders())
	if err != nil {
		return "", &StageError{Stage: StageLanding, URL: landingURL, Err: err}
	}
	if !resp.OK() {
		return "", &StageError{
			Stage: StageLanding,
			URL:   landingURL,
			Err:   fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode),
		}
	}

	return resp.Text(), nil
}
