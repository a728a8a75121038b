// Package types defines core domain types used throughout the application.
package types

import (
	"errors"
	"fmt"
	"strings"

	"vixsrc-go/pkg/urlutil"
)

// MediaType identifies what a StreamRequest points at.
type MediaType string

const (
	MediaTypeMovie   MediaType = "movie"
	MediaTypeEpisode MediaType = "episode"
)

// ParseMediaType accepts the aliases used by catalogs and addon clients.
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie":
		return MediaTypeMovie, nil
	case "episode", "tv", "series":
		return MediaTypeEpisode, nil
	}
	return "", fmt.Errorf("unknown media type %q", s)
}

// StreamRequest identifies a title to resolve.
// Season and Episode are set iff Type is MediaTypeEpisode.
type StreamRequest struct {
	MediaID string
	Type    MediaType
	Season  int
	Episode int
}

// Validate checks the request invariants.
func (r StreamRequest) Validate() error {
	if strings.TrimSpace(r.MediaID) == "" {
		return errors.New("media id is required")
	}
	switch r.Type {
	case MediaTypeMovie:
		if r.Season != 0 || r.Episode != 0 {
			return errors.New("season and episode must be empty for movies")
		}
	case MediaTypeEpisode:
		if r.Season <= 0 || r.Episode <= 0 {
			return errors.New("season and episode must be positive for episodes")
		}
	default:
		return fmt.Errorf("unknown media type %q", r.Type)
	}
	return nil
}

func (r StreamRequest) String() string {
	if r.Type == MediaTypeEpisode {
		return fmt.Sprintf("%s %s S%02dE%02d", r.Type, r.MediaID, r.Season, r.Episode)
	}
	return fmt.Sprintf("%s %s", r.Type, r.MediaID)
}

// Param is one query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered query-parameter multimap. Duplicate keys are allowed
// and order is preserved on encoding.
type Params []Param

// Add appends a parameter without touching existing entries.
func (p Params) Add(key, value string) Params {
	return append(p, Param{Key: key, Value: value})
}

// Encode serializes the parameters in order using the form-urlencoded rules.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(urlutil.EncodeFormComponent(kv.Key))
		b.WriteByte('=')
		b.WriteString(urlutil.EncodeFormComponent(kv.Value))
	}
	return b.String()
}

// EmbeddedConfig is the player configuration recovered from the landing page.
type EmbeddedConfig struct {
	PlaylistParams Params
	PlaylistID     string
}

// StreamDescriptor is a resolved stream in the Stremio stream object shape.
type StreamDescriptor struct {
	Name          string        `json:"name"`
	Title         string        `json:"title"`
	URL           string        `json:"url"`
	Type          string        `json:"type,omitempty"`
	BehaviorHints BehaviorHints `json:"behaviorHints"`
}

// BehaviorHints tell the player how to handle the stream.
type BehaviorHints struct {
	ProxyHeaders *ProxyHeaders `json:"proxyHeaders,omitempty"`
	// NotWebReady marks URLs that need client-side handling (a manifest,
	// referer binding) rather than direct playback.
	NotWebReady bool `json:"notWebReady"`
}

// ProxyHeaders lists headers a player must send when dereferencing the URL.
type ProxyHeaders struct {
	Request map[string]string `json:"request,omitempty"`
}

// RequestHeader returns the named header a player must send, if any.
func (d StreamDescriptor) RequestHeader(name string) string {
	if d.BehaviorHints.ProxyHeaders == nil {
		return ""
	}
	return d.BehaviorHints.ProxyHeaders.Request[name]
}

// ExtractResult contains the result of URL extraction.
type ExtractResult struct {
	DestinationURL    string            `json:"destination_url"`
	RequestHeaders    map[string]string `json:"request_headers"`
	MediaflowEndpoint string            `json:"mediaflow_endpoint"`
	Title             string            `json:"title,omitempty"`
}
