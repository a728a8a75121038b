// Package stremio provides a Stremio stream addon backed by the resolver.
package stremio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"vixsrc-go/pkg/appctx"
	"vixsrc-go/pkg/types"
)

// IDPrefix marks TMDB ids in addon requests.
const IDPrefix = "tmdb:"

// Manifest builds the addon manifest.
func Manifest() map[string]interface{} {
	return map[string]interface{}{
		"id":          "org.stremio.vixsrc",
		"version":     appctx.Version,
		"name":        "VixSrc",
		"description": "Multi-audio HLS streams from VixSrc",
		"resources":   []string{"stream"},
		"types":       []string{"movie", "series"},
		"catalogs":    []interface{}{},
		"idPrefixes":  []string{IDPrefix},
	}
}

// StreamsResponse is the body of a stream request.
type StreamsResponse struct {
	Streams []types.StreamDescriptor `json:"streams"`
}

var errBadID = errors.New("malformed stream id")

// ParseStreamID parses "tmdb:<id>" for movies and "tmdb:<id>:<season>:<episode>"
// for series. The prefix is optional.
func ParseStreamID(kind, id string) (types.StreamRequest, error) {
	mediaType, err := types.ParseMediaType(kind)
	if err != nil {
		return types.StreamRequest{}, err
	}

	id = strings.TrimSuffix(id, ".json")
	id = strings.TrimPrefix(id, IDPrefix)
	parts := strings.Split(id, ":")

	req := types.StreamRequest{MediaID: parts[0], Type: mediaType}
	switch {
	case mediaType == types.MediaTypeMovie && len(parts) == 1:
	case mediaType == types.MediaTypeEpisode && len(parts) == 3:
		if req.Season, err = strconv.Atoi(parts[1]); err != nil {
			return types.StreamRequest{}, fmt.Errorf("%w: season %q", errBadID, parts[1])
		}
		if req.Episode, err = strconv.Atoi(parts[2]); err != nil {
			return types.StreamRequest{}, fmt.Errorf("%w: episode %q", errBadID, parts[2])
		}
	default:
		return types.StreamRequest{}, fmt.Errorf("%w: %q", errBadID, id)
	}

	if _, err := strconv.ParseUint(req.MediaID, 10, 64); err != nil {
		return types.StreamRequest{}, fmt.Errorf("%w: tmdb id %q", errBadID, req.MediaID)
	}
	return req, req.Validate()
}
