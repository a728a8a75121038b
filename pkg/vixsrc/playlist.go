package vixsrc

import (
	"fmt"
	"net/url"
	"slices"

	"vixsrc-go/pkg/types"
)

// BuildPlaylistURL signs the master playlist URL with the embedded parameters.
// h=1 and lang=en are appended after them, even when the keys already exist.
func BuildPlaylistURL(base string, cfg types.EmbeddedConfig) string {
	params := slices.Clone(cfg.PlaylistParams).
		Add("h", "1").
		Add("lang", "en")

	return fmt.Sprintf("%s/playlist/%s?%s", base, url.PathEscape(cfg.PlaylistID), params.Encode())
}
