// Package hls reads HLS (M3U8) manifests.
package hls

import (
	"regexp"
	"strings"
)

// AudioMediaTag prefixes the alternate audio rendition lines of a master playlist.
const AudioMediaTag = "#EXT-X-MEDIA:TYPE=AUDIO"

var languageAttr = regexp.MustCompile(`LANGUAGE="([^"]+)"`)

// AudioLanguages returns the LANGUAGE of every audio rendition in manifest,
// upper-cased, deduplicated and in order of first appearance.
func AudioLanguages(manifest string) []string {
	var langs []string
	seen := make(map[string]bool)

	// Lines have no length limit; session data can run to megabytes.
	for _, line := range strings.Split(manifest, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !strings.HasPrefix(line, AudioMediaTag) {
			continue
		}

		m := languageAttr.FindStringSubmatch(line)
		if len(m) < 2 {
			continue
		}

		lang := strings.ToUpper(m[1])
		if !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}

	return langs
}
