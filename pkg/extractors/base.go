// Package extractors maps page URLs to playable stream URLs plus the headers
// needed to fetch them.
//
// To add a new extractor:
// 1. Create a new file (e.g., myplatform.go)
// 2. Implement the Extractor interface
// 3. Register it in the registry (see internal/app)
package extractors

import (
	"context"
	"net/http"
	"strings"

	"vixsrc-go/pkg/config"
	"vixsrc-go/pkg/interfaces"
	"vixsrc-go/pkg/logging"
	"vixsrc-go/pkg/types"
	"vixsrc-go/pkg/urlutil"
)

const (
	endpointHLS    = "hls_manifest_proxy"
	endpointMPD    = "mpd_manifest_proxy"
	endpointStream = "proxy_stream_endpoint"
)

// endpointFor guesses the manifest kind from the URL.
func endpointFor(urlStr string) string {
	switch {
	case strings.Contains(urlStr, ".mpd"):
		return endpointMPD
	case strings.Contains(urlStr, ".m3u8"), strings.Contains(urlStr, "/playlist/"):
		return endpointHLS
	default:
		return endpointStream
	}
}

// mergeHeaders copies src into dst under canonical header keys, so a
// caller-supplied "user-agent" replaces the default "User-Agent".
func mergeHeaders(dst, src map[string]string) {
	for k, v := range src {
		dst[http.CanonicalHeaderKey(k)] = v
	}
}

// GenericExtractor is the fallback: it returns the URL as-is.
type GenericExtractor struct {
	userAgent string
	log       *logging.Logger
}

// NewGenericExtractor creates a new generic extractor.
func NewGenericExtractor(userAgent string, log *logging.Logger) *GenericExtractor {
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	return &GenericExtractor{userAgent: userAgent, log: log.WithComponent("generic-extractor")}
}

// Name returns the extractor name.
func (e *GenericExtractor) Name() string {
	return "generic"
}

// CanExtract always returns false as this is the fallback.
func (e *GenericExtractor) CanExtract(url string) bool {
	return false
}

// Extract returns the URL with origin-derived headers, overridden by
// opts.Headers.
func (e *GenericExtractor) Extract(ctx context.Context, urlStr string, opts interfaces.ExtractOptions) (*types.ExtractResult, error) {
	headers := map[string]string{"User-Agent": e.userAgent}

	if origin := urlutil.GetSchemeHost(urlStr); origin != "" {
		headers["Referer"] = origin + "/"
		headers["Origin"] = origin
	}
	mergeHeaders(headers, opts.Headers)

	e.log.Debug("passing url through", "url", urlStr)

	return &types.ExtractResult{
		DestinationURL:    urlStr,
		RequestHeaders:    headers,
		MediaflowEndpoint: endpointFor(urlStr),
	}, nil
}

// Close releases resources.
func (e *GenericExtractor) Close() error {
	return nil
}

var _ interfaces.Extractor = (*GenericExtractor)(nil)
