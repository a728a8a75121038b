package extractors

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"vixsrc-go/pkg/interfaces"
	"vixsrc-go/pkg/logging"
	"vixsrc-go/pkg/types"
	"vixsrc-go/pkg/vixsrc"
)

// VixSrcExtractor resolves VixSrc landing page URLs to their master playlist.
type VixSrcExtractor struct {
	resolver  *vixsrc.Resolver
	host      string
	userAgent string
	log       *logging.Logger
}

// NewVixSrcExtractor wraps resolver. Only URLs on the resolver's host are
// accepted.
func NewVixSrcExtractor(resolver *vixsrc.Resolver, userAgent string, log *logging.Logger) *VixSrcExtractor {
	host := ""
	if u, err := url.Parse(resolver.BaseURL()); err == nil {
		host = strings.ToLower(u.Host)
	}
	return &VixSrcExtractor{
		resolver:  resolver,
		host:      host,
		userAgent: userAgent,
		log:       log.WithComponent("vixsrc-extractor"),
	}
}

// Name returns the extractor name.
func (e *VixSrcExtractor) Name() string {
	return "vixsrc"
}

// CanExtract accepts movie and episode landing pages.
func (e *VixSrcExtractor) CanExtract(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil || !strings.EqualFold(u.Host, e.host) {
		return false
	}
	_, err = vixsrc.ParseLandingURL(urlStr)
	return err == nil
}

// Extract resolves the landing page. The playlist is fetched with the landing
// page as Referer.
func (e *VixSrcExtractor) Extract(ctx context.Context, urlStr string, opts interfaces.ExtractOptions) (*types.ExtractResult, error) {
	req, err := vixsrc.ParseLandingURL(urlStr)
	if err != nil {
		return nil, fmt.Errorf("vixsrc: %w", err)
	}

	res, err := e.resolver.ResolveDetailed(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vixsrc: %w", err)
	}

	headers := map[string]string{
		"User-Agent": e.userAgent,
		"Referer":    res.Stream.RequestHeader("Referer"),
	}
	mergeHeaders(headers, opts.Headers)

	e.log.Debug("extracted", "landing", res.LandingURL, "playlist", res.PlaylistURL)

	return &types.ExtractResult{
		DestinationURL:    res.PlaylistURL,
		RequestHeaders:    headers,
		MediaflowEndpoint: endpointHLS,
		Title:             res.Stream.Title,
	}, nil
}

// Close releases resources.
func (e *VixSrcExtractor) Close() error {
	return nil
}

var _ interfaces.Extractor = (*VixSrcExtractor)(nil)
