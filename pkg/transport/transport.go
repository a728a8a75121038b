// Package transport issues the upstream GET requests of the resolver.
//
// The strategy is picked once at startup: requests either go straight to the
// origin or through a forwarding proxy that takes the percent-encoded target
// URL appended to its base. Either way a fetch is a single attempt with the
// caller's headers and no cookie state.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"

	"vixsrc-go/pkg/logging"
	"vixsrc-go/pkg/urlutil"
)

// DefaultMaxBodyBytes caps response bodies when no limit is configured.
const DefaultMaxBodyBytes = 10 << 20

// ErrBodyTooLarge is returned when a response exceeds the configured cap.
var ErrBodyTooLarge = errors.New("response body too large")

// Fetcher performs a single GET with the given headers.
// A non-2xx status is not an error; check Response.OK.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) (*Response, error)
}

// Response is a fully read upstream response.
type Response struct {
	// URL is the target the caller asked for, before any proxy rewrite.
	URL        string
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Error is a transport-level failure: the request never produced a usable response.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Options configures New.
type Options struct {
	// ProxyURL selects the forwarding strategy when non-empty.
	ProxyURL     string
	MaxBodyBytes int64
}

// New returns the direct fetcher, wrapped in the forwarding strategy when
// opts.ProxyURL is set. rt is the round tripper that carries the requests.
func New(rt http.RoundTripper, opts Options, log *logging.Logger) Fetcher {
	log = log.WithComponent("transport")
	direct := NewDirect(rt, opts.MaxBodyBytes, log)
	if opts.ProxyURL == "" {
		return direct
	}
	log.Info("routing upstream requests through forwarding proxy", "proxy", opts.ProxyURL)
	return NewForwarding(opts.ProxyURL, direct)
}

// DirectFetcher sends requests to the target URL.
type DirectFetcher struct {
	client  *resty.Client
	maxBody int64
	log     *logging.Logger
}

// NewDirect builds a fetcher on top of rt. A nil rt uses http.DefaultTransport.
func NewDirect(rt http.RoundTripper, maxBody int64, log *logging.Logger) *DirectFetcher {
	if rt == nil {
		rt = http.DefaultTransport
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	client := resty.New().
		SetTransport(rt).
		SetCookieJar(nil).
		SetRetryCount(0).
		SetDoNotParseResponse(true)

	return &DirectFetcher{client: client, maxBody: maxBody, log: log}
}

// Fetch implements Fetcher.
func (f *DirectFetcher) Fetch(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}

	raw := resp.RawBody()
	defer raw.Close()

	body, err := io.ReadAll(io.LimitReader(raw, f.maxBody+1))
	if err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if int64(len(body)) > f.maxBody {
		return nil, &Error{URL: url, Err: fmt.Errorf("%w: limit %s", ErrBodyTooLarge, humanize.IBytes(uint64(f.maxBody)))}
	}

	f.log.Debug("upstream response", "url", url, "status", resp.StatusCode(), "size", humanize.Bytes(uint64(len(body))))

	return &Response{URL: url, StatusCode: resp.StatusCode(), Body: body}, nil
}

// ForwardingFetcher rewrites every target to <base><encodeURIComponent(target)>.
type ForwardingFetcher struct {
	base string
	next Fetcher
}

// NewForwarding wraps next with the forwarding proxy at base.
func NewForwarding(base string, next Fetcher) *ForwardingFetcher {
	return &ForwardingFetcher{base: base, next: next}
}

// Rewrite returns the proxied form of target.
func (f *ForwardingFetcher) Rewrite(target string) string {
	return f.base + urlutil.EncodeURIComponent(target)
}

// Fetch implements Fetcher. Errors and the response report the original target.
func (f *ForwardingFetcher) Fetch(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	resp, err := f.next.Fetch(ctx, f.Rewrite(url), headers)
	if err != nil {
		var terr *Error
		if errors.As(err, &terr) {
			return nil, &Error{URL: url, Err: terr.Err}
		}
		return nil, &Error{URL: url, Err: err}
	}
	resp.URL = url
	return resp, nil
}

var (
	_ Fetcher = (*DirectFetcher)(nil)
	_ Fetcher = (*ForwardingFetcher)(nil)
)
