// Package httpclient provides the pooled upstream HTTP transport.
//
// Client picks a transport per request URL: a browser TLS fingerprint for
// configured Cloudflare fronted domains, a per-route upstream proxy, the
// global proxy, or a direct IPv4 connection. It implements http.RoundTripper
// so request-level clients can sit on top of the routing.
package httpclient

import (
	"bufio"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"vixsrc-go/pkg/config"
	"vixsrc-go/pkg/logging"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
	"golang.org/x/net/proxy"
)

// Client routes requests to a transport chosen from the configuration.
type Client struct {
	direct      http.RoundTripper
	fingerprint http.RoundTripper
	routes      []config.TransportRoute
	globalProxy string
	utlsDomains []string
	log         *logging.Logger

	mu      sync.RWMutex
	proxied map[string]http.RoundTripper
}

// New creates a client from the upstream proxy settings in cfg.
func New(cfg *config.Config, log *logging.Logger) *Client {
	c := &Client{
		direct:      newPooledTransport(),
		fingerprint: newFingerprintTransport(),
		routes:      cfg.TransportRoutes,
		utlsDomains: cfg.UTLSDomains,
		log:         log.WithComponent("httpclient"),
		proxied:     make(map[string]http.RoundTripper),
	}
	if len(cfg.GlobalProxies) > 0 {
		c.globalProxy = cfg.GlobalProxies[0]
	}
	return c
}

// dialIPv4 forces IPv4; several hosting CDNs publish AAAA records they do not serve.
func dialIPv4(ctx context.Context, network, addr string) (net.Conn, error) {
	if network == "tcp" {
		network = "tcp4"
	}
	d := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 60 * time.Second}
	return d.DialContext(ctx, network, addr)
}

func newPooledTransport() *http.Transport {
	return &http.Transport{
		DialContext:           dialIPv4,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
}

// RoundTrip sends req through the transport selected for its URL.
// Deadlines come from the request context.
func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	return c.transportFor(req.URL.String()).RoundTrip(req)
}

// transportFor resolves the routing rules for targetURL, most specific first.
func (c *Client) transportFor(targetURL string) http.RoundTripper {
	if c.needsFingerprint(targetURL) {
		c.log.Debug("using browser TLS fingerprint", "url", targetURL)
		return c.fingerprint
	}

	for _, route := range c.routes {
		if !strings.Contains(targetURL, route.URLPattern) {
			continue
		}
		c.log.Debug("matched transport route", "url", targetURL, "pattern", route.URLPattern, "proxy", route.Proxy, "direct", route.Direct)

		switch {
		case route.Direct && !route.DisableSSL:
			return c.direct
		case route.Direct:
			return c.proxiedTransport("", true)
		case route.Proxy != "" || route.DisableSSL:
			return c.proxiedTransport(route.Proxy, route.DisableSSL)
		}
	}

	if c.globalProxy != "" {
		return c.proxiedTransport(c.globalProxy, false)
	}
	return c.direct
}

func (c *Client) needsFingerprint(targetURL string) bool {
	lower := strings.ToLower(targetURL)
	for _, domain := range c.utlsDomains {
		if strings.Contains(lower, strings.ToLower(domain)) {
			return true
		}
	}
	return false
}

// proxiedTransport returns a cached transport for the proxy/SSL combination.
func (c *Client) proxiedTransport(proxyURL string, insecure bool) http.RoundTripper {
	key := proxyURL
	if insecure {
		key += ":insecure"
	}

	c.mu.RLock()
	rt, ok := c.proxied[key]
	c.mu.RUnlock()
	if ok {
		return rt
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if rt, ok := c.proxied[key]; ok {
		return rt
	}

	rt = c.buildProxiedTransport(proxyURL, insecure)
	c.proxied[key] = rt
	c.log.Debug("created proxy transport", "proxy", proxyURL, "disable_ssl", insecure)
	return rt
}

func (c *Client) buildProxiedTransport(proxyURL string, insecure bool) http.RoundTripper {
	transport := newPooledTransport()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if proxyURL == "" {
		return transport
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		c.log.Error("failed to parse proxy URL", "proxy", proxyURL, "error", err)
		return c.direct
	}

	switch parsed.Scheme {
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(parsed, proxy.Direct)
		if err != nil {
			c.log.Error("failed to create SOCKS5 dialer", "error", err)
			return c.direct
		}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	case "http", "https":
		transport.Proxy = http.ProxyURL(parsed)
	default:
		c.log.Warn("unsupported proxy scheme", "scheme", parsed.Scheme)
		return c.direct
	}
	return transport
}

// fingerprintTransport speaks TLS with a Chrome ClientHello, then HTTP/2 or
// HTTP/1.1 depending on ALPN. Connections are not pooled.
type fingerprintTransport struct {
	dialer *net.Dialer
	h2     *http2.Transport
}

func newFingerprintTransport() *fingerprintTransport {
	return &fingerprintTransport{
		dialer: &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 60 * time.Second},
		h2:     &http2.Transport{},
	}
}

func (t *fingerprintTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return http.DefaultTransport.RoundTrip(req)
	}

	addr := req.URL.Host
	if req.URL.Port() == "" {
		addr = net.JoinHostPort(req.URL.Hostname(), "443")
	}

	conn, err := t.dialer.DialContext(req.Context(), "tcp4", addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: req.URL.Hostname()}, utls.HelloChrome_120)
	if err := tlsConn.HandshakeContext(req.Context()); err != nil {
		conn.Close()
		return nil, err
	}

	if tlsConn.ConnectionState().NegotiatedProtocol == "h2" {
		cc, err := t.h2.NewClientConn(tlsConn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		resp, err := cc.RoundTrip(req)
		if err != nil {
			cc.Close()
			return nil, err
		}
		resp.Body = &connCloser{ReadCloser: resp.Body, conn: cc}
		return resp, nil
	}

	if deadline, ok := req.Context().Deadline(); ok {
		tlsConn.SetDeadline(deadline)
	}
	if err := req.Write(tlsConn); err != nil {
		conn.Close()
		return nil, err
	}
	resp, err := http.ReadResponse(bufio.NewReader(tlsConn), req)
	if err != nil {
		conn.Close()
		return nil, err
	}
	resp.Body = &connCloser{ReadCloser: resp.Body, conn: tlsConn}
	return resp, nil
}

// connCloser releases the single-use connection with the response body.
type connCloser struct {
	io.ReadCloser
	conn io.Closer
}

func (c *connCloser) Close() error {
	c.ReadCloser.Close()
	return c.conn.Close()
}

// ParseHeaderParams extracts headers from query parameters with h_ prefix.
// Underscores become hyphens (h_User_Agent -> User-Agent).
func ParseHeaderParams(query url.Values) map[string]string {
	headers := make(map[string]string)
	for key, values := range query {
		if strings.HasPrefix(key, "h_") && len(values) > 0 {
			headers[strings.ReplaceAll(key[2:], "_", "-")] = values[0]
		}
	}
	return headers
}
