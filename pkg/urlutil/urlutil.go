// Package urlutil provides URL encoding helpers that match browser behaviour
// byte for byte. The origin signs playlist URLs, so the serialized form must be
// exactly what a browser would produce.
package urlutil

import (
	"net/url"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent escapes s the way ECMAScript encodeURIComponent does:
// everything except A-Z a-z 0-9 and - _ . ! ~ * ' ( ) is percent-encoded.
func EncodeURIComponent(s string) string {
	return escape(s, func(c byte) bool {
		return isAlnum(c) || strings.IndexByte("-_.!~*'()", c) >= 0
	}, false)
}

// EncodeFormComponent escapes s with the application/x-www-form-urlencoded
// serializer used by URLSearchParams: space becomes '+', and only
// A-Z a-z 0-9 and * - . _ are left alone.
func EncodeFormComponent(s string) string {
	return escape(s, func(c byte) bool {
		return isAlnum(c) || strings.IndexByte("*-._", c) >= 0
	}, true)
}

func escape(s string, keep func(byte) bool, spacePlus bool) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case keep(c):
			b.WriteByte(c)
		case c == ' ' && spacePlus:
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		}
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// GetSchemeHost extracts scheme://host from a URL.
func GetSchemeHost(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
