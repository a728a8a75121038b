package stremio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vixsrc-go/pkg/appctx"
	"vixsrc-go/pkg/config"
	"vixsrc-go/pkg/logging"
	"vixsrc-go/pkg/types"
)

type stubResolver struct {
	mu       sync.Mutex
	requests []types.StreamRequest
	streams  []types.StreamDescriptor
}

func (s *stubResolver) Resolve(ctx context.Context, req types.StreamRequest) []types.StreamDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.streams
}

func newTestMux(resolver *stubResolver) *http.ServeMux {
	ctx := appctx.New(config.Default(), logging.Discard()).WithResolver(resolver)
	mux := http.NewServeMux()
	NewHandlers(ctx).RegisterRoutes(mux)
	return mux
}

func TestParseStreamID(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		id      string
		want    types.StreamRequest
		wantErr bool
	}{
		{name: "movie", kind: "movie", id: "tmdb:550", want: types.StreamRequest{MediaID: "550", Type: types.MediaTypeMovie}},
		{name: "movie json suffix", kind: "movie", id: "tmdb:550.json", want: types.StreamRequest{MediaID: "550", Type: types.MediaTypeMovie}},
		{name: "bare movie", kind: "movie", id: "550", want: types.StreamRequest{MediaID: "550", Type: types.MediaTypeMovie}},
		{
			name: "series",
			kind: "series",
			id:   "tmdb:1399:1:2",
			want: types.StreamRequest{MediaID: "1399", Type: types.MediaTypeEpisode, Season: 1, Episode: 2},
		},
		{
			name: "tv alias",
			kind: "tv",
			id:   "1399:3:4.json",
			want: types.StreamRequest{MediaID: "1399", Type: types.MediaTypeEpisode, Season: 3, Episode: 4},
		},
		{name: "imdb id", kind: "movie", id: "tt0137523", wantErr: true},
		{name: "series without episode", kind: "series", id: "tmdb:1399", wantErr: true},
		{name: "movie with episode", kind: "movie", id: "tmdb:550:1:1", wantErr: true},
		{name: "season zero", kind: "series", id: "tmdb:1399:0:1", wantErr: true},
		{name: "non numeric episode", kind: "series", id: "tmdb:1399:1:x", wantErr: true},
		{name: "unknown type", kind: "channel", id: "tmdb:550", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStreamID(tt.kind, tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleManifest(t *testing.T) {
	mux := newTestMux(&stubResolver{})
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stremio/manifest.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var manifest map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &manifest))
	assert.Equal(t, "org.stremio.vixsrc", manifest["id"])
	assert.ElementsMatch(t, []any{"movie", "series"}, manifest["types"])
	assert.ElementsMatch(t, []any{"tmdb:"}, manifest["idPrefixes"])
}

func TestHandleStream(t *testing.T) {
	resolver := &stubResolver{streams: []types.StreamDescriptor{{
		Name:  "VixSrc",
		Title: "▶️ Auto-Select\n🎧 Multi-Audio: IT | EN",
		URL:   "https://vixsrc.to/playlist/42?h=1&lang=en",
		Type:  "url",
		BehaviorHints: types.BehaviorHints{
			ProxyHeaders: &types.ProxyHeaders{Request: map[string]string{"Referer": "https://vixsrc.to/tv/1399/1/2"}},
			NotWebReady:  true,
		},
	}}}
	mux := newTestMux(resolver)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stremio/stream/series/tmdb:1399:1:2.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"streams":[{
		"name":"VixSrc",
		"title":"▶️ Auto-Select\n🎧 Multi-Audio: IT | EN",
		"url":"https://vixsrc.to/playlist/42?h=1&lang=en",
		"type":"url",
		"behaviorHints":{"proxyHeaders":{"request":{"Referer":"https://vixsrc.to/tv/1399/1/2"}},"notWebReady":true}
	}]}`, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "?h=1&lang=en")

	require.Len(t, resolver.requests, 1)
	assert.Equal(t, types.StreamRequest{MediaID: "1399", Type: types.MediaTypeEpisode, Season: 1, Episode: 2}, resolver.requests[0])
}

func TestHandleStream_UnsupportedID(t *testing.T) {
	resolver := &stubResolver{}
	mux := newTestMux(resolver)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stremio/stream/movie/tt0137523.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"streams":[]}`, rec.Body.String())
	assert.Empty(t, resolver.requests)
}

func TestHandleStream_NoResult(t *testing.T) {
	mux := newTestMux(&stubResolver{streams: []types.StreamDescriptor{}})
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stremio/stream/movie/tmdb:550.json", nil))

	assert.JSONEq(t, `{"streams":[]}`, rec.Body.String())
}
