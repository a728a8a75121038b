package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vixsrc-go/pkg/appctx"
	"vixsrc-go/pkg/config"
	"vixsrc-go/pkg/interfaces"
	"vixsrc-go/pkg/logging"
	"vixsrc-go/pkg/registry"
	"vixsrc-go/pkg/types"
)

type stubResolver struct {
	got     []types.StreamRequest
	streams []types.StreamDescriptor
}

func (s *stubResolver) Resolve(ctx context.Context, req types.StreamRequest) []types.StreamDescriptor {
	s.got = append(s.got, req)
	return s.streams
}

type stubExtractor struct {
	result *types.ExtractResult
	err    error
	opts   interfaces.ExtractOptions
}

func (e *stubExtractor) Name() string { return "stub" }

func (e *stubExtractor) CanExtract(url string) bool { return true }

func (e *stubExtractor) Extract(ctx context.Context, url string, opts interfaces.ExtractOptions) (*types.ExtractResult, error) {
	e.opts = opts
	return e.result, e.err
}

func (e *stubExtractor) Close() error { return nil }

func newTestHandlers(resolver *stubResolver, extractor interfaces.Extractor) (*Handlers, *http.ServeMux) {
	reg := registry.NewExtractorRegistry()
	if extractor != nil {
		_ = reg.Register(extractor)
	}
	ctx := appctx.New(config.Default(), logging.Discard()).
		WithResolver(resolver).
		WithExtractors(reg)

	h := NewHandlers(ctx)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h, mux
}

func serve(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandlers_Health(t *testing.T) {
	_, mux := newTestHandlers(&stubResolver{}, nil)

	rec := serve(mux, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandlers_Info(t *testing.T) {
	_, mux := newTestHandlers(&stubResolver{}, nil)

	rec := serve(mux, "/info")
	require.Equal(t, http.StatusOK, rec.Code)

	var info map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "running", info["status"])
	assert.Equal(t, "https://vixsrc.to", info["upstream"])
	assert.Equal(t, false, info["forwarding"])
}

func TestHandlers_Index(t *testing.T) {
	_, mux := newTestHandlers(&stubResolver{}, nil)

	rec := serve(mux, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "VixSrc Resolver")
	assert.Equal(t, http.StatusNotFound, serve(mux, "/nope").Code)
}

func TestHandlers_Streams(t *testing.T) {
	resolver := &stubResolver{streams: []types.StreamDescriptor{{Name: "VixSrc", URL: "https://vixsrc.to/playlist/1?h=1&lang=en"}}}
	_, mux := newTestHandlers(resolver, nil)

	rec := serve(mux, "/api/streams/movie/550")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Streams []types.StreamDescriptor `json:"streams"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Streams, 1)
	assert.Equal(t, "VixSrc", body.Streams[0].Name)
	assert.Equal(t, []types.StreamRequest{{MediaID: "550", Type: types.MediaTypeMovie}}, resolver.got)
}

func TestHandlers_StreamsEmpty(t *testing.T) {
	_, mux := newTestHandlers(&stubResolver{streams: []types.StreamDescriptor{}}, nil)

	rec := serve(mux, "/api/streams/series/1399:1:1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"streams":[]}`, rec.Body.String())
}

func TestHandlers_StreamsBadID(t *testing.T) {
	resolver := &stubResolver{}
	_, mux := newTestHandlers(resolver, nil)

	rec := serve(mux, "/api/streams/series/1399")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, resolver.got)
}

func TestHandlers_Extractor(t *testing.T) {
	extractor := &stubExtractor{result: &types.ExtractResult{
		DestinationURL:    "https://vixsrc.to/playlist/42?h=1&lang=en",
		RequestHeaders:    map[string]string{"Referer": "https://vixsrc.to/movie/550"},
		MediaflowEndpoint: "hls_manifest_proxy",
	}}
	_, mux := newTestHandlers(&stubResolver{}, extractor)

	t.Run("json", func(t *testing.T) {
		rec := serve(mux, "/extractor?url=https://vixsrc.to/movie/550&h_user_agent=ua")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"destination_url":"https://vixsrc.to/playlist/42?h=1&lang=en"`)
		assert.NotContains(t, rec.Body.String(), `\u0026`)
		assert.Equal(t, map[string]string{"user-agent": "ua"}, extractor.opts.Headers)
	})

	t.Run("redirect", func(t *testing.T) {
		rec := serve(mux, "/extractor?url=https://vixsrc.to/movie/550&redirect_stream=true")

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://vixsrc.to/playlist/42?h=1&lang=en", rec.Header().Get("Location"))
	})

	t.Run("missing url", func(t *testing.T) {
		rec := serve(mux, "/extractor")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"url parameter required"}`, rec.Body.String())
	})
}

func TestHandlers_ExtractorFailure(t *testing.T) {
	_, mux := newTestHandlers(&stubResolver{}, &stubExtractor{err: errors.New("landing: unexpected status 404")})

	rec := serve(mux, "/extractor?url=https://vixsrc.to/movie/1")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "unexpected status 404")
}

func TestHandlers_NoExtractor(t *testing.T) {
	_, mux := newTestHandlers(&stubResolver{}, nil)

	rec := serve(mux, "/extractor?url=https://example.com/x")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_writeJSON(t *testing.T) {
	h, _ := newTestHandlers(&stubResolver{}, nil)

	w := httptest.NewRecorder()
	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
