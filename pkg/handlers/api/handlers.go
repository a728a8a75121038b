// Package api provides the HTTP API: status pages, stream resolution and URL
// extraction.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"runtime"

	"vixsrc-go/pkg/appctx"
	"vixsrc-go/pkg/httpclient"
	"vixsrc-go/pkg/interfaces"
	"vixsrc-go/pkg/logging"
	"vixsrc-go/pkg/registry"
	"vixsrc-go/pkg/stremio"
)

// Handlers contains all API handlers.
type Handlers struct {
	ctx *appctx.Context
	log *logging.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(ctx *appctx.Context) *Handlers {
	return &Handlers{
		ctx: ctx,
		log: ctx.Log.WithComponent("api"),
	}
}

// RegisterRoutes registers all API routes.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	// Public routes
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /info", h.handleInfo)
	mux.HandleFunc("GET /favicon.ico", h.handleFavicon)

	// Resolution routes
	mux.HandleFunc("GET /api/streams/{type}/{id}", h.handleStreams)

	// Extractor routes
	mux.HandleFunc("GET /extractor", h.handleExtractor)
	mux.HandleFunc("GET /extractor/video", h.handleExtractor)
}

// handleIndex serves the status page.
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	addon := ""
	if h.ctx.Config.StremioEnabled {
		addon = `<li><a href="/stremio">Stremio addon</a></li>`
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>VixSrc Resolver</title></head>
<body>
    <h1>VixSrc Resolver</h1>
    <p>Server Running · upstream <code>%s</code></p>
    <ul>
        %s
        <li><code>GET /api/streams/{movie|series}/{tmdb id}</code> resolve streams</li>
        <li><code>GET /extractor?url=...</code> extract a landing page</li>
        <li><a href="/info">/info</a> server status</li>
    </ul>
</body>
</html>`, html.EscapeString(h.ctx.Config.VixSrc.BaseURL), addon)
}

// handleHealth reports liveness.
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo returns server status as JSON.
func (h *Handlers) handleInfo(w http.ResponseWriter, r *http.Request) {
	cfg := h.ctx.Config
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "running",
		"version":     appctx.Version,
		"go":          runtime.Version(),
		"upstream":    cfg.VixSrc.BaseURL,
		"forwarding":  cfg.VixSrc.ProxyURL != "",
		"probe_audio": cfg.VixSrc.ProbeAudio,
		"stremio":     cfg.StremioEnabled,
	})
}

// handleFavicon serves the favicon.
func (h *Handlers) handleFavicon(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}

// handleStreams resolves a title and answers with the stream list. Ids follow
// the addon syntax.
func (h *Handlers) handleStreams(w http.ResponseWriter, r *http.Request) {
	req, err := stremio.ParseStreamID(r.PathValue("type"), r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log := logging.FromContext(r.Context())
	streams := h.ctx.Resolver.Resolve(r.Context(), req)
	log.Debug("streams resolved", "media", req.String(), "streams", len(streams))

	h.writeJSON(w, http.StatusOK, stremio.StreamsResponse{Streams: streams})
}

// handleExtractor handles URL extraction requests.
func (h *Handlers) handleExtractor(w http.ResponseWriter, r *http.Request) {
	urlStr := r.URL.Query().Get("url")
	if urlStr == "" {
		urlStr = r.URL.Query().Get("d")
	}
	if urlStr == "" {
		h.writeError(w, http.StatusBadRequest, "url parameter required")
		return
	}

	opts := interfaces.ExtractOptions{
		Headers: httpclient.ParseHeaderParams(r.URL.Query()),
	}

	result, name, err := h.ctx.Extractors.Extract(r.Context(), urlStr, opts)
	if errors.Is(err, registry.ErrNoExtractor) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Warn("extraction failed", "url", urlStr, "extractor", name, "error", err)
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.log.Debug("extracted", "url", urlStr, "extractor", name)

	if r.URL.Query().Get("redirect_stream") == "true" {
		http.Redirect(w, r, result.DestinationURL, http.StatusFound)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// Helper methods

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

