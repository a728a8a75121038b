package stremio

import (
	"encoding/json"
	"fmt"
	"net/http"

	"vixsrc-go/pkg/appctx"
	"vixsrc-go/pkg/logging"
	"vixsrc-go/pkg/types"
)

// Handlers contains all Stremio addon handlers.
type Handlers struct {
	ctx *appctx.Context
	log *logging.Logger
}

// NewHandlers creates a new Stremio Handlers instance.
func NewHandlers(ctx *appctx.Context) *Handlers {
	return &Handlers{
		ctx: ctx,
		log: ctx.Log.WithComponent("stremio"),
	}
}

// RegisterRoutes registers all Stremio addon routes.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /stremio", h.handleHome)
	mux.HandleFunc("GET /stremio/{$}", h.handleHome)
	mux.HandleFunc("GET /stremio/manifest.json", h.handleManifest)
	mux.HandleFunc("GET /stremio/stream/{type}/{id}", h.handleStream)
}

// handleHome serves the addon installation page.
func (h *Handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	manifestURL := fmt.Sprintf("%s://%s/stremio/manifest.json", scheme, r.Host)
	installURL := fmt.Sprintf("stremio://%s/stremio/manifest.json", r.Host)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>VixSrc Addon</title></head>
<body>
    <h1>VixSrc Stremio Addon</h1>
    <p><a href="%s">Install in Stremio</a></p>
    <p>Manifest: <code>%s</code></p>
</body>
</html>`, installURL, manifestURL)
}

// handleManifest returns the Stremio addon manifest.
func (h *Handlers) handleManifest(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, Manifest())
}

// handleStream resolves a title. Unknown ids and failed resolutions both
// answer with an empty list.
func (h *Handlers) handleStream(w http.ResponseWriter, r *http.Request) {
	req, err := ParseStreamID(r.PathValue("type"), r.PathValue("id"))
	if err != nil {
		h.log.Debug("ignoring stream request", "type", r.PathValue("type"), "id", r.PathValue("id"), "error", err)
		h.jsonResponseNoCache(w, StreamsResponse{Streams: []types.StreamDescriptor{}})
		return
	}

	streams := h.ctx.Resolver.Resolve(r.Context(), req)
	h.log.Debug("stream request served", "media", req.String(), "streams", len(streams))

	h.jsonResponseNoCache(w, StreamsResponse{Streams: streams})
}

// jsonResponse writes a JSON response.
func (h *Handlers) jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

// jsonResponseNoCache writes a JSON response with no-cache headers. Stream
// URLs carry expiring tokens.
func (h *Handlers) jsonResponseNoCache(w http.ResponseWriter, data any) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	h.jsonResponse(w, data)
}
