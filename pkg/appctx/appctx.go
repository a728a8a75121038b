// Package appctx provides the application context that holds all runtime dependencies.
package appctx

import (
	"fmt"

	"vixsrc-go/pkg/config"
	"vixsrc-go/pkg/interfaces"
	"vixsrc-go/pkg/logging"
	"vixsrc-go/pkg/registry"
)

// Version is reported by /info, the addon manifest and the version command.
var Version = "1.0.0"

// Context holds all application runtime dependencies.
// Pass this single struct to components instead of individual parameters.
type Context struct {
	Config     *config.Config
	Log        *logging.Logger
	Resolver   interfaces.StreamResolver
	Extractors *registry.ExtractorRegistry
	BaseURL    string
}

// New creates a new application context.
func New(cfg *config.Config, log *logging.Logger) *Context {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	return &Context{
		Config:  cfg,
		Log:     log,
		BaseURL: baseURL,
	}
}

// WithResolver sets the stream resolver.
func (c *Context) WithResolver(r interfaces.StreamResolver) *Context {
	c.Resolver = r
	return c
}

// WithExtractors sets the extractor registry.
func (c *Context) WithExtractors(reg *registry.ExtractorRegistry) *Context {
	c.Extractors = reg
	return c
}
