// Package app provides the main application setup and dependency injection.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"vixsrc-go/pkg/appctx"
	"vixsrc-go/pkg/config"
	"vixsrc-go/pkg/extractors"
	"vixsrc-go/pkg/handlers/api"
	"vixsrc-go/pkg/httpclient"
	"vixsrc-go/pkg/logging"
	"vixsrc-go/pkg/registry"
	"vixsrc-go/pkg/server"
	"vixsrc-go/pkg/stremio"
	"vixsrc-go/pkg/transport"
	"vixsrc-go/pkg/vixsrc"
)

// App is the main application container.
type App struct {
	Ctx          *appctx.Context
	Server       *server.Server
	HTTPClient   *httpclient.Client
	Resolver     *vixsrc.Resolver
	ExtractorReg *registry.ExtractorRegistry

	logFile io.Closer
}

// NewLogger builds the application logger. Output goes to stderr and, when
// LOG_FILE is set, to a rotated file as well. The returned closer may be nil.
func NewLogger(cfg *config.Config) (*logging.Logger, io.Closer) {
	if cfg.LogFile == "" {
		return logging.New(cfg.LogLevel, cfg.LogJSON, os.Stderr), nil
	}
	file := logging.FileWriter(cfg.LogFile)
	return logging.New(cfg.LogLevel, cfg.LogJSON, io.MultiWriter(os.Stderr, file)), file
}

// NewResolver wires the HTTP client, the transport strategy and the resolver.
func NewResolver(cfg *config.Config, log *logging.Logger) (*vixsrc.Resolver, *httpclient.Client) {
	httpClient := httpclient.New(cfg, log)
	fetcher := transport.New(httpClient, transport.Options{
		ProxyURL:     cfg.VixSrc.ProxyURL,
		MaxBodyBytes: cfg.VixSrc.MaxBodyBytes,
	}, log)
	return vixsrc.New(fetcher, vixsrc.OptionsFromConfig(cfg.VixSrc), log), httpClient
}

// New creates and initializes the application.
func New(cfg *config.Config) (*App, error) {
	log, logFile := NewLogger(cfg)
	log.Info("initializing VixSrc resolver",
		"port", cfg.Port,
		"log_level", cfg.LogLevel,
		"upstream", cfg.VixSrc.BaseURL,
	)

	// Create application context
	ctx := appctx.New(cfg, log)

	resolver, httpClient := NewResolver(cfg, log)
	ctx.WithResolver(resolver)

	// Initialize extractor registry
	extractorReg := registry.NewExtractorRegistry()
	if err := registerExtractors(extractorReg, resolver, cfg, log); err != nil {
		return nil, fmt.Errorf("registering extractors: %w", err)
	}
	ctx.WithExtractors(extractorReg)

	// Create HTTP server
	srv := server.New(cfg, log)

	handlers := api.NewHandlers(ctx)
	handlers.RegisterRoutes(srv.Router())

	if cfg.StremioEnabled {
		stremioHandlers := stremio.NewHandlers(ctx)
		stremioHandlers.RegisterRoutes(srv.Router())
		log.Info("stremio addon enabled", "path", "/stremio")
	}

	return &App{
		Ctx:          ctx,
		Server:       srv,
		HTTPClient:   httpClient,
		Resolver:     resolver,
		ExtractorReg: extractorReg,
		logFile:      logFile,
	}, nil
}

// Run serves until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	a.Ctx.Log.Info("starting VixSrc server", "port", a.Ctx.Config.Port)
	return a.Server.Start(ctx)
}

// Shutdown releases application resources.
func (a *App) Shutdown() {
	a.Ctx.Log.Info("shutting down application")

	_ = a.ExtractorReg.Close()

	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// registerExtractors registers all URL extractors.
// Add new extractors here by:
// 1. Creating a new extractor in pkg/extractors/
// 2. Registering it below
func registerExtractors(
	reg *registry.ExtractorRegistry,
	resolver *vixsrc.Resolver,
	cfg *config.Config,
	log *logging.Logger,
) error {
	if err := reg.Register(extractors.NewVixSrcExtractor(resolver, cfg.VixSrc.UserAgent, log)); err != nil {
		return err
	}

	// Set generic extractor as fallback
	reg.SetFallback(extractors.NewGenericExtractor(cfg.VixSrc.UserAgent, log))

	log.Info("registered extractors", "count", len(reg.All())+1) // +1 for fallback
	return nil
}
