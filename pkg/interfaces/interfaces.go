// Package interfaces defines the core abstractions shared by the resolver,
// extractors and HTTP handlers.
package interfaces

import (
	"context"

	"vixsrc-go/pkg/types"
)

// StreamResolver turns a title into playable streams. Implementations report
// failures as an empty slice.
type StreamResolver interface {
	Resolve(ctx context.Context, req types.StreamRequest) []types.StreamDescriptor
}

// Extractor extracts stream URLs from hosting platforms.
//
// To add a new extractor:
// 1. Create a new file in pkg/extractors/
// 2. Implement this interface
// 3. Register it in the ExtractorRegistry
type Extractor interface {
	// Name returns a unique identifier for this extractor.
	Name() string

	// CanExtract returns true if this extractor can handle the given URL.
	CanExtract(url string) bool

	// Extract resolves the given URL to a direct stream URL.
	Extract(ctx context.Context, url string, opts ExtractOptions) (*types.ExtractResult, error)

	// Close releases any resources held by the extractor.
	Close() error
}

// ExtractOptions contains optional parameters for extraction.
type ExtractOptions struct {
	Headers map[string]string
}

// Logger defines the logging interface used throughout the application.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
