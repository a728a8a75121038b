// Package registry routes URLs to the extractor that understands them.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"vixsrc-go/pkg/interfaces"
	"vixsrc-go/pkg/types"
)

// ErrNoExtractor means no extractor accepted the URL and no fallback is set.
var ErrNoExtractor = errors.New("no extractor for url")

// ExtractorRegistry manages URL extractors. Extractors are consulted in
// registration order; the fallback answers for everything else.
type ExtractorRegistry struct {
	mu         sync.RWMutex
	extractors []interfaces.Extractor
	byName     map[string]interfaces.Extractor
	fallback   interfaces.Extractor
}

// NewExtractorRegistry creates a new extractor registry.
func NewExtractorRegistry() *ExtractorRegistry {
	return &ExtractorRegistry{
		byName: make(map[string]interfaces.Extractor),
	}
}

// Register adds an extractor. Names must be unique.
func (r *ExtractorRegistry) Register(extractor interfaces.Extractor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := extractor.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("extractor %q already registered", name)
	}
	r.extractors = append(r.extractors, extractor)
	r.byName[name] = extractor
	return nil
}

// SetFallback sets the extractor used when no other one matches.
func (r *ExtractorRegistry) SetFallback(extractor interfaces.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = extractor
}

// Get returns the first extractor that accepts url, or the fallback, which
// may be nil.
func (r *ExtractorRegistry) Get(url string) interfaces.Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.extractors {
		if e.CanExtract(url) {
			return e
		}
	}
	return r.fallback
}

// GetByName returns an extractor by its name, or the fallback.
func (r *ExtractorRegistry) GetByName(name string) interfaces.Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.byName[name]; ok {
		return e
	}
	return r.fallback
}

// Extract routes url to its extractor and runs it. The name of the extractor
// that answered is returned alongside the result.
func (r *ExtractorRegistry) Extract(ctx context.Context, url string, opts interfaces.ExtractOptions) (*types.ExtractResult, string, error) {
	e := r.Get(url)
	if e == nil {
		return nil, "", ErrNoExtractor
	}
	result, err := e.Extract(ctx, url, opts)
	return result, e.Name(), err
}

// All returns the registered extractors, fallback excluded.
func (r *ExtractorRegistry) All() []interfaces.Extractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]interfaces.Extractor, len(r.extractors))
	copy(result, r.extractors)
	return result
}

// Close closes all registered extractors and the fallback.
func (r *ExtractorRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, e := range r.extractors {
		errs = append(errs, e.Close())
	}
	if r.fallback != nil {
		errs = append(errs, r.fallback.Close())
	}
	return errors.Join(errs...)
}
