package predictor

import (
	"time"

	"croprec/internal/classifier"
	"croprec/internal/registry"
)

const defaultMaxLoaded = 16

// Config holds the tunables for New.
type Config struct {
	// Catalog may be nil; the service is not ready until Reload is called.
	Catalog *registry.Catalog
	// MaxLoaded bounds the number of bundles kept in memory; 0 uses the default,
	// a negative value disables caching.
	MaxLoaded int
	Publisher EventPublisher
	// Load reads a bundle from disk; defaults to classifier.LoadBundle.
	Load func(path string) (*classifier.Bundle, error)
}

// New constructs a Service from cfg.
func New(cfg Config) *Service {
	s := &Service{
		maxLoaded: cfg.MaxLoaded,
		publisher: cfg.Publisher,
		load:      cfg.Load,
		loaded:    make(map[string]*loadedBundle),
		startTime: time.Now(),
	}
	if s.maxLoaded == 0 {
		s.maxLoaded = defaultMaxLoaded
	}
	if s.publisher == nil {
		s.publisher = noopPublisher{}
	}
	if s.load == nil {
		s.load = classifier.LoadBundle
	}
	if cfg.Catalog != nil {
		s.Reload(cfg.Catalog)
	}
	return s
}
