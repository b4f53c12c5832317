package predictor

import (
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"croprec/internal/classifier"
	"croprec/internal/registry"
)

// ensureBundle returns the cached bundle for e, loading it from disk once
// even under concurrent requests.
func (s *Service) ensureBundle(e registry.Entry) (*classifier.Bundle, error) {
	name := e.Name()
	s.mu.Lock()
	if lb, ok := s.loaded[name]; ok {
		lb.lastUsed = time.Now()
		s.mu.Unlock()
		return lb.bundle, nil
	}
	gen := s.generation
	s.mu.Unlock()

	v, err, _ := s.group.Do(fmt.Sprintf("%d/%s", gen, name), func() (any, error) {
		start := time.Now()
		s.emit(Event{Name: "load_start", Model: name})
		b, err := s.load(e.Path)
		if err == nil {
			err = s.checkVocabulary(b)
		}
		if err != nil {
			log.Warn().Err(err).Str("event", "load_error").Str("model", name).Send()
			s.emit(Event{Name: "load_error", Model: name, Fields: map[string]any{"error": err.Error()}})
			return nil, err
		}
		if b.FeatureSetID != "" && (b.FeatureSetID != e.FeatureSetID || b.ModelKey != e.ModelKey) {
			log.Warn().Str("event", "load_name_mismatch").Str("model", name).
				Str("bundle", b.FeatureSetID+"_"+b.ModelKey).Msg("bundle was trained under another name")
		}
		s.store(gen, name, b)
		log.Debug().Str("event", "load_done").Str("model", name).Str("id", b.ID).
			Dur("dur", time.Since(start)).Send()
		s.emit(Event{Name: "load_done", Model: name, Fields: map[string]any{"id": b.ID}})
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*classifier.Bundle), nil
}

// checkVocabulary rejects a label-encoded bundle whose codes were assigned
// from another class list than the one the catalog decodes with.
func (s *Service) checkVocabulary(b *classifier.Bundle) error {
	if !b.LabelEncoded {
		return nil
	}
	s.mu.RLock()
	served := s.encoder.Classes
	s.mu.RUnlock()
	if !slices.Equal(b.Vocabulary, served) {
		return fmt.Errorf("bundle encodes classes %v, catalog serves %v", b.Vocabulary, served)
	}
	return nil
}

// store caches b unless a reload happened meanwhile, then evicts the least
// recently used bundles above maxLoaded.
func (s *Service) store(gen uint64, name string, b *classifier.Bundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadsTotal++
	if gen != s.generation || s.maxLoaded < 0 {
		return
	}
	s.loaded[name] = &loadedBundle{bundle: b, lastUsed: time.Now()}
	for len(s.loaded) > s.maxLoaded {
		var lruName string
		var lru *loadedBundle
		for n, lb := range s.loaded {
			if n == name {
				continue
			}
			if lru == nil || lb.lastUsed.Before(lru.lastUsed) {
				lruName, lru = n, lb
			}
		}
		if lru == nil {
			return
		}
		delete(s.loaded, lruName)
		s.evictionsTotal++
		s.publisher.Publish(Event{Name: "evict", Model: lruName})
	}
}
