package predictor

import (
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"croprec/internal/classifier"
	"croprec/internal/registry"
	"croprec/pkg/types"
)

// Service answers catalog queries and predictions over one models directory.
type Service struct {
	mu         sync.RWMutex
	catalog    *registry.Catalog
	encoder    *classifier.LabelEncoder
	generation uint64
	reloadedAt time.Time

	maxLoaded int
	loaded    map[string]*loadedBundle
	group     singleflight.Group

	loadsTotal     uint64
	evictionsTotal uint64

	publisher EventPublisher
	load      func(path string) (*classifier.Bundle, error)
	startTime time.Time
}

type loadedBundle struct {
	bundle   *classifier.Bundle
	lastUsed time.Time
}

// SetEventPublisher replaces the event sink; nil restores the no-op publisher.
func (s *Service) SetEventPublisher(p EventPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	s.publisher = p
}

// Ready reports whether a catalog is loaded.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog != nil
}

// Reload swaps in a new catalog and drops every cached bundle.
func (s *Service) Reload(c *registry.Catalog) {
	s.mu.Lock()
	s.catalog = c
	s.encoder = classifier.NewLabelEncoder(c.Metadata.Classes)
	s.generation++
	s.reloadedAt = time.Now()
	dropped := len(s.loaded)
	s.loaded = make(map[string]*loadedBundle)
	pub := s.publisher
	s.mu.Unlock()
	pub.Publish(Event{Name: "catalog_reload", Fields: map[string]any{
		"dir":     c.Dir,
		"models":  len(c.Entries()),
		"dropped": dropped,
	}})
}

func (s *Service) snapshot() (*registry.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil, ErrNotReady
	}
	return s.catalog, nil
}

// Models returns the feature sets that have at least one model.
func (s *Service) Models() (map[string]types.FeatureSet, error) {
	c, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	out := make(map[string]types.FeatureSet, len(c.Sets))
	for id, fs := range c.Sets {
		out[id] = types.FeatureSet{
			Features: append([]string(nil), fs.Features...),
			Models:   append([]string(nil), fs.Models...),
		}
	}
	return out, nil
}

// Features returns the feature descriptions from metadata.
func (s *Service) Features() (map[string]registry.FeatureInfo, error) {
	c, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	out := make(map[string]registry.FeatureInfo, len(c.Metadata.FeaturesInfo))
	for k, v := range c.Metadata.FeaturesInfo {
		out[k] = v
	}
	return out, nil
}

// Crops returns the class vocabulary from metadata.
func (s *Service) Crops() ([]string, error) {
	c, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return append([]string{}, c.Metadata.Classes...), nil
}

// ModelNames maps model keys to display names.
func (s *Service) ModelNames() (map[string]string, error) {
	c, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(c.Metadata.ModelsFullName))
	for k, v := range c.Metadata.ModelsFullName {
		out[k] = v
	}
	return out, nil
}

// Datasets lists the dataset names declared in metadata, sorted.
func (s *Service) Datasets() ([]string, error) {
	c, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	out := append([]string{}, c.Metadata.Datasets...)
	sort.Strings(out)
	return out, nil
}

// Status summarizes the catalog and the bundle cache.
func (s *Service) Status() types.StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := types.StatusResponse{
		State:          "loading",
		MaxLoaded:      s.maxLoaded,
		LoadsTotal:     s.loadsTotal,
		EvictionsTotal: s.evictionsTotal,
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	if s.catalog != nil {
		resp.State = "ready"
		resp.ModelsDir = s.catalog.Dir
		resp.ReloadedUnix = s.reloadedAt.Unix()
		for _, e := range s.catalog.Entries() {
			resp.Models = append(resp.Models, e.Name())
		}
	}
	resp.Loaded = make([]types.LoadedModel, 0, len(s.loaded))
	for name, lb := range s.loaded {
		resp.Loaded = append(resp.Loaded, types.LoadedModel{
			Name:      name,
			ID:        lb.bundle.ID,
			Kind:      string(lb.bundle.Kind),
			LastUsed:  lb.lastUsed.Unix(),
			CreatedAt: lb.bundle.CreatedAt.Unix(),
		})
	}
	sort.Slice(resp.Loaded, func(i, j int) bool { return resp.Loaded[i].Name < resp.Loaded[j].Name })
	return resp
}
