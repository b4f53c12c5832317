package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"croprec/internal/classifier"
	"croprec/internal/common/fsutil"
)

// MetadataFile is the catalog description expected in the models directory.
const MetadataFile = "metadata.json"

// FeatureInfo describes one input feature for clients and for value coercion.
type FeatureInfo struct {
	Type     string  `json:"type"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	FullName string  `json:"full_name,omitempty"`
	Help     string  `json:"help,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

// IsInt reports whether values of the feature are integers.
func (f FeatureInfo) IsInt() bool { return strings.HasPrefix(f.Type, "int") }

// Metadata is the decoded metadata.json.
type Metadata struct {
	FeaturesSets   map[string][]string    `json:"features_sets"`
	FeaturesInfo   map[string]FeatureInfo `json:"features_info"`
	Classes        []string               `json:"classes"`
	ModelsFullName map[string]string      `json:"models_full_name"`
	Datasets       []string               `json:"datasets,omitempty"`
}

// FeatureSet lists the features of a set and the model keys trained on it.
type FeatureSet struct {
	Features []string `json:"features"`
	Models   []string `json:"models"`
}

// Entry is one model file on disk.
type Entry struct {
	FeatureSetID string
	ModelKey     string
	Path         string
}

// Name is the public model name, <featureSetID>_<modelKey>.
func (e Entry) Name() string { return e.FeatureSetID + "_" + e.ModelKey }

// Catalog is a snapshot of the models directory.
type Catalog struct {
	Dir      string
	Metadata Metadata
	// Sets only holds feature sets with at least one model file.
	Sets    map[string]*FeatureSet
	entries map[string]Entry
}

// Lookup finds the model file for a feature set and model key.
func (c *Catalog) Lookup(featureSetID, modelKey string) (Entry, bool) {
	e, ok := c.entries[featureSetID+"_"+modelKey]
	return e, ok
}

// Entries returns all model files sorted by name.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// LoadMetadata decodes a metadata.json file.
func LoadMetadata(path string) (Metadata, error) {
	var md Metadata
	b, err := os.ReadFile(path)
	if err != nil {
		return md, fmt.Errorf("read metadata: %w", err)
	}
	if err := json.Unmarshal(b, &md); err != nil {
		return md, fmt.Errorf("decode metadata %s: %w", path, err)
	}
	if len(md.FeaturesSets) == 0 {
		return md, fmt.Errorf("metadata %s: no features_sets", path)
	}
	for id, feats := range md.FeaturesSets {
		for _, f := range feats {
			if _, ok := md.FeaturesInfo[f]; !ok {
				return md, fmt.Errorf("metadata %s: feature %q of set %s has no features_info entry", path, f, id)
			}
		}
	}
	return md, nil
}

// LoadDir reads metadata.json from dir and registers every *.gob bundle named
// <featureSetID>_<modelKey>.gob. Files that do not follow the convention or
// reference an unknown feature set are skipped.
func LoadDir(dir string) (*Catalog, error) {
	abs, err := fsutil.ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	md, err := LoadMetadata(filepath.Join(abs, MetadataFile))
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	c := &Catalog{
		Dir:      abs,
		Metadata: md,
		Sets:     map[string]*FeatureSet{},
		entries:  map[string]Entry{},
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, classifier.BundleExt) {
			continue
		}
		parts := strings.Split(strings.TrimSuffix(name, classifier.BundleExt), "_")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			log.Warn().Str("event", "registry_skip").Str("file", name).Msg("file name is not <featureSet>_<modelKey>")
			continue
		}
		setID, key := parts[0], parts[1]
		feats, ok := md.FeaturesSets[setID]
		if !ok {
			log.Warn().Str("event", "registry_skip").Str("file", name).Str("feature_set", setID).Msg("unknown feature set")
			continue
		}
		fs := c.Sets[setID]
		if fs == nil {
			fs = &FeatureSet{Features: feats}
			c.Sets[setID] = fs
		}
		fs.Models = append(fs.Models, key)
		c.entries[setID+"_"+key] = Entry{FeatureSetID: setID, ModelKey: key, Path: filepath.Join(abs, name)}
	}
	for _, fs := range c.Sets {
		sort.Strings(fs.Models)
	}
	log.Debug().Str("event", "registry_loaded").Str("dir", abs).Int("models", len(c.entries)).Send()
	return c, nil
}
