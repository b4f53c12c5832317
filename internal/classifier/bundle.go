package classifier

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"croprec/internal/common/fsutil"
)

// BundleExt is the file extension of serialized model bundles.
const BundleExt = ".gob"

// Kind identifies the estimator stored in a bundle.
type Kind string

const (
	KindRandomForest Kind = "random_forest"
	KindDecisionTree Kind = "decision_tree"
)

// Model is a fitted estimator that predicts class indices.
type Model interface {
	Predict(X [][]float64) []int
}

// Bundle is a trained model plus what is needed to serve it.
type Bundle struct {
	ID           string
	Kind         Kind
	FeatureSetID string
	ModelKey     string
	// Features are the column names in the order the model expects them.
	Features []string
	// Classes maps predicted indices to class names. When LabelEncoded is
	// set the names are integer codes into Vocabulary and must be
	// inverse-transformed by the caller.
	Classes      []string
	LabelEncoded bool
	// Vocabulary is the sorted class list the codes were assigned from.
	// Callers decode only when it equals the vocabulary they serve.
	Vocabulary []string
	Dataset    string
	Metrics    Metrics
	CreatedAt  time.Time

	Forest *RandomForest
	Tree   *DecisionTree
}

// NewBundle wraps a fitted forest or tree.
func NewBundle(m Model, features, classes []string) (*Bundle, error) {
	b := &Bundle{
		ID:        uuid.NewString(),
		Features:  append([]string(nil), features...),
		Classes:   append([]string(nil), classes...),
		CreatedAt: time.Now().UTC(),
	}
	switch v := m.(type) {
	case *RandomForest:
		b.Kind, b.Forest = KindRandomForest, v
	case *DecisionTree:
		b.Kind, b.Tree = KindDecisionTree, v
	default:
		return nil, fmt.Errorf("unsupported model type %T", m)
	}
	return b, nil
}

// Model returns the estimator held by the bundle.
func (b *Bundle) Model() (Model, error) {
	switch b.Kind {
	case KindRandomForest:
		if b.Forest == nil || len(b.Forest.Trees) == 0 {
			return nil, errUnfitted
		}
		return b.Forest, nil
	case KindDecisionTree:
		if b.Tree == nil || len(b.Tree.Nodes) == 0 {
			return nil, errUnfitted
		}
		return b.Tree, nil
	}
	return nil, fmt.Errorf("unknown model kind %q", b.Kind)
}

// PredictOne classifies a single instance whose values follow b.Features.
func (b *Bundle) PredictOne(x []float64) (string, error) {
	if len(x) != len(b.Features) {
		return "", fmt.Errorf("expected %d features, got %d", len(b.Features), len(x))
	}
	m, err := b.Model()
	if err != nil {
		return "", err
	}
	c := m.Predict([][]float64{x})[0]
	if c < 0 || c >= len(b.Classes) {
		return "", fmt.Errorf("predicted class %d outside vocabulary", c)
	}
	return b.Classes[c], nil
}

// BundleFileName is the conventional file name <featureSetID>_<modelKey>.gob.
func BundleFileName(featureSetID, modelKey string) string {
	return featureSetID + "_" + modelKey + BundleExt
}

// Save writes the bundle with encoding/gob.
func (b *Bundle) Save(path string) error {
	if err := fsutil.EnsureParent(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(b); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode bundle: %w", err)
	}
	return f.Close()
}

// LoadBundle reads a bundle written by Save.
func LoadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	var b Bundle
	if err := gob.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	if _, err := b.Model(); err != nil {
		return nil, err
	}
	return &b, nil
}
