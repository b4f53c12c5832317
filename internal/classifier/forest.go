package classifier

import (
	"math"
	"math/rand"
	"sync"
)

// RandomForest is a bagged ensemble of decision trees. Predictions average
// the per-tree class probabilities.
type RandomForest struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	// MaxFeatures per split; 0 means floor(sqrt(p)).
	MaxFeatures int
	Criterion   string
	Bootstrap   bool
	Seed        int64

	NClasses int
	Trees    []*DecisionTree
}

// ForestOption configures a RandomForest.
type ForestOption func(*RandomForest)

func WithNEstimators(n int) ForestOption { return func(rf *RandomForest) { rf.NEstimators = n } }
func WithBootstrap(b bool) ForestOption { return func(rf *RandomForest) { rf.Bootstrap = b } }
func WithSeed(seed int64) ForestOption { return func(rf *RandomForest) { rf.Seed = seed } }
func WithForestMaxDepth(d int) ForestOption {
	return func(rf *RandomForest) { rf.MaxDepth = d }
}
func WithForestMaxFeatures(k int) ForestOption {
	return func(rf *RandomForest) { rf.MaxFeatures = k }
}

// NewRandomForest returns a forest of 100 bootstrapped gini trees.
func NewRandomForest(opts ...ForestOption) *RandomForest {
	rf := &RandomForest{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       CriterionGini,
		Bootstrap:       true,
		Seed:            1,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains every tree concurrently on its own bootstrap sample.
func (rf *RandomForest) Fit(X [][]float64, y []int, nClasses int) error {
	if err := validate(X, y, nClasses); err != nil {
		return err
	}
	if rf.NEstimators <= 0 {
		rf.NEstimators = 1
	}
	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(len(X[0])))))
	}
	n := len(X)
	rf.NClasses = nClasses
	rf.Trees = make([]*DecisionTree, rf.NEstimators)

	var wg sync.WaitGroup
	errCh := make(chan error, rf.NEstimators)
	for i := range rf.Trees {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seed := rf.Seed + int64(i)
			rnd := rand.New(rand.NewSource(seed))
			sample := make([]int, n)
			for j := range sample {
				if rf.Bootstrap {
					sample[j] = rnd.Intn(n)
				} else {
					sample[j] = j
				}
			}
			tree := NewDecisionTree(
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMinSamplesLeaf(rf.MinSamplesLeaf),
				WithCriterion(rf.Criterion),
				WithTreeMaxFeatures(maxFeatures),
				WithTreeSeed(seed),
			)
			if err := tree.fitIndices(X, y, sample, nClasses); err != nil {
				errCh <- err
				return
			}
			rf.Trees[i] = tree
		}(i)
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return err
	}
	return nil
}

// PredictProba averages tree probabilities for each row.
func (rf *RandomForest) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	if len(rf.Trees) == 0 {
		empty := &DecisionTree{NClasses: rf.NClasses}
		return empty.PredictProba(X)
	}
	for i, x := range X {
		acc := make([]float64, rf.NClasses)
		for _, t := range rf.Trees {
			for c, p := range t.probaOne(x) {
				acc[c] += p
			}
		}
		for c := range acc {
			acc[c] /= float64(len(rf.Trees))
		}
		out[i] = acc
	}
	return out
}

// Predict returns the class with the highest averaged probability.
func (rf *RandomForest) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, p := range rf.PredictProba(X) {
		out[i] = argmax(p)
	}
	return out
}
