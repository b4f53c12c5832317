package classifier

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// Criterion names the impurity measure used to score splits.
const (
	CriterionGini    = "gini"
	CriterionEntropy = "entropy"
)

// Node is one node of a fitted tree. Nodes are stored flat so the tree
// serializes without recursive types; Left and Right index into Nodes.
type Node struct {
	Leaf      bool
	Feature   int
	Threshold float64 // x[Feature] <= Threshold goes left
	Left      int
	Right     int
	Samples   int
	Probas    []float64
}

// DecisionTree is a CART classifier over numeric features. Classes are the
// integers 0..NClasses-1.
type DecisionTree struct {
	MaxDepth            int // 0 means unlimited
	MinSamplesSplit     int
	MinSamplesLeaf      int
	Criterion           string
	MaxFeatures         int // 0 means all features
	MinImpurityDecrease float64
	Seed                int64

	NClasses  int
	NFeatures int
	Nodes     []Node
}

// TreeOption configures a DecisionTree.
type TreeOption func(*DecisionTree)

func WithMaxDepth(d int) TreeOption { return func(t *DecisionTree) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) TreeOption { return func(t *DecisionTree) { t.MinSamplesSplit = n } }
func WithMinSamplesLeaf(n int) TreeOption { return func(t *DecisionTree) { t.MinSamplesLeaf = n } }
func WithCriterion(c string) TreeOption { return func(t *DecisionTree) { t.Criterion = c } }
func WithTreeMaxFeatures(k int) TreeOption { return func(t *DecisionTree) { t.MaxFeatures = k } }
func WithTreeSeed(seed int64) TreeOption { return func(t *DecisionTree) { t.Seed = seed } }
func WithMinImpurityDecrease(v float64) TreeOption {
	return func(t *DecisionTree) { t.MinImpurityDecrease = v }
}

// NewDecisionTree returns a tree with defaults: gini, min split 2, min leaf 1.
func NewDecisionTree(opts ...TreeOption) *DecisionTree {
	t := &DecisionTree{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       CriterionGini,
		Seed:            1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

var (
	errEmpty    = errors.New("classifier: empty training set")
	errMismatch = errors.New("classifier: X and y length mismatch")
	errRagged   = errors.New("classifier: inconsistent number of features")
	errLabel    = errors.New("classifier: class index out of range")
	errUnfitted = errors.New("classifier: model is not fitted")
)

// Fit trains on X (n x p) and class indices y in [0, nClasses).
func (t *DecisionTree) Fit(X [][]float64, y []int, nClasses int) error {
	if err := validate(X, y, nClasses); err != nil {
		return err
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	return t.fitIndices(X, y, idx, nClasses)
}

// fitIndices trains on the rows listed in idx; repeated indices act as sample weights.
func (t *DecisionTree) fitIndices(X [][]float64, y []int, idx []int, nClasses int) error {
	if len(idx) == 0 {
		return errEmpty
	}
	t.NClasses = nClasses
	t.NFeatures = len(X[0])
	t.Nodes = t.Nodes[:0]
	b := &builder{tree: t, X: X, y: y, rnd: rand.New(rand.NewSource(t.Seed))}
	if t.Criterion == CriterionEntropy {
		b.impurity = entropy
	} else {
		b.impurity = gini
	}
	b.build(append([]int(nil), idx...), 0)
	return nil
}

// PredictProba returns per-class probabilities for each row.
func (t *DecisionTree) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, x := range X {
		out[i] = t.probaOne(x)
	}
	return out
}

// Predict returns the most probable class index for each row.
func (t *DecisionTree) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, x := range X {
		out[i] = argmax(t.probaOne(x))
	}
	return out
}

func (t *DecisionTree) probaOne(x []float64) []float64 {
	if len(t.Nodes) == 0 {
		p := make([]float64, max(t.NClasses, 1))
		for i := range p {
			p[i] = 1 / float64(len(p))
		}
		return p
	}
	n := &t.Nodes[0]
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = &t.Nodes[n.Left]
		} else {
			n = &t.Nodes[n.Right]
		}
	}
	return n.Probas
}

type builder struct {
	tree     *DecisionTree
	X        [][]float64
	y        []int
	rnd      *rand.Rand
	impurity func(counts []int, n int) float64
}

// build appends the subtree for idx and returns its node index.
func (b *builder) build(idx []int, depth int) int {
	t := b.tree
	counts := b.counts(idx)
	at := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Samples: len(idx)})

	leaf := func() int {
		t.Nodes[at].Leaf = true
		t.Nodes[at].Probas = probas(counts, len(idx))
		return at
	}
	if pure(counts) || len(idx) < t.MinSamplesSplit || (t.MaxDepth > 0 && depth >= t.MaxDepth) {
		return leaf()
	}

	best := b.bestSplit(idx, counts)
	if best.feature < 0 || best.gain <= t.MinImpurityDecrease {
		return leaf()
	}
	var left, right []int
	for _, i := range idx {
		if b.X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	t.Nodes[at].Feature = best.feature
	t.Nodes[at].Threshold = best.threshold
	t.Nodes[at].Left = l
	t.Nodes[at].Right = r
	return at
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

func (b *builder) bestSplit(idx []int, counts []int) split {
	t := b.tree
	n := len(idx)
	parent := b.impurity(counts, n)
	best := split{feature: -1}

	limit := t.NFeatures
	if t.MaxFeatures > 0 && t.MaxFeatures < t.NFeatures {
		limit = t.MaxFeatures
	}
	sorted := make([]int, n)
	// Past limit, keep drawing features only until some split is found.
	for k, f := range b.rnd.Perm(t.NFeatures) {
		if k >= limit && best.feature >= 0 {
			break
		}
		copy(sorted, idx)
		sort.Slice(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })

		left := make([]int, t.NClasses)
		right := append([]int(nil), counts...)
		for s := 1; s < n; s++ {
			moved := b.y[sorted[s-1]]
			left[moved]++
			right[moved]--
			lo, hi := b.X[sorted[s-1]][f], b.X[sorted[s]][f]
			if lo == hi || s < t.MinSamplesLeaf || n-s < t.MinSamplesLeaf {
				continue
			}
			w := (float64(s)*b.impurity(left, s) + float64(n-s)*b.impurity(right, n-s)) / float64(n)
			if gain := parent - w; gain > best.gain {
				best = split{feature: f, threshold: (lo + hi) / 2, gain: gain}
			}
		}
	}
	return best
}

func (b *builder) counts(idx []int) []int {
	c := make([]int, b.tree.NClasses)
	for _, i := range idx {
		c[b.y[i]]++
	}
	return c
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	s := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		s -= p * p
	}
	return s
}

func entropy(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	s := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(n)
		s -= p * math.Log2(p)
	}
	return s
}

func pure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func probas(counts []int, n int) []float64 {
	p := make([]float64, len(counts))
	if n == 0 {
		return p
	}
	for i, c := range counts {
		p[i] = float64(c) / float64(n)
	}
	return p
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func validate(X [][]float64, y []int, nClasses int) error {
	if len(X) == 0 {
		return errEmpty
	}
	if len(y) != len(X) {
		return errMismatch
	}
	p := len(X[0])
	for _, row := range X {
		if len(row) != p {
			return errRagged
		}
	}
	for _, c := range y {
		if c < 0 || c >= nClasses {
			return errLabel
		}
	}
	return nil
}
