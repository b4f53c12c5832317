package classifier

import (
	"errors"
	"math"
	"math/rand"
	"path/filepath"
	"testing"
)

// blobs returns three well separated clusters along two features.
func blobs(perClass int, seed int64) ([][]float64, []int) {
	rnd := rand.New(rand.NewSource(seed))
	centers := [][2]float64{{0, 0}, {10, 10}, {20, 0}}
	var X [][]float64
	var y []int
	for c, ctr := range centers {
		for i := 0; i < perClass; i++ {
			X = append(X, []float64{ctr[0] + rnd.Float64(), ctr[1] + rnd.Float64()})
			y = append(y, c)
		}
	}
	return X, y
}

func TestDecisionTreeFitsSeparableData(t *testing.T) {
	X, y := blobs(20, 1)
	tree := NewDecisionTree()
	if err := tree.Fit(X, y, 3); err != nil {
		t.Fatalf("fit: %v", err)
	}
	pred := tree.Predict(X)
	for i := range y {
		if pred[i] != y[i] {
			t.Fatalf("row %d: got %d want %d", i, pred[i], y[i])
		}
	}
	if got := tree.Predict([][]float64{{19.5, 0.5}})[0]; got != 2 {
		t.Fatalf("unseen point: got %d want 2", got)
	}
}

func TestDecisionTreeMaxDepthOneIsStump(t *testing.T) {
	X, y := blobs(10, 2)
	tree := NewDecisionTree(WithMaxDepth(1))
	if err := tree.Fit(X, y, 3); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if len(tree.Nodes) != 3 {
		t.Fatalf("expected root plus two leaves, got %d nodes", len(tree.Nodes))
	}
}

func TestDecisionTreeValidation(t *testing.T) {
	cases := []struct {
		name string
		X    [][]float64
		y    []int
		want error
	}{
		{"empty", nil, nil, errEmpty},
		{"mismatch", [][]float64{{1}, {2}}, []int{0}, errMismatch},
		{"ragged", [][]float64{{1, 2}, {2}}, []int{0, 1}, errRagged},
		{"label", [][]float64{{1}, {2}}, []int{0, 5}, errLabel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewDecisionTree().Fit(tc.X, tc.y, 2)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
		})
	}
}

func TestRandomForestDeterministicPerSeed(t *testing.T) {
	X, y := blobs(15, 3)
	a := NewRandomForest(WithNEstimators(10), WithSeed(7))
	b := NewRandomForest(WithNEstimators(10), WithSeed(7))
	if err := a.Fit(X, y, 3); err != nil {
		t.Fatalf("fit a: %v", err)
	}
	if err := b.Fit(X, y, 3); err != nil {
		t.Fatalf("fit b: %v", err)
	}
	pa, pb := a.PredictProba(X), b.PredictProba(X)
	for i := range pa {
		for c := range pa[i] {
			if pa[i][c] != pb[i][c] {
				t.Fatalf("row %d class %d differs: %v vs %v", i, c, pa[i][c], pb[i][c])
			}
		}
	}
	m := Evaluate(y, a.Predict(X), 3)
	if m.Accuracy < 0.99 {
		t.Fatalf("training accuracy too low: %v", m.Accuracy)
	}
}

func TestRandomForestProbabilitiesSumToOne(t *testing.T) {
	X, y := blobs(10, 4)
	rf := NewRandomForest(WithNEstimators(5))
	if err := rf.Fit(X, y, 3); err != nil {
		t.Fatalf("fit: %v", err)
	}
	for _, p := range rf.PredictProba([][]float64{{5, 5}, {15, 3}}) {
		sum := 0.0
		for _, v := range p {
			sum += v
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("probabilities sum to %v", sum)
		}
	}
}

func TestLabelEncoder(t *testing.T) {
	e := NewLabelEncoder([]string{"rice", "maize", "rice", "apple"})
	want := []string{"apple", "maize", "rice"}
	for i := range want {
		if e.Classes[i] != want[i] {
			t.Fatalf("classes = %v, want %v", e.Classes, want)
		}
	}
	codes, err := e.Transform([]string{"rice", "apple"})
	if err != nil || codes[0] != 2 || codes[1] != 0 {
		t.Fatalf("transform = %v, %v", codes, err)
	}
	back, err := e.InverseTransform(codes)
	if err != nil || back[0] != "rice" || back[1] != "apple" {
		t.Fatalf("inverse = %v, %v", back, err)
	}
	if _, err := e.Transform([]string{"banana"}); err == nil {
		t.Fatal("expected error for unseen label")
	}
	if _, err := e.InverseTransform([]int{3}); err == nil {
		t.Fatal("expected error for unknown code")
	}
}

func TestTrainTestSplit(t *testing.T) {
	train, test := TrainTestSplit(10, 0.3, rand.New(rand.NewSource(1)))
	if len(train) != 7 || len(test) != 3 {
		t.Fatalf("sizes = %d/%d, want 7/3", len(train), len(test))
	}
	seen := map[int]bool{}
	for _, i := range append(append([]int{}, train...), test...) {
		if seen[i] {
			t.Fatalf("index %d appears twice", i)
		}
		seen[i] = true
	}
	_, test = TrainTestSplit(5, 0.01, rand.New(rand.NewSource(1)))
	if len(test) != 1 {
		t.Fatalf("small ratio should round up to one test row, got %d", len(test))
	}
}

func TestEvaluateWeighted(t *testing.T) {
	yTrue := []int{0, 0, 0, 1}
	yPred := []int{0, 0, 1, 1}
	m := Evaluate(yTrue, yPred, 2)
	// class 0: p=1 r=2/3 f=0.8 support 3; class 1: p=0.5 r=1 f=2/3 support 1
	want := Metrics{
		Accuracy:  0.75,
		Precision: 0.75*1 + 0.25*0.5,
		Recall:    0.75*(2.0/3) + 0.25*1,
		F1:        0.75*0.8 + 0.25*(2.0/3),
	}
	for _, c := range []struct {
		name      string
		got, want float64
	}{
		{"accuracy", m.Accuracy, want.Accuracy},
		{"precision", m.Precision, want.Precision},
		{"recall", m.Recall, want.Recall},
		{"f1", m.F1, want.F1},
	} {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestEvaluateZeroDivision(t *testing.T) {
	m := Evaluate([]int{0, 1}, []int{0, 0}, 2)
	if m.Accuracy != 0.5 {
		t.Fatalf("accuracy = %v", m.Accuracy)
	}
	if math.IsNaN(m.Precision) || math.IsNaN(m.F1) {
		t.Fatalf("unexpected NaN in %+v", m)
	}
}

func TestBundleSaveLoad(t *testing.T) {
	X, y := blobs(10, 5)
	rf := NewRandomForest(WithNEstimators(4))
	if err := rf.Fit(X, y, 3); err != nil {
		t.Fatalf("fit: %v", err)
	}
	b, err := NewBundle(rf, []string{"N", "P"}, []string{"apple", "maize", "rice"})
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	b.FeatureSetID, b.ModelKey = "s1", "RF"
	path := filepath.Join(t.TempDir(), BundleFileName(b.FeatureSetID, b.ModelKey))
	if filepath.Base(path) != "s1_RF.gob" {
		t.Fatalf("file name = %s", filepath.Base(path))
	}
	if err := b.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadBundle(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != b.ID || got.Kind != KindRandomForest {
		t.Fatalf("loaded bundle = %+v", got)
	}
	label, err := got.PredictOne([]float64{20.5, 0.5})
	if err != nil || label != "rice" {
		t.Fatalf("PredictOne = %q, %v", label, err)
	}
	if _, err := got.PredictOne([]float64{1}); err == nil {
		t.Fatal("expected arity error")
	}
}

func TestLoadBundleRejectsUnfitted(t *testing.T) {
	b, err := NewBundle(NewDecisionTree(), []string{"a"}, []string{"x"})
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	path := filepath.Join(t.TempDir(), "m.gob")
	if err := b.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := LoadBundle(path); !errors.Is(err, errUnfitted) {
		t.Fatalf("got %v want errUnfitted", err)
	}
}
