package classifier

// Metrics summarizes classifier quality on a held-out set. Precision, recall
// and F1 are averaged over classes weighted by their support.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// ConfusionMatrix counts [true][predicted] class pairs.
func ConfusionMatrix(yTrue, yPred []int, nClasses int) [][]int {
	m := make([][]int, nClasses)
	for i := range m {
		m[i] = make([]int, nClasses)
	}
	for i := range yTrue {
		m[yTrue[i]][yPred[i]]++
	}
	return m
}

// Evaluate computes accuracy and support-weighted precision, recall and F1.
// Classes without predictions contribute zero precision.
func Evaluate(yTrue, yPred []int, nClasses int) Metrics {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return Metrics{}
	}
	cm := ConfusionMatrix(yTrue, yPred, nClasses)
	total := float64(len(yTrue))
	var m Metrics
	correct := 0
	for c := 0; c < nClasses; c++ {
		tp := cm[c][c]
		correct += tp
		support, predicted := 0, 0
		for k := 0; k < nClasses; k++ {
			support += cm[c][k]
			predicted += cm[k][c]
		}
		if support == 0 {
			continue
		}
		var p, r, f float64
		if predicted > 0 {
			p = float64(tp) / float64(predicted)
		}
		r = float64(tp) / float64(support)
		if p+r > 0 {
			f = 2 * p * r / (p + r)
		}
		w := float64(support) / total
		m.Precision += w * p
		m.Recall += w * r
		m.F1 += w * f
	}
	m.Accuracy = float64(correct) / total
	return m
}
