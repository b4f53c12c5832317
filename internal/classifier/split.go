package classifier

import (
	"math"
	"math/rand"
)

// TrainTestSplit shuffles 0..n-1 and returns train and test row indices.
// The test share is rounded up, so any positive ratio yields at least one test row.
func TrainTestSplit(n int, testRatio float64, rnd *rand.Rand) (train, test []int) {
	perm := rnd.Perm(n)
	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest > n {
		nTest = n
	}
	return perm[nTest:], perm[:nTest]
}

// Take gathers the rows of X and y at idx.
func Take(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}
