package zero

import (
	"math/rand"

	distrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
)

// AddDirichletNoise mixes Dirichlet(alpha, n) noise into the root's
// children priors in place: P'(a) = (1-eps)*P(a) + eps*noise(a) (spec.md
// section 4.6 step 3). Only the n legal children are perturbed; there is
// nothing else to perturb since illegal moves never get a child node.
// Grounded on the teacher's mcts/tree.go New(), which builds a
// distmv.NewDirichlet sampler at tree-construction time using the same
// two libraries.
func AddDirichletNoise(t *Tree, root int32, alpha, eps float64, rng *rand.Rand) {
	children := t.ChildIndices(root)
	n := len(children)
	if n == 0 {
		return
	}

	alphaVec := make([]float64, n)
	for i := range alphaVec {
		alphaVec[i] = alpha
	}
	src := distrand.NewSource(uint64(rng.Int63()))
	dist := distmv.NewDirichlet(alphaVec, src)
	noise := dist.Rand(nil)

	for i, ci := range children {
		c := t.Node(ci)
		c.NetPolicy = float32((1-eps)*float64(c.NetPolicy) + eps*noise[i])
	}
}
