package zero

import (
	"math/rand"

	"github.com/chewxy/math32"
)

// PolicyTarget computes pi(a) proportional to N(a)^(1/T) over the root's
// children visit counts (spec.md section 4.6 step 4). temperature <= 0 is
// treated as T -> 0, i.e. argmax: all mass on the single child BestChild
// picks. The returned slice is parallel to Tree.ChildIndices(root); with
// T > 0 it sums to 1 unless no child has been visited, in which case it is
// all zeros.
func PolicyTarget(t *Tree, root int32, temperature float32) []float32 {
	children := t.ChildIndices(root)
	pi := make([]float32, len(children))
	if len(children) == 0 {
		return pi
	}

	if temperature <= 0 {
		best := t.BestChild(root)
		for i, ci := range children {
			if ci == best {
				pi[i] = 1
			}
		}
		return pi
	}

	var sum float32
	invT := 1 / temperature
	for i, ci := range children {
		v := math32.Pow(float32(t.Node(ci).CompleteVisits), invT)
		pi[i] = v
		sum += v
	}
	if sum > 0 {
		for i := range pi {
			pi[i] /= sum
		}
	}
	return pi
}

// SampleMove samples a child index from a policy distribution produced by
// PolicyTarget, grounded on the teacher's mcts/tree.go sampleChild
// (cumulative-distribution sampling against a single uniform draw).
func SampleMove(pi []float32, rng *rand.Rand) int {
	r := rng.Float32()
	var accum float32
	for i, p := range pi {
		accum += p
		if r < accum {
			return i
		}
	}
	return len(pi) - 1
}
