package zero

// FPUMode selects the first-play-urgency value assumed for an unvisited
// child when computing PUCT (spec.md section 4.2, GLOSSARY "FPU").
//
// The source leaves the choice between "flip", "parent" and "child"
// perspectives as an open question (spec.md section 9). This engine
// resolves it as **parent**: an unvisited child's Q defaults to the
// parent's own current mean, taken in the parent's perspective the same way
// selectChild scores a visited child, which is what the teacher's
// mcts/search.go actually produces in practice - a freshly allocated node
// starts with qsa == 0 and the parent's accumulated mean already dominates
// the selection formula by the time any of its siblings have been visited.
// See SPEC_FULL.md for the full writeup.
type FPUMode struct {
	// Fixed, when non-nil, is a constant value assumed for every unvisited
	// child (typically the draw value, 0).
	Fixed *float32
	// Reduction is subtracted from the parent's mean when Fixed is nil
	// ("FPU reduction"), producing a value slightly pessimistic relative to
	// the parent so that unvisited moves aren't over-explored.
	Reduction float32
}

// FixedFPU returns an FPUMode that always assumes value v for unvisited
// children.
func FixedFPU(v float32) FPUMode {
	return FPUMode{Fixed: &v}
}

// ParentFPU returns an FPUMode that derives the unvisited-child value from
// the parent's current mean, reduced by `reduction`.
func ParentFPU(reduction float32) FPUMode {
	return FPUMode{Reduction: reduction}
}

// valueFor returns the Q assumed for an unvisited child of `parent`, in the
// parent's own perspective (i.e. on the same scale selectChild uses for a
// visited child's `-c.Mean().Value`, both already expressed as the parent's
// view of the position).
func (m FPUMode) valueFor(parent *Node) float32 {
	if m.Fixed != nil {
		return *m.Fixed
	}
	return parent.Mean().Value - m.Reduction
}
